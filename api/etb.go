// Package api - operations log REST API
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alwitt/bluelight/etb"
	"github.com/alwitt/bluelight/models"
	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const multipartMemoryLimit = 8 << 20

// EntryHandler operations log REST API handler
type EntryHandler struct {
	goutils.RestAPIHandler
	service        etb.Service
	validator      *validator.Validate
	maxUploadBytes int64
}

/*
NewEntryHandler define new operations log REST API handler

	@param service etb.Service - the entry service
	@param maxUploadBytes int64 - largest accepted attachment upload
	@param requestIDHeader string - header carrying the caller request ID
	@param logHeaders []string - request headers to include in request logs
	@returns handler
*/
func NewEntryHandler(
	service etb.Service, maxUploadBytes int64, requestIDHeader string, logHeaders []string,
) (*EntryHandler, error) {
	logTags := log.Fields{"package": "bluelight", "module": "api", "component": "etb-handler"}

	doNotLog := map[string]bool{"Authorization": true}
	for _, header := range logHeaders {
		doNotLog[http.CanonicalHeaderKey(header)] = false
	}

	instance := &EntryHandler{
		RestAPIHandler: goutils.RestAPIHandler{
			Component: goutils.Component{
				LogTags: logTags,
				LogTagModifiers: []goutils.LogMetadataModifier{
					goutils.ModifyLogMetadataByRestRequestParam,
				},
			},
			CallRequestIDHeaderField: &requestIDHeader,
			DoNotLogHeaders:          doNotLog,
		},
		service:        service,
		validator:      validator.New(),
		maxUploadBytes: maxUploadBytes,
	}
	if err := models.RegisterWithValidator(instance.validator); err != nil {
		return nil, fmt.Errorf("failed to install custom validation macros [%w]", err)
	}
	return instance, nil
}

// ======================================================================================
// Helpers

// reply write a response, logging write failures
func (h *EntryHandler) reply(w http.ResponseWriter, r *http.Request, respCode int, resp interface{}) {
	if err := h.WriteRESTResponse(w, respCode, resp, nil); err != nil {
		log.WithError(err).WithFields(h.GetLogTagsForContext(r.Context())).
			Error("Failed to write response")
	}
}

// replyError write an error response
func (h *EntryHandler) replyError(
	w http.ResponseWriter, r *http.Request, respCode int, message string, detail string,
) {
	h.reply(w, r, respCode, h.GetStdRESTErrorMsg(r.Context(), respCode, message, detail))
}

// replyServiceError write the response of a failed service call
func (h *EntryHandler) replyServiceError(w http.ResponseWriter, r *http.Request, err error) {
	respCode := http.StatusInternalServerError
	message := "internal error"

	var svcErr *etb.Error
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case etb.ErrorKindNotFound:
			respCode = http.StatusNotFound
		case etb.ErrorKindBadRequest:
			respCode = http.StatusBadRequest
		case etb.ErrorKindConflict:
			respCode = http.StatusConflict
		}
		if respCode != http.StatusInternalServerError {
			message = svcErr.Message
		}
	}

	h.replyError(w, r, respCode, message, "")
}

// requestActor the caller identity, writes a 401 and returns false when missing
func (h *EntryHandler) requestActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		h.replyError(w, r, http.StatusUnauthorized, "caller identity missing", "")
	}
	return actor, ok
}

// decodeBody parse and validate a JSON request body, writes a 400 and returns false on error
func (h *EntryHandler) decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		h.replyError(w, r, http.StatusBadRequest, "malformed request body", err.Error())
		return false
	}
	if body, ok := target.(normalizer); ok {
		body.normalize()
	}
	if err := h.validator.Struct(target); err != nil {
		h.replyError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// queryParser reads typed values from the URL query, remembering the first error
type queryParser struct {
	values url.Values
	err    error
}

func (p *queryParser) str(name string) *string {
	value := strings.TrimSpace(p.values.Get(name))
	if value == "" {
		return nil
	}
	return &value
}

func (p *queryParser) integer(name string) int {
	value := p.str(name)
	if value == nil || p.err != nil {
		return 0
	}
	parsed, err := strconv.Atoi(*value)
	if err != nil || parsed < 0 {
		p.err = fmt.Errorf("query parameter '%s' must be a non-negative integer", name)
		return 0
	}
	return parsed
}

func (p *queryParser) boolean(name string) bool {
	value := p.str(name)
	if value == nil || p.err != nil {
		return false
	}
	parsed, err := strconv.ParseBool(*value)
	if err != nil {
		p.err = fmt.Errorf("query parameter '%s' must be a boolean", name)
		return false
	}
	return parsed
}

func (p *queryParser) timestamp(name string) *time.Time {
	value := p.str(name)
	if value == nil || p.err != nil {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		p.err = fmt.Errorf("query parameter '%s' must be an RFC3339 timestamp", name)
		return nil
	}
	return &parsed
}

// ======================================================================================
// Entries

// CreateEntry godoc
// @Summary Log a new entry
// @Tags etb
// @Accept json
// @Produce json
// @Param entry body CreateEntryRequest true "entry content"
// @Success 201 {object} EntryResponse
// @Failure 400 {object} goutils.RestAPIBaseResponse
// @Router /etb [post]
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requestActor(w, r)
	if !ok {
		return
	}
	var req CreateEntryRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	entry, err := h.service.Create(r.Context(), actor, req.toInput())
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusCreated, EntryResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()), Entry: entry,
	})
}

// CreateEntryHandler Wrapper around CreateEntry
func (h *EntryHandler) CreateEntryHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.CreateEntry)
}

// ListEntries godoc
// @Summary List entries
// @Tags etb
// @Produce json
// @Param kategorie query string false "category"
// @Param referenzEinsatzId query string false "incident reference"
// @Param referenzPatientId query string false "patient reference"
// @Param referenzEinsatzmittelId query string false "resource reference"
// @Param autorId query string false "author"
// @Param vonZeitstempel query string false "event time lower bound (RFC3339)"
// @Param bisZeitstempel query string false "event time upper bound (RFC3339)"
// @Param search query string false "free text"
// @Param includeUeberschrieben query bool false "include superseded entries"
// @Param page query int false "page, starting at 1"
// @Param limit query int false "page size"
// @Success 200 {object} EntryListResponse
// @Router /etb [get]
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	query := &queryParser{values: r.URL.Query()}

	filter := etb.EntryFilter{
		ReferenzEinsatzID:       query.str("referenzEinsatzId"),
		ReferenzPatientID:       query.str("referenzPatientId"),
		ReferenzEinsatzmittelID: query.str("referenzEinsatzmittelId"),
		AutorID:                 query.str("autorId"),
		Search:                  query.str("search"),
		VonZeitstempel:          query.timestamp("vonZeitstempel"),
		BisZeitstempel:          query.timestamp("bisZeitstempel"),
		IncludeUeberschrieben:   query.boolean("includeUeberschrieben"),
		Page:                    query.integer("page"),
		Limit:                   query.integer("limit"),
	}
	if kategorie := query.str("kategorie"); kategorie != nil {
		parsed := models.ParseEntryCategory(*kategorie)
		if !parsed.IsValid() {
			h.replyError(w, r, http.StatusBadRequest, "unknown kategorie", *kategorie)
			return
		}
		filter.Kategorie = &parsed
	}
	if query.err != nil {
		h.replyError(w, r, http.StatusBadRequest, "invalid query", query.err.Error())
		return
	}

	page, err := h.service.FindAll(r.Context(), filter)
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, EntryListResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()),
		Items:               page.Items,
		Pagination:          page.Pagination,
	})
}

// ListEntriesHandler Wrapper around ListEntries
func (h *EntryHandler) ListEntriesHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.ListEntries)
}

// GetEntry godoc
// @Summary Fetch one entry
// @Tags etb
// @Produce json
// @Param id path string true "entry ID"
// @Success 200 {object} EntryResponse
// @Failure 404 {object} goutils.RestAPIBaseResponse
// @Router /etb/{id} [get]
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.FindOne(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, EntryResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()), Entry: entry,
	})
}

// GetEntryHandler Wrapper around GetEntry
func (h *EntryHandler) GetEntryHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.GetEntry)
}

// UpdateEntry godoc
// @Summary Change an open entry
// @Tags etb
// @Accept json
// @Produce json
// @Param id path string true "entry ID"
// @Param changes body UpdateEntryRequest true "fields to change"
// @Success 200 {object} EntryResponse
// @Failure 400 {object} goutils.RestAPIBaseResponse
// @Failure 404 {object} goutils.RestAPIBaseResponse
// @Failure 409 {object} goutils.RestAPIBaseResponse
// @Router /etb/{id} [patch]
func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requestActor(w, r)
	if !ok {
		return
	}
	var req UpdateEntryRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	entry, err := h.service.Update(r.Context(), actor, mux.Vars(r)["id"], req.toInput())
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, EntryResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()), Entry: entry,
	})
}

// UpdateEntryHandler Wrapper around UpdateEntry
func (h *EntryHandler) UpdateEntryHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.UpdateEntry)
}

// CloseEntry godoc
// @Summary Close an entry
// @Tags etb
// @Produce json
// @Param id path string true "entry ID"
// @Success 200 {object} EntryResponse
// @Failure 400 {object} goutils.RestAPIBaseResponse
// @Failure 404 {object} goutils.RestAPIBaseResponse
// @Router /etb/{id}/schliessen [patch]
func (h *EntryHandler) CloseEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requestActor(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Close(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, EntryResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()), Entry: entry,
	})
}

// CloseEntryHandler Wrapper around CloseEntry
func (h *EntryHandler) CloseEntryHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.CloseEntry)
}

// SupersedeEntry godoc
// @Summary Replace an entry with a new one
// @Tags etb
// @Accept json
// @Produce json
// @Param id path string true "entry ID"
// @Param replacement body SupersedeEntryRequest true "replacement content"
// @Success 201 {object} EntryResponse
// @Failure 400 {object} goutils.RestAPIBaseResponse
// @Failure 404 {object} goutils.RestAPIBaseResponse
// @Failure 409 {object} goutils.RestAPIBaseResponse
// @Router /etb/{id}/ueberschreiben [post]
func (h *EntryHandler) SupersedeEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requestActor(w, r)
	if !ok {
		return
	}
	var req SupersedeEntryRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	entry, err := h.service.Supersede(r.Context(), actor, mux.Vars(r)["id"], req.toInput())
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusCreated, EntryResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()), Entry: entry,
	})
}

// SupersedeEntryHandler Wrapper around SupersedeEntry
func (h *EntryHandler) SupersedeEntryHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.SupersedeEntry)
}

// EntryHistory godoc
// @Summary Supersede chain of an entry, oldest first
// @Tags etb
// @Produce json
// @Param id path string true "entry ID"
// @Success 200 {object} EntryHistoryResponse
// @Failure 404 {object} goutils.RestAPIBaseResponse
// @Router /etb/{id}/verlauf [get]
func (h *EntryHandler) EntryHistory(w http.ResponseWriter, r *http.Request) {
	chain, err := h.service.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, EntryHistoryResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()), Entries: chain,
	})
}

// EntryHistoryHandler Wrapper around EntryHistory
func (h *EntryHandler) EntryHistoryHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.EntryHistory)
}

// ======================================================================================
// Attachments

// AddAttachment godoc
// @Summary Attach a file to an open entry
// @Tags etb
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "entry ID"
// @Param file formData file true "the file"
// @Param beschreibung formData string false "description"
// @Success 201 {object} AttachmentResponse
// @Failure 400 {object} goutils.RestAPIBaseResponse
// @Failure 404 {object} goutils.RestAPIBaseResponse
// @Router /etb/{id}/anlage [post]
func (h *EntryHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requestActor(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		h.replyError(w, r, http.StatusBadRequest, "malformed multipart upload", err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.replyError(w, r, http.StatusBadRequest, "no file uploaded", "")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		h.replyError(
			w, r, http.StatusBadRequest, "file too large",
			fmt.Sprintf("limit is %d bytes", h.maxUploadBytes),
		)
		return
	}
	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		h.replyError(w, r, http.StatusBadRequest, "unable to read upload", err.Error())
		return
	}
	if int64(len(content)) > h.maxUploadBytes {
		h.replyError(
			w, r, http.StatusBadRequest, "file too large",
			fmt.Sprintf("limit is %d bytes", h.maxUploadBytes),
		)
		return
	}

	upload := etb.AttachmentUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}
	if beschreibung := strings.TrimSpace(r.FormValue("beschreibung")); beschreibung != "" {
		upload.Beschreibung = &beschreibung
	}

	attachment, err := h.service.AddAttachment(r.Context(), actor, mux.Vars(r)["id"], upload)
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusCreated, AttachmentResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()), Attachment: attachment,
	})
}

// AddAttachmentHandler Wrapper around AddAttachment
func (h *EntryHandler) AddAttachmentHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.AddAttachment)
}

// ListAttachments godoc
// @Summary List attachments of an entry
// @Tags etb
// @Produce json
// @Param id path string true "entry ID"
// @Success 200 {object} AttachmentListResponse
// @Failure 404 {object} goutils.RestAPIBaseResponse
// @Router /etb/{id}/anlagen [get]
func (h *EntryHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	attachments, err := h.service.FindAttachmentsByEntry(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, AttachmentListResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()), Attachments: attachments,
	})
}

// ListAttachmentsHandler Wrapper around ListAttachments
func (h *EntryHandler) ListAttachmentsHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.ListAttachments)
}

// GetAttachment godoc
// @Summary Fetch one attachment
// @Tags etb
// @Produce json
// @Param id path string true "attachment ID"
// @Success 200 {object} AttachmentResponse
// @Failure 404 {object} goutils.RestAPIBaseResponse
// @Router /etb/anlage/{id} [get]
func (h *EntryHandler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	attachment, err := h.service.FindAttachmentByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, AttachmentResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()), Attachment: attachment,
	})
}

// GetAttachmentHandler Wrapper around GetAttachment
func (h *EntryHandler) GetAttachmentHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.GetAttachment)
}

// GetAttachmentContent godoc
// @Summary Download attachment content
// @Tags etb
// @Produce octet-stream
// @Param id path string true "attachment ID"
// @Success 200
// @Failure 404 {object} goutils.RestAPIBaseResponse
// @Router /etb/anlage/{id}/inhalt [get]
func (h *EntryHandler) GetAttachmentContent(w http.ResponseWriter, r *http.Request) {
	attachment, content, err := h.service.ReadAttachmentContent(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", attachment.Dateityp)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.Header().Set(
		"Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Dateiname),
	)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		log.WithError(err).WithFields(h.GetLogTagsForContext(r.Context())).
			Error("Failed to write attachment content")
	}
}

// GetAttachmentContentHandler Wrapper around GetAttachmentContent
func (h *EntryHandler) GetAttachmentContentHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.GetAttachmentContent)
}

// ======================================================================================
// Audit and administration

// ListAuditEvents godoc
// @Summary List audit events
// @Tags audit
// @Produce json
// @Param type query string false "event type, may repeat"
// @Param entryId query string false "related entry"
// @Param von query string false "lower time bound (RFC3339)"
// @Param bis query string false "upper time bound (RFC3339)"
// @Param offset query int false "offset"
// @Param limit query int false "page size"
// @Success 200 {object} AuditEventListResponse
// @Router /audit/events [get]
func (h *EntryHandler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	query := &queryParser{values: r.URL.Query()}

	filter := etb.AuditEventFilter{
		EntryID: query.str("entryId"),
		Von:     query.timestamp("von"),
		Bis:     query.timestamp("bis"),
		Offset:  query.integer("offset"),
		Limit:   query.integer("limit"),
	}
	for _, eventType := range query.values["type"] {
		filter.EventTypes = append(
			filter.EventTypes, models.AuditEventTypeENUMType(strings.ToUpper(eventType)),
		)
	}
	if query.err != nil {
		h.replyError(w, r, http.StatusBadRequest, "invalid query", query.err.Error())
		return
	}

	events, err := h.service.ListAuditEvents(r.Context(), filter)
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, AuditEventListResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()), Events: events,
	})
}

// ListAuditEventsHandler Wrapper around ListAuditEvents
func (h *EntryHandler) ListAuditEventsHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.ListAuditEvents)
}

// RotateEncryptionKey godoc
// @Summary Start encrypting new attachments with a fresh key
// @Tags admin
// @Produce json
// @Success 200 {object} EncryptionKeyResponse
// @Failure 400 {object} goutils.RestAPIBaseResponse
// @Router /admin/encryption/rotate [post]
func (h *EntryHandler) RotateEncryptionKey(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requestActor(w, r)
	if !ok {
		return
	}

	newKey, err := h.service.RotateEncryptionKey(r.Context(), actor)
	if err != nil {
		h.replyServiceError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, EncryptionKeyResponse{
		RestAPIBaseResponse: h.GetStdRESTSuccessMsg(r.Context()), KeyID: newKey.ID,
	})
}

// RotateEncryptionKeyHandler Wrapper around RotateEncryptionKey
func (h *EntryHandler) RotateEncryptionKeyHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.RotateEncryptionKey)
}
