package api_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alwitt/bluelight/api"
	"github.com/alwitt/bluelight/etb"
	"github.com/alwitt/bluelight/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateEntry(t *testing.T) {
	assert := assert.New(t)
	uut := newTestAPI(t, nil, nil)

	eventTime := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)
	created := models.Entry{
		ID:                "3e6a1d4c-5b1f-4c52-9a57-0d7f1a5e9c11",
		LaufendeNummer:    1,
		Kategorie:         models.EntryCategorySituationReport,
		Inhalt:            "Lage unveraendert",
		TimestampEreignis: eventTime,
		AutorID:           testActor.ID,
		Version:           1,
		Status:            models.EntryStatusActive,
	}
	uut.service.On(
		"Create",
		mock.Anything,
		testActor,
		mock.MatchedBy(func(in etb.CreateEntryInput) bool {
			return in.Kategorie == models.EntryCategorySituationReport &&
				in.Inhalt == "Lage unveraendert" &&
				in.TimestampEreignis.Equal(eventTime) &&
				in.ReferenzEinsatzID != nil && *in.ReferenzEinsatzID == "einsatz-7"
		}),
	).Return(created, nil).Once()

	resp := uut.call(http.MethodPost, "/etb", map[string]interface{}{
		"kategorie":         "LAGEMELDUNG",
		"timestampEreignis": eventTime.Format(time.RFC3339),
		"inhalt":            "Lage unveraendert",
		"referenzEinsatzId": "einsatz-7",
	}, uut.token)
	assert.Equal(http.StatusCreated, resp.Code)

	var body api.EntryResponse
	decode(t, resp, &body)
	assert.True(body.Success)
	assert.Equal(created.ID, body.Entry.ID)
	assert.Equal(int64(1), body.Entry.LaufendeNummer)
}

func TestEntryCategoryAnyLetterCase(t *testing.T) {
	assert := assert.New(t)
	uut := newTestAPI(t, nil, nil)

	uut.service.On(
		"Create", mock.Anything, testActor,
		mock.MatchedBy(func(in etb.CreateEntryInput) bool {
			return in.Kategorie == models.EntryCategoryMessage
		}),
	).Return(models.Entry{ID: "entry-1", Kategorie: models.EntryCategoryMessage}, nil).Once()
	resp := uut.call(http.MethodPost, "/etb", map[string]interface{}{
		"kategorie": "Meldung", "timestampEreignis": "2026-03-01T10:15:00+01:00", "inhalt": "x",
	}, uut.token)
	assert.Equal(http.StatusCreated, resp.Code)

	uut.service.On(
		"Update", mock.Anything, testActor, "entry-1",
		mock.MatchedBy(func(in etb.UpdateEntryInput) bool {
			return in.Kategorie != nil && *in.Kategorie == models.EntryCategoryCorrection
		}),
	).Return(models.Entry{ID: "entry-1"}, nil).Once()
	resp = uut.call(http.MethodPatch, "/etb/entry-1", map[string]interface{}{
		"kategorie": "korrektur",
	}, uut.token)
	assert.Equal(http.StatusOK, resp.Code)

	uut.service.On(
		"Supersede", mock.Anything, testActor, "entry-1",
		mock.MatchedBy(func(in etb.SupersedeEntryInput) bool {
			return in.Kategorie != nil && *in.Kategorie == models.EntryCategorySituationReport
		}),
	).Return(models.Entry{ID: "entry-2"}, nil).Once()
	resp = uut.call(http.MethodPost, "/etb/entry-1/ueberschreiben", map[string]interface{}{
		"kategorie": " Lagemeldung ", "inhalt": "neu",
	}, uut.token)
	assert.Equal(http.StatusCreated, resp.Code)

	uut.service.On(
		"FindAll", mock.Anything,
		mock.MatchedBy(func(f etb.EntryFilter) bool {
			return f.Kategorie != nil && *f.Kategorie == models.EntryCategoryMessage
		}),
	).Return(etb.EntryPage{}, nil).Once()
	resp = uut.call(http.MethodGet, "/etb?kategorie=Meldung", nil, uut.token)
	assert.Equal(http.StatusOK, resp.Code)

	// Unknown names are still rejected
	resp = uut.call(http.MethodPatch, "/etb/entry-1", map[string]interface{}{
		"kategorie": "wetter",
	}, uut.token)
	assert.Equal(http.StatusBadRequest, resp.Code)
}

func TestCreateEntryRejectsBadBodies(t *testing.T) {
	assert := assert.New(t)
	uut := newTestAPI(t, nil, nil)

	bodies := []interface{}{
		`{"kategorie": "LAGEMELDUNG",`,
		map[string]interface{}{
			"kategorie": "UNBEKANNT", "timestampEreignis": "2026-03-01T10:15:00Z", "inhalt": "x",
		},
		map[string]interface{}{"kategorie": "MELDUNG", "timestampEreignis": "2026-03-01T10:15:00Z"},
		map[string]interface{}{"kategorie": "MELDUNG", "inhalt": "ohne Zeit"},
		map[string]interface{}{
			"kategorie": "MELDUNG", "timestampEreignis": "2026-03-01T10:15:00Z", "inhalt": "x",
			"laufendeNummer": 99,
		},
	}
	for idx, body := range bodies {
		resp := uut.call(http.MethodPost, "/etb", body, uut.token)
		assert.Equalf(http.StatusBadRequest, resp.Code, "body %d", idx)

		var envelope map[string]interface{}
		decode(t, resp, &envelope)
		assert.Equal(false, envelope["success"])
	}

	uut.service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestListEntriesQueryParsing(t *testing.T) {
	assert := assert.New(t)
	uut := newTestAPI(t, nil, nil)

	von := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	bis := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	uut.service.On(
		"FindAll",
		mock.Anything,
		mock.MatchedBy(func(f etb.EntryFilter) bool {
			return f.Kategorie != nil && *f.Kategorie == models.EntryCategoryRequest &&
				f.ReferenzPatientID != nil && *f.ReferenzPatientID == "patient-3" &&
				f.AutorID != nil && *f.AutorID == "user-2" &&
				f.Search != nil && *f.Search == "RTW" &&
				f.VonZeitstempel != nil && f.VonZeitstempel.Equal(von) &&
				f.BisZeitstempel != nil && f.BisZeitstempel.Equal(bis) &&
				f.IncludeUeberschrieben &&
				f.Page == 2 && f.Limit == 5 &&
				f.ReferenzEinsatzID == nil
		}),
	).Return(etb.EntryPage{
		Items: []models.Entry{{ID: "entry-6"}},
		Pagination: etb.Pagination{
			CurrentPage: 2, ItemsPerPage: 5, TotalItems: 6, TotalPages: 2,
		},
	}, nil).Once()

	resp := uut.call(
		http.MethodGet,
		"/etb?kategorie=anforderung&referenzPatientId=patient-3&autorId=user-2&search=RTW"+
			"&vonZeitstempel=2026-03-01T08:00:00Z&bisZeitstempel=2026-03-01T18:00:00Z"+
			"&includeUeberschrieben=true&page=2&limit=5",
		nil,
		uut.token,
	)
	assert.Equal(http.StatusOK, resp.Code)

	var body api.EntryListResponse
	decode(t, resp, &body)
	assert.Len(body.Items, 1)
	assert.Equal(2, body.Pagination.CurrentPage)
	assert.Equal(int64(6), body.Pagination.TotalItems)
	assert.Equal(2, body.Pagination.TotalPages)

	// Malformed query values never reach the service
	for _, query := range []string{
		"?page=zwei",
		"?limit=-1",
		"?kategorie=WETTER",
		"?vonZeitstempel=gestern",
		"?includeUeberschrieben=vielleicht",
	} {
		resp := uut.call(http.MethodGet, "/etb"+query, nil, uut.token)
		assert.Equalf(http.StatusBadRequest, resp.Code, "query %s", query)
	}
	uut.service.AssertNumberOfCalls(t, "FindAll", 1)
}

func TestServiceErrorMapping(t *testing.T) {
	assert := assert.New(t)
	uut := newTestAPI(t, nil, nil)

	cases := map[string]struct {
		err      error
		expected int
	}{
		"missing":  {&etb.Error{Kind: etb.ErrorKindNotFound, Message: "entry missing"}, http.StatusNotFound},
		"closed":   {&etb.Error{Kind: etb.ErrorKindBadRequest, Message: "entry closed"}, http.StatusBadRequest},
		"stale":    {&etb.Error{Kind: etb.ErrorKindConflict, Message: "version mismatch"}, http.StatusConflict},
		"broken":   {&etb.Error{Kind: etb.ErrorKindInternal, Message: "db down"}, http.StatusInternalServerError},
		"wrapped":  {fmt.Errorf("outer [%w]", &etb.Error{Kind: etb.ErrorKindNotFound}), http.StatusNotFound},
		"untagged": {fmt.Errorf("something else"), http.StatusInternalServerError},
	}
	for entryID, tc := range cases {
		uut.service.On("FindOne", mock.Anything, entryID).Return(models.Entry{}, tc.err).Once()

		resp := uut.call(http.MethodGet, "/etb/"+entryID, nil, uut.token)
		assert.Equalf(tc.expected, resp.Code, "case %s", entryID)

		var envelope map[string]interface{}
		decode(t, resp, &envelope)
		assert.Equal(false, envelope["success"])
		// Internal details stay out of the response
		assert.NotContains(resp.Body.String(), "db down")
	}
}

func TestUpdateAndCloseEntry(t *testing.T) {
	assert := assert.New(t)
	uut := newTestAPI(t, nil, nil)

	uut.service.On(
		"Update",
		mock.Anything,
		testActor,
		"entry-1",
		mock.MatchedBy(func(in etb.UpdateEntryInput) bool {
			return in.Inhalt != nil && *in.Inhalt == "korrigiert" &&
				in.Kategorie != nil && *in.Kategorie == models.EntryCategoryMessage &&
				in.ExpectedVersion != nil && *in.ExpectedVersion == 1 &&
				in.Sender == nil
		}),
	).Return(models.Entry{ID: "entry-1", Inhalt: "korrigiert", Version: 2}, nil).Once()

	resp := uut.call(http.MethodPatch, "/etb/entry-1", map[string]interface{}{
		"inhalt": "korrigiert", "kategorie": "MELDUNG", "version": 1,
	}, uut.token)
	assert.Equal(http.StatusOK, resp.Code)
	var body api.EntryResponse
	decode(t, resp, &body)
	assert.Equal(2, body.Entry.Version)

	// Version must be positive
	resp = uut.call(http.MethodPatch, "/etb/entry-1", map[string]interface{}{
		"inhalt": "x", "version": 0,
	}, uut.token)
	assert.Equal(http.StatusBadRequest, resp.Code)

	// Closing a closed entry
	uut.service.On("Close", mock.Anything, testActor, "entry-1").
		Return(models.Entry{}, &etb.Error{Kind: etb.ErrorKindBadRequest, Message: "closed"}).Once()
	resp = uut.call(http.MethodPatch, "/etb/entry-1/schliessen", nil, uut.token)
	assert.Equal(http.StatusBadRequest, resp.Code)
}

func TestSupersedeAndHistory(t *testing.T) {
	assert := assert.New(t)
	uut := newTestAPI(t, nil, nil)

	uut.service.On(
		"Supersede",
		mock.Anything,
		testActor,
		"entry-b",
		mock.MatchedBy(func(in etb.SupersedeEntryInput) bool {
			return in.Inhalt == "richtig" && in.Grund == "Tippfehler" && in.Kategorie == nil
		}),
	).Return(models.Entry{
		ID: "entry-c", LaufendeNummer: 3, Status: models.EntryStatusActive,
		UeberschriebeneEintraege: []models.EntryReference{{ID: "entry-b", LaufendeNummer: 2}},
	}, nil).Once()

	resp := uut.call(http.MethodPost, "/etb/entry-b/ueberschreiben", map[string]interface{}{
		"inhalt": "richtig", "grund": "Tippfehler",
	}, uut.token)
	assert.Equal(http.StatusCreated, resp.Code)
	var created api.EntryResponse
	decode(t, resp, &created)
	assert.Equal("entry-c", created.Entry.ID)
	assert.Len(created.Entry.UeberschriebeneEintraege, 1)

	// Already superseded
	uut.service.On("Supersede", mock.Anything, testActor, "entry-b", mock.Anything).
		Return(models.Entry{}, &etb.Error{Kind: etb.ErrorKindConflict, Message: "superseded"}).
		Once()
	resp = uut.call(http.MethodPost, "/etb/entry-b/ueberschreiben", map[string]interface{}{
		"inhalt": "nochmal",
	}, uut.token)
	assert.Equal(http.StatusConflict, resp.Code)

	// Replacement content is required
	resp = uut.call(http.MethodPost, "/etb/entry-b/ueberschreiben", map[string]interface{}{
		"grund": "leer",
	}, uut.token)
	assert.Equal(http.StatusBadRequest, resp.Code)

	uut.service.On("History", mock.Anything, "entry-c").Return([]models.Entry{
		{ID: "entry-b", LaufendeNummer: 2}, {ID: "entry-c", LaufendeNummer: 3},
	}, nil).Once()
	resp = uut.call(http.MethodGet, "/etb/entry-c/verlauf", nil, uut.token)
	assert.Equal(http.StatusOK, resp.Code)
	var chain api.EntryHistoryResponse
	decode(t, resp, &chain)
	assert.Len(chain.Entries, 2)
	assert.Equal("entry-b", chain.Entries[0].ID)
}

// multipartUpload build a multipart upload request
func multipartUpload(
	t *testing.T, path, token, filename string, content []byte, beschreibung string,
) *http.Request {
	assert := assert.New(t)

	payload := &bytes.Buffer{}
	writer := multipart.NewWriter(payload)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		assert.Nil(err)
		_, err = part.Write(content)
		assert.Nil(err)
	}
	if beschreibung != "" {
		assert.Nil(writer.WriteField("beschreibung", beschreibung))
	}
	assert.Nil(writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, payload)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAttachmentUpload(t *testing.T) {
	assert := assert.New(t)
	uut := newTestAPI(t, nil, nil)

	content := []byte("Lageskizze Abschnitt Nord")
	uut.service.On(
		"AddAttachment",
		mock.Anything,
		testActor,
		"entry-1",
		mock.MatchedBy(func(upload etb.AttachmentUpload) bool {
			return upload.Filename == "skizze.txt" &&
				bytes.Equal(upload.Content, content) &&
				upload.Beschreibung != nil && *upload.Beschreibung == "Skizze"
		}),
	).Return(models.Attachment{
		ID: "att-1", EntryID: "entry-1", Dateiname: "skizze.txt", Dateityp: "text/plain",
		Groesse: int64(len(content)),
	}, nil).Once()

	resp := httptest.NewRecorder()
	uut.router.ServeHTTP(
		resp, multipartUpload(t, "/etb/entry-1/anlage", uut.token, "skizze.txt", content, "Skizze"),
	)
	assert.Equal(http.StatusCreated, resp.Code)
	var body api.AttachmentResponse
	decode(t, resp, &body)
	assert.Equal("att-1", body.Attachment.ID)
	assert.Equal(int64(len(content)), body.Attachment.Groesse)

	// No file part
	resp = httptest.NewRecorder()
	uut.router.ServeHTTP(
		resp, multipartUpload(t, "/etb/entry-1/anlage", uut.token, "", nil, "nur Text"),
	)
	assert.Equal(http.StatusBadRequest, resp.Code)

	// Larger than the configured limit
	resp = httptest.NewRecorder()
	uut.router.ServeHTTP(
		resp,
		multipartUpload(t, "/etb/entry-1/anlage", uut.token, "gross.bin", make([]byte, 2048), ""),
	)
	assert.Equal(http.StatusBadRequest, resp.Code)

	// Not multipart at all
	resp = uut.call(http.MethodPost, "/etb/entry-1/anlage", map[string]string{}, uut.token)
	assert.Equal(http.StatusBadRequest, resp.Code)

	uut.service.AssertNumberOfCalls(t, "AddAttachment", 1)
}

func TestAttachmentReads(t *testing.T) {
	assert := assert.New(t)
	uut := newTestAPI(t, nil, nil)

	attachment := models.Attachment{
		ID: "att-1", EntryID: "entry-1", Dateiname: "bericht.pdf", Dateityp: "application/pdf",
		Groesse: 4,
	}

	uut.service.On("FindAttachmentsByEntry", mock.Anything, "entry-1").
		Return([]models.Attachment{attachment}, nil).Once()
	resp := uut.call(http.MethodGet, "/etb/entry-1/anlagen", nil, uut.token)
	assert.Equal(http.StatusOK, resp.Code)
	var list api.AttachmentListResponse
	decode(t, resp, &list)
	assert.Len(list.Attachments, 1)

	// The attachment route is not mistaken for an entry ID
	uut.service.On("FindAttachmentByID", mock.Anything, "att-1").Return(attachment, nil).Once()
	resp = uut.call(http.MethodGet, "/etb/anlage/att-1", nil, uut.token)
	assert.Equal(http.StatusOK, resp.Code)
	var single api.AttachmentResponse
	decode(t, resp, &single)
	assert.Equal("bericht.pdf", single.Attachment.Dateiname)

	uut.service.On("ReadAttachmentContent", mock.Anything, "att-1").
		Return(attachment, []byte("%PDF"), nil).Once()
	resp = uut.call(http.MethodGet, "/etb/anlage/att-1/inhalt", nil, uut.token)
	assert.Equal(http.StatusOK, resp.Code)
	assert.Equal("application/pdf", resp.Header().Get("Content-Type"))
	assert.Equal("4", resp.Header().Get("Content-Length"))
	assert.Contains(resp.Header().Get("Content-Disposition"), `filename="bericht.pdf"`)
	assert.Equal("%PDF", resp.Body.String())

	uut.service.On("ReadAttachmentContent", mock.Anything, "att-2").
		Return(models.Attachment{}, nil, &etb.Error{Kind: etb.ErrorKindNotFound}).Once()
	resp = uut.call(http.MethodGet, "/etb/anlage/att-2/inhalt", nil, uut.token)
	assert.Equal(http.StatusNotFound, resp.Code)

	uut.service.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestAuditAndKeyRotation(t *testing.T) {
	assert := assert.New(t)
	uut := newTestAPI(t, nil, nil)

	uut.service.On(
		"ListAuditEvents",
		mock.Anything,
		mock.MatchedBy(func(f etb.AuditEventFilter) bool {
			return len(f.EventTypes) == 2 &&
				f.EventTypes[0] == models.AuditEventTypeEntryCreated &&
				f.EventTypes[1] == models.AuditEventTypeEntrySuperseded &&
				f.EntryID != nil && *f.EntryID == "entry-1" &&
				f.Offset == 10 && f.Limit == 5
		}),
	).Return([]models.AuditEvent{
		{ID: "evt-1", EventType: models.AuditEventTypeEntryCreated},
	}, nil).Once()

	resp := uut.call(
		http.MethodGet,
		"/audit/events?type=entry_created&type=ENTRY_SUPERSEDED&entryId=entry-1&offset=10&limit=5",
		nil,
		uut.token,
	)
	assert.Equal(http.StatusOK, resp.Code)
	var events api.AuditEventListResponse
	decode(t, resp, &events)
	assert.Len(events.Events, 1)

	resp = uut.call(http.MethodGet, "/audit/events?von=heute", nil, uut.token)
	assert.Equal(http.StatusBadRequest, resp.Code)

	uut.service.On("RotateEncryptionKey", mock.Anything, testActor).
		Return(models.EncryptionKey{ID: "4f0e9f4c-21a4-4d8e-8c6a-4d0f2f8d1a77"}, nil).Once()
	resp = uut.call(http.MethodPost, "/admin/encryption/rotate", nil, uut.token)
	assert.Equal(http.StatusOK, resp.Code)
	var rotated api.EncryptionKeyResponse
	decode(t, resp, &rotated)
	assert.Equal("4f0e9f4c-21a4-4d8e-8c6a-4d0f2f8d1a77", rotated.KeyID)

	uut.service.On("RotateEncryptionKey", mock.Anything, testActor).
		Return(models.EncryptionKey{}, &etb.Error{Kind: etb.ErrorKindBadRequest}).Once()
	resp = uut.call(http.MethodPost, "/admin/encryption/rotate", nil, uut.token)
	assert.Equal(http.StatusBadRequest, resp.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	assert := assert.New(t)

	healthy := newTestAPI(t, nil, map[string]api.ReadinessCheck{"database": staticCheck(nil)})
	resp := healthy.call(http.MethodGet, "/health/live", nil, "")
	assert.Equal(http.StatusOK, resp.Code)
	resp = healthy.call(http.MethodGet, "/health/ready", nil, "")
	assert.Equal(http.StatusOK, resp.Code)
	var body api.HealthResponse
	decode(t, resp, &body)
	assert.Equal("ok", body.Checks["database"])

	resp = healthy.call(http.MethodGet, "/metrics", nil, "")
	assert.Equal(http.StatusOK, resp.Code)
	assert.Contains(resp.Body.String(), "bluelight_http_requests_total")

	broken := newTestAPI(t, nil, map[string]api.ReadinessCheck{
		"database": staticCheck(fmt.Errorf("connection refused")),
	})
	resp = broken.call(http.MethodGet, "/health/ready", nil, "")
	assert.Equal(http.StatusServiceUnavailable, resp.Code)
	decode(t, resp, &body)
	assert.Equal("fail", body.Checks["database"])
	assert.Equal("fail", body.Status)
}
