// Package etb - operations log (Einsatztagebuch) entry service
package etb

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/encryption"
	"github.com/alwitt/bluelight/filestore"
	"github.com/alwitt/bluelight/models"
	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
)

const (
	// DefaultPageSize entries per page when the caller does not specify
	DefaultPageSize = 20
	// MaxPageSize upper bound on entries per page
	MaxPageSize = 100
	// MaxPage largest accepted page number
	MaxPage = math.MaxInt32 / MaxPageSize
)

// CreateEntryInput parameters for logging a new entry
type CreateEntryInput struct {
	Kategorie               models.EntryCategoryENUMType `validate:"required,etb_kategorie"`
	TimestampEreignis       time.Time                    `validate:"required"`
	Inhalt                  string                       `validate:"required"`
	ReferenzEinsatzID       *string
	ReferenzPatientID       *string
	ReferenzEinsatzmittelID *string
	Sender                  *string
	Receiver                *string
}

// SupersedeEntryInput parameters for replacing an entry with a new one
//
// Unset optional fields are carried over from the entry being replaced.
type SupersedeEntryInput struct {
	Kategorie               *models.EntryCategoryENUMType `validate:"omitempty,etb_kategorie"`
	TimestampEreignis       *time.Time
	Inhalt                  string `validate:"required"`
	ReferenzEinsatzID       *string
	ReferenzPatientID       *string
	ReferenzEinsatzmittelID *string
	Sender                  *string
	Receiver                *string
	// Grund reason for the replacement
	Grund string
}

// UpdateEntryInput parameters for changing an entry
type UpdateEntryInput struct {
	models.EntryFieldUpdate
	// ExpectedVersion when set, the update is only applied to this version of the entry
	ExpectedVersion *int `validate:"omitempty,gte=1"`
}

// EntryFilter entry listing parameters
type EntryFilter struct {
	Kategorie               *models.EntryCategoryENUMType `validate:"omitempty,etb_kategorie"`
	ReferenzEinsatzID       *string
	ReferenzPatientID       *string
	ReferenzEinsatzmittelID *string
	AutorID                 *string
	Search                  *string
	VonZeitstempel          *time.Time
	BisZeitstempel          *time.Time
	IncludeUeberschrieben   bool
	// Page 1 based page number, defaults to 1
	Page int `validate:"gte=0"`
	// Limit page size, defaults to DefaultPageSize, capped at MaxPageSize
	Limit int `validate:"gte=0"`
}

// Pagination listing page metadata
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalItems   int64 `json:"totalItems"`
	TotalPages   int   `json:"totalPages"`
}

// EntryPage one page of entries
type EntryPage struct {
	Items      []models.Entry `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// AttachmentUpload an uploaded attachment
type AttachmentUpload struct {
	// Filename file name as given by the uploader
	Filename string `validate:"required"`
	// ContentType MIME type declared by the uploader, may be empty
	ContentType string
	// Beschreibung optional description
	Beschreibung *string
	// Content file content
	Content []byte `validate:"required"`
}

// AuditEventFilter audit event listing parameters
type AuditEventFilter struct {
	EventTypes []models.AuditEventTypeENUMType `validate:"omitempty,dive,audit_event_type"`
	EntryID    *string
	Von        *time.Time
	Bis        *time.Time
	Offset     int `validate:"gte=0"`
	Limit      int `validate:"gte=0"`
}

// Service operations log entry service
type Service interface {
	/*
		Create log a new entry

			@param ctx context.Context - execution context
			@param actor models.Actor - the author
			@param input CreateEntryInput - entry content
			@returns the new entry
	*/
	Create(ctx context.Context, actor models.Actor, input CreateEntryInput) (models.Entry, error)

	/*
		FindAll list entries

			@param ctx context.Context - execution context
			@param filter EntryFilter - listing parameters
			@returns one page of entries
	*/
	FindAll(ctx context.Context, filter EntryFilter) (EntryPage, error)

	/*
		FindOne fetch an entry with its attachments and superseded entries

			@param ctx context.Context - execution context
			@param entryID string - entry ID
			@returns the entry
	*/
	FindOne(ctx context.Context, entryID string) (models.Entry, error)

	/*
		Update change content fields of an open, active entry

			@param ctx context.Context - execution context
			@param actor models.Actor - who is changing the entry
			@param entryID string - entry ID
			@param input UpdateEntryInput - the changes
			@returns the updated entry
	*/
	Update(
		ctx context.Context, actor models.Actor, entryID string, input UpdateEntryInput,
	) (models.Entry, error)

	/*
		Close mark an entry as closed. Closed entries can not be changed anymore.

			@param ctx context.Context - execution context
			@param actor models.Actor - who is closing the entry
			@param entryID string - entry ID
			@returns the closed entry
	*/
	Close(ctx context.Context, actor models.Actor, entryID string) (models.Entry, error)

	/*
		Supersede replace an entry with a new entry. The original is kept, marked as superseded.

			@param ctx context.Context - execution context
			@param actor models.Actor - author of the replacement
			@param entryID string - the entry to replace
			@param input SupersedeEntryInput - content of the replacement
			@returns the replacement entry
	*/
	Supersede(
		ctx context.Context, actor models.Actor, entryID string, input SupersedeEntryInput,
	) (models.Entry, error)

	/*
		History the supersede chain an entry is part of, oldest first

			@param ctx context.Context - execution context
			@param entryID string - any entry of the chain
			@returns the chain
	*/
	History(ctx context.Context, entryID string) ([]models.Entry, error)

	/*
		AddAttachment attach a file to an open entry

			@param ctx context.Context - execution context
			@param actor models.Actor - who is uploading
			@param entryID string - entry ID
			@param upload AttachmentUpload - the file
			@returns the attachment
	*/
	AddAttachment(
		ctx context.Context, actor models.Actor, entryID string, upload AttachmentUpload,
	) (models.Attachment, error)

	/*
		FindAttachmentsByEntry list attachments of an entry

			@param ctx context.Context - execution context
			@param entryID string - entry ID
			@returns the attachments
	*/
	FindAttachmentsByEntry(ctx context.Context, entryID string) ([]models.Attachment, error)

	/*
		FindAttachmentByID fetch one attachment

			@param ctx context.Context - execution context
			@param attachmentID string - attachment ID
			@returns the attachment
	*/
	FindAttachmentByID(ctx context.Context, attachmentID string) (models.Attachment, error)

	/*
		ReadAttachmentContent fetch an attachment and its content

			@param ctx context.Context - execution context
			@param attachmentID string - attachment ID
			@returns the attachment and its plain content
	*/
	ReadAttachmentContent(
		ctx context.Context, attachmentID string,
	) (models.Attachment, []byte, error)

	/*
		ListAuditEvents list recorded audit events

			@param ctx context.Context - execution context
			@param filter AuditEventFilter - listing parameters
			@returns the audit events
	*/
	ListAuditEvents(ctx context.Context, filter AuditEventFilter) ([]models.AuditEvent, error)

	/*
		RotateEncryptionKey start encrypting new attachments with a fresh key

			@param ctx context.Context - execution context
			@param actor models.Actor - who requested the rotation
			@returns the new key
	*/
	RotateEncryptionKey(ctx context.Context, actor models.Actor) (models.EncryptionKey, error)
}

// ServiceParams entry service init parameters
type ServiceParams struct {
	// Persistence persistence layer client
	Persistence db.Client `validate:"required"`
	// Files attachment content storage
	Files filestore.FileStore `validate:"required"`
	// Crypto encrypts attachment content at rest. Content is stored as is when nil.
	Crypto encryption.CryptographyEngine `validate:"-"`
	// Now clock override
	Now func() time.Time `validate:"-"`
}

// service implements Service
type service struct {
	goutils.Component

	persistence db.Client
	files       filestore.FileStore
	crypto      encryption.CryptographyEngine
	validator   *validator.Validate
	now         func() time.Time
}

/*
NewService define new operations log entry service

	@param params ServiceParams - service parameters
	@returns service instance
*/
func NewService(params ServiceParams) (Service, error) {
	logTags := log.Fields{"package": "bluelight", "module": "etb", "component": "entry-service"}

	instance := &service{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		persistence: params.Persistence,
		files:       params.Files,
		crypto:      params.Crypto,
		validator:   validator.New(),
		now:         params.Now,
	}
	if instance.now == nil {
		instance.now = func() time.Time { return time.Now().UTC() }
	}

	if err := models.RegisterWithValidator(instance.validator); err != nil {
		return nil, fmt.Errorf("failed to install custom validation macros [%w]", err)
	}
	if err := instance.validator.Struct(&params); err != nil {
		return nil, fmt.Errorf("invalid entry service parameters [%w]", err)
	}

	return instance, nil
}

// checkActor reject operations without a caller identity
func (s *service) checkActor(actor models.Actor) error {
	if err := s.validator.Struct(&actor); err != nil {
		return badRequest(err, "caller identity missing")
	}
	return nil
}

// fail log and count a failed operation, then hand the error back
func (s *service) fail(ctx context.Context, operation string, err error) error {
	kind := KindOf(err)
	operationErrorsTotal.WithLabelValues(operation, string(kind)).Inc()
	entry := log.WithError(err).WithFields(s.GetLogTagsForContext(ctx)).WithField("operation", operation)
	if kind == ErrorKindInternal {
		entry.Error("Operations log request failed")
	} else {
		entry.Warn("Operations log request rejected")
	}
	return err
}

// utcTime the same instant in UTC, stored timestamps are compared in UTC
func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
