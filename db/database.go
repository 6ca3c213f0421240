package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alwitt/bluelight/models"
	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrNotFound the requested row does not exist
var ErrNotFound = errors.New("record not found")

// ErrConflict a guarded write matched no row because a concurrent operation changed it
// first, or the write violated a uniqueness constraint
var ErrConflict = errors.New("conflicting concurrent modification")

// CommonListEntryQueryFilter common query filter when listing data entries
type CommonListEntryQueryFilter struct {
	Limit  *int
	Offset *int
}

// EntryQueryFilter ETB entry query filter conditions
type EntryQueryFilter struct {
	CommonListEntryQueryFilter
	// Kategorie only entries of this category
	Kategorie *models.EntryCategoryENUMType
	// ReferenzEinsatzID only entries referencing this incident
	ReferenzEinsatzID *string
	// ReferenzPatientID only entries referencing this patient
	ReferenzPatientID *string
	// ReferenzEinsatzmittelID only entries referencing this resource
	ReferenzEinsatzmittelID *string
	// AutorID only entries of this author
	AutorID *string
	// Search free text matched against content, sender, receiver, and author name
	Search *string
	// EventsAfter only entries whose event timestamp is at or after this point
	EventsAfter *time.Time
	// EventsBefore only entries whose event timestamp is at or before this point
	EventsBefore *time.Time
	// IncludeSuperseded whether to also return superseded entries
	IncludeSuperseded bool
}

// AuditEventQueryFilter audit event query filter conditions
type AuditEventQueryFilter struct {
	CommonListEntryQueryFilter
	// EventTypes the specific event types to query for
	EventTypes []models.AuditEventTypeENUMType
	// EntryID only events related to this entry
	EntryID *string
	// EventsAfter filter for events after this timestamp
	EventsAfter *time.Time
	// EventsBefore filter for events before this timestamp
	EventsBefore *time.Time
}

// EncryptionKeyQueryFilter encryption key query filer conditions
type EncryptionKeyQueryFilter struct {
	CommonListEntryQueryFilter
	// TargetState the specific states to query for
	TargetState []models.EncryptionKeyStateENUMType
}

// Database the database handle to interacting with the data base
type Database interface {
	// ------------------------------------------------------------------------------------
	// ETB entries

	/*
		NextLaufendeNummer reserve the next sequential entry number

		The reservation is only durable if the surrounding transaction commits.

			@param ctx context.Context - execution context
			@returns the reserved number
	*/
	NextLaufendeNummer(ctx context.Context) (int64, error)

	/*
		InsertEntry persist a new entry

			@param ctx context.Context - execution context
			@param entry models.Entry - the fully populated entry
			@returns the stored entry
	*/
	InsertEntry(ctx context.Context, entry models.Entry) (models.Entry, error)

	/*
		GetEntry fetch an entry by ID

			@param ctx context.Context - execution context
			@param entryID string - entry ID
			@returns the entry
	*/
	GetEntry(ctx context.Context, entryID string) (models.Entry, error)

	/*
		GetEntriesByIDs fetch a set of entries by ID. Unknown IDs are skipped.

			@param ctx context.Context - execution context
			@param entryIDs []string - entry IDs
			@returns the entries indexed by ID
	*/
	GetEntriesByIDs(ctx context.Context, entryIDs []string) (map[string]models.Entry, error)

	/*
		ListEntries list entries

			@param ctx context.Context - execution context
			@param filters EntryQueryFilter - entry listing filter
			@returns the page of entries, and total number of entries matching the filter
	*/
	ListEntries(ctx context.Context, filters EntryQueryFilter) ([]models.Entry, int64, error)

	/*
		ListEntriesSupersededBy list the entries which were superseded by an entry

			@param ctx context.Context - execution context
			@param entryID string - the superseding entry ID
			@returns the superseded entries
	*/
	ListEntriesSupersededBy(ctx context.Context, entryID string) ([]models.Entry, error)

	/*
		UpdateEntryFields change content fields of an open, active entry

			@param ctx context.Context - execution context
			@param entryID string - entry ID
			@param expectedVersion int - the entry version the change is based on
			@param fields models.EntryFieldUpdate - the fields to change
			@returns the updated entry
	*/
	UpdateEntryFields(
		ctx context.Context, entryID string, expectedVersion int, fields models.EntryFieldUpdate,
	) (models.Entry, error)

	/*
		CloseEntry mark an open entry as closed

			@param ctx context.Context - execution context
			@param entryID string - entry ID
			@param closedBy string - user closing the entry
			@param closedAt time.Time - closing timestamp
			@returns the updated entry
	*/
	CloseEntry(
		ctx context.Context, entryID string, closedBy string, closedAt time.Time,
	) (models.Entry, error)

	/*
		MarkEntrySuperseded mark an open, active entry as superseded

			@param ctx context.Context - execution context
			@param entryID string - entry ID
			@param successorID string - the replacement entry
			@param supersededBy string - user performing the operation
			@param supersededAt time.Time - operation timestamp
			@returns the updated entry
	*/
	MarkEntrySuperseded(
		ctx context.Context,
		entryID string,
		successorID string,
		supersededBy string,
		supersededAt time.Time,
	) (models.Entry, error)

	// ------------------------------------------------------------------------------------
	// ETB attachments

	/*
		InsertAttachment persist a new attachment

			@param ctx context.Context - execution context
			@param attachment models.Attachment - the attachment
			@returns the stored attachment
	*/
	InsertAttachment(ctx context.Context, attachment models.Attachment) (models.Attachment, error)

	/*
		GetAttachment fetch an attachment by ID

			@param ctx context.Context - execution context
			@param attachmentID string - attachment ID
			@returns the attachment
	*/
	GetAttachment(ctx context.Context, attachmentID string) (models.Attachment, error)

	/*
		ListAttachmentsOfEntry list attachments of one entry

			@param ctx context.Context - execution context
			@param entryID string - entry ID
			@returns the attachments
	*/
	ListAttachmentsOfEntry(ctx context.Context, entryID string) ([]models.Attachment, error)

	// ------------------------------------------------------------------------------------
	// Audit events

	/*
		RecordAuditEvent record a new audit event

			@param ctx context.Context - execution context
			@param eventType models.AuditEventTypeENUMType - event type
			@param entryID *string - related entry, if any
			@param actorID *string - who triggered the event, if known
			@param metadata interface{} - event metadata
			@returns the audit event
	*/
	RecordAuditEvent(
		ctx context.Context,
		eventType models.AuditEventTypeENUMType,
		entryID *string,
		actorID *string,
		metadata interface{},
	) (models.AuditEvent, error)

	/*
		ListAuditEvents list captured audit events

			@param ctx context.Context - execution context
			@param filters AuditEventQueryFilter - entry listing filter
			@return list of audit events
	*/
	ListAuditEvents(
		ctx context.Context, filters AuditEventQueryFilter,
	) ([]models.AuditEvent, error)

	// ------------------------------------------------------------------------------------
	// Encryption keys

	/*
		RecordEncryptionKey record an encrypted symmetric encryption key

			@param ctx context.Context - execution context
			@param encKeyMaterial string - encrypted key material
			@returns the key entry
	*/
	RecordEncryptionKey(ctx context.Context, encKeyMaterial []byte) (models.EncryptionKey, error)

	/*
		GetEncryptionKey fetch one encryption key

			@param ctx context.Context - execution context
			@param keyID string - the encryption key ID
			@return key entry
	*/
	GetEncryptionKey(ctx context.Context, keyID string) (models.EncryptionKey, error)

	/*
		ListEncryptionKeys list encryption keys

			@param ctx context.Context - execution context
			@param filters EncryptionKeyQueryFilter - entry listing filter
			@return list of keys
	*/
	ListEncryptionKeys(
		ctx context.Context, filters EncryptionKeyQueryFilter,
	) ([]models.EncryptionKey, error)

	/*
		MarkEncryptionKeyInactive retire an encryption key. Retired keys can still decrypt.

			@param ctx context.Context - execution context
			@param keyID string - the encryption key ID
	*/
	MarkEncryptionKeyInactive(ctx context.Context, keyID string) error
}

// databaseImpl implements Database
type databaseImpl struct {
	goutils.Component
	db        *gorm.DB
	validator *validator.Validate
}

// newDatabase define a new database client
func newDatabase(_ context.Context, sqlClient *gorm.DB) (Database, error) {
	logTags := log.Fields{"package": "bluelight", "module": "db", "component": "db-client"}

	instance := &databaseImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		db:        sqlClient,
		validator: validator.New(),
	}

	if err := models.RegisterWithValidator(instance.validator); err != nil {
		return nil, fmt.Errorf("failed to install custom validation macros [%w]", err)
	}

	return instance, nil
}

// translateError convert gorm errors into the package sentinel errors
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w [%w]", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w [%w]", ErrConflict, err)
	}
	if isLockContention(err) {
		return fmt.Errorf("%w [%w]", ErrConflict, err)
	}
	return err
}

// isLockContention whether the error is SQLite giving up on a held lock
func isLockContention(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked)
}

// applyPaging apply limit and offset to a query
func applyPaging(query *gorm.DB, filters CommonListEntryQueryFilter) *gorm.DB {
	if filters.Limit != nil {
		query = query.Limit(*filters.Limit)
	}
	if filters.Offset != nil {
		query = query.Offset(*filters.Offset)
	}
	return query
}
