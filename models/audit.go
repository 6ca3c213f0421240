package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

// AuditEventTypeENUMType audit event type ENUM value type
type AuditEventTypeENUMType string

const (
	// AuditEventTypeEntryCreated new entry was logged
	AuditEventTypeEntryCreated AuditEventTypeENUMType = "ENTRY_CREATED"

	// AuditEventTypeEntryUpdated entry content was changed
	AuditEventTypeEntryUpdated AuditEventTypeENUMType = "ENTRY_UPDATED"

	// AuditEventTypeEntryClosed entry was closed
	AuditEventTypeEntryClosed AuditEventTypeENUMType = "ENTRY_CLOSED"

	// AuditEventTypeEntrySuperseded entry was replaced by a new entry
	AuditEventTypeEntrySuperseded AuditEventTypeENUMType = "ENTRY_SUPERSEDED"

	// AuditEventTypeAttachmentAdded attachment was added to an entry
	AuditEventTypeAttachmentAdded AuditEventTypeENUMType = "ATTACHMENT_ADDED"

	// AuditEventTypeNewEncryptionKey new attachment encryption key was added
	AuditEventTypeNewEncryptionKey AuditEventTypeENUMType = "ADD_NEW_ENCRYPTION_KEY"
)

// AuditEvent recording of a state changing operation
type AuditEvent struct {
	// ID audit entry ID
	ID string `json:"id" validate:"required"`
	// EventType audit event type
	EventType AuditEventTypeENUMType `json:"type" validate:"required,audit_event_type"`
	// EntryID the entry the event relates to, if any
	EntryID *string `json:"entryId,omitempty"`
	// ActorID who triggered the event, if known
	ActorID *string `json:"actorId,omitempty"`
	// Metadata metadata relating to the event
	Metadata datatypes.JSON `json:"metadata,omitempty"`
	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"createdAt"`
}

// ParseMetadata parse the metadata based on the event type
func (a AuditEvent) ParseMetadata(validator *validator.Validate) (interface{}, error) {
	switch a.EventType {
	case AuditEventTypeEntryCreated:
		fallthrough
	case AuditEventTypeEntryUpdated:
		fallthrough
	case AuditEventTypeEntryClosed:
		var parsed AuditEventEntryRelated
		if err := json.Unmarshal(a.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("audit event '%s' metadata parse failed [%w]", a.EventType, err)
		}
		return parsed, validator.Struct(&parsed)

	case AuditEventTypeEntrySuperseded:
		var parsed AuditEventEntrySuperseded
		if err := json.Unmarshal(a.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("audit event '%s' metadata parse failed [%w]", a.EventType, err)
		}
		return parsed, validator.Struct(&parsed)

	case AuditEventTypeAttachmentAdded:
		var parsed AuditEventAttachmentRelated
		if err := json.Unmarshal(a.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("audit event '%s' metadata parse failed [%w]", a.EventType, err)
		}
		return parsed, validator.Struct(&parsed)

	case AuditEventTypeNewEncryptionKey:
		var parsed AuditEventEncKeyRelated
		if err := json.Unmarshal(a.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("audit event '%s' metadata parse failed [%w]", a.EventType, err)
		}
		return parsed, validator.Struct(&parsed)
	}
	return nil, nil
}

// AuditEventEntryRelated audit event metadata related to one entry
type AuditEventEntryRelated struct {
	// LaufendeNummer sequential number of the entry
	LaufendeNummer int64 `json:"laufende_nummer" validate:"gte=1"`
	// Version entry version after the operation
	Version int `json:"version" validate:"gte=1"`
}

// AuditEventEntrySuperseded audit event metadata of a supersede operation
type AuditEventEntrySuperseded struct {
	// OriginalID the entry which was superseded
	OriginalID string `json:"original_id" validate:"required"`
	// SuccessorID the replacement entry
	SuccessorID string `json:"successor_id" validate:"required"`
	// Reason why the entry was superseded
	Reason string `json:"reason,omitempty"`
}

// AuditEventAttachmentRelated audit event metadata related to an attachment
type AuditEventAttachmentRelated struct {
	// AttachmentID the attachment
	AttachmentID string `json:"attachment_id" validate:"required"`
	// Filename original file name
	Filename string `json:"filename" validate:"required"`
	// Encrypted whether content is encrypted at rest
	Encrypted bool `json:"encrypted"`
}

// AuditEventEncKeyRelated audit event metadata related to encryption key
type AuditEventEncKeyRelated struct {
	// KeyID the encryption key added
	KeyID string `json:"key_id" validate:"required,uuid_rfc4122"`
}
