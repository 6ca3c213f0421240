package models

import "time"

// Attachment a file attached to exactly one operations log entry
type Attachment struct {
	// ID attachment ID
	ID string `json:"id" validate:"required"`
	// EntryID the owning entry
	EntryID string `json:"etbEntryId" validate:"required,uuid_rfc4122"`

	// Dateiname original file name as uploaded
	Dateiname string `json:"dateiname" validate:"required"`
	// Dateityp MIME type
	Dateityp string `json:"dateityp" validate:"required"`
	// Speicherort where the content is stored
	Speicherort string `json:"speicherort" validate:"required"`
	// Beschreibung optional description
	Beschreibung *string `json:"beschreibung,omitempty"`
	// Groesse content size in bytes
	Groesse int64 `json:"groesse" validate:"gte=0"`

	// EncKeyID the symmetric key which encrypted the stored content. Empty when the
	// content is stored as is.
	EncKeyID *string `json:"-"`
	// EncNonce the encryption nonce
	EncNonce []byte `json:"-"`

	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt entry update timestamp
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsEncrypted whether the stored content is encrypted
func (a Attachment) IsEncrypted() bool {
	return a.EncKeyID != nil && *a.EncKeyID != ""
}
