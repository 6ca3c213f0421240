package api

import (
	"time"

	"github.com/alwitt/bluelight/etb"
	"github.com/alwitt/bluelight/models"
	"github.com/alwitt/goutils"
)

// CreateEntryRequest new entry request body
type CreateEntryRequest struct {
	Kategorie               string     `json:"kategorie" validate:"required,etb_kategorie"`
	TimestampEreignis       *time.Time `json:"timestampEreignis" validate:"required"`
	Inhalt                  string     `json:"inhalt" validate:"required"`
	ReferenzEinsatzID       *string    `json:"referenzEinsatzId,omitempty" validate:"omitempty,max=255"`
	ReferenzPatientID       *string    `json:"referenzPatientId,omitempty" validate:"omitempty,max=255"`
	ReferenzEinsatzmittelID *string    `json:"referenzEinsatzmittelId,omitempty" validate:"omitempty,max=255"`
	Sender                  *string    `json:"sender,omitempty" validate:"omitempty,max=255"`
	Receiver                *string    `json:"receiver,omitempty" validate:"omitempty,max=255"`
}

// normalizer request bodies which canonicalise values before validation
type normalizer interface {
	normalize()
}

// normalizeKategorie accept category names in any letter case
func normalizeKategorie(kategorie *string) {
	if kategorie != nil {
		*kategorie = string(models.ParseEntryCategory(*kategorie))
	}
}

func (r *CreateEntryRequest) normalize() {
	normalizeKategorie(&r.Kategorie)
}

func (r CreateEntryRequest) toInput() etb.CreateEntryInput {
	return etb.CreateEntryInput{
		Kategorie:               models.EntryCategoryENUMType(r.Kategorie),
		TimestampEreignis:       *r.TimestampEreignis,
		Inhalt:                  r.Inhalt,
		ReferenzEinsatzID:       r.ReferenzEinsatzID,
		ReferenzPatientID:       r.ReferenzPatientID,
		ReferenzEinsatzmittelID: r.ReferenzEinsatzmittelID,
		Sender:                  r.Sender,
		Receiver:                r.Receiver,
	}
}

// UpdateEntryRequest partial entry update request body
type UpdateEntryRequest struct {
	Kategorie               *string    `json:"kategorie,omitempty" validate:"omitempty,etb_kategorie"`
	TimestampEreignis       *time.Time `json:"timestampEreignis,omitempty"`
	Inhalt                  *string    `json:"inhalt,omitempty" validate:"omitempty,min=1"`
	ReferenzEinsatzID       *string    `json:"referenzEinsatzId,omitempty" validate:"omitempty,max=255"`
	ReferenzPatientID       *string    `json:"referenzPatientId,omitempty" validate:"omitempty,max=255"`
	ReferenzEinsatzmittelID *string    `json:"referenzEinsatzmittelId,omitempty" validate:"omitempty,max=255"`
	Sender                  *string    `json:"sender,omitempty" validate:"omitempty,max=255"`
	Receiver                *string    `json:"receiver,omitempty" validate:"omitempty,max=255"`
	// Version the entry version the change is based on
	Version *int `json:"version,omitempty" validate:"omitempty,gte=1"`
}

func (r *UpdateEntryRequest) normalize() {
	normalizeKategorie(r.Kategorie)
}

func (r UpdateEntryRequest) toInput() etb.UpdateEntryInput {
	input := etb.UpdateEntryInput{
		EntryFieldUpdate: models.EntryFieldUpdate{
			TimestampEreignis:       r.TimestampEreignis,
			Inhalt:                  r.Inhalt,
			ReferenzEinsatzID:       r.ReferenzEinsatzID,
			ReferenzPatientID:       r.ReferenzPatientID,
			ReferenzEinsatzmittelID: r.ReferenzEinsatzmittelID,
			Sender:                  r.Sender,
			Receiver:                r.Receiver,
		},
		ExpectedVersion: r.Version,
	}
	if r.Kategorie != nil {
		kategorie := models.EntryCategoryENUMType(*r.Kategorie)
		input.Kategorie = &kategorie
	}
	return input
}

// SupersedeEntryRequest entry replacement request body
type SupersedeEntryRequest struct {
	Kategorie               *string    `json:"kategorie,omitempty" validate:"omitempty,etb_kategorie"`
	TimestampEreignis       *time.Time `json:"timestampEreignis,omitempty"`
	Inhalt                  string     `json:"inhalt" validate:"required"`
	ReferenzEinsatzID       *string    `json:"referenzEinsatzId,omitempty" validate:"omitempty,max=255"`
	ReferenzPatientID       *string    `json:"referenzPatientId,omitempty" validate:"omitempty,max=255"`
	ReferenzEinsatzmittelID *string    `json:"referenzEinsatzmittelId,omitempty" validate:"omitempty,max=255"`
	Sender                  *string    `json:"sender,omitempty" validate:"omitempty,max=255"`
	Receiver                *string    `json:"receiver,omitempty" validate:"omitempty,max=255"`
	// Grund reason for the replacement
	Grund string `json:"grund,omitempty" validate:"max=2000"`
}

func (r *SupersedeEntryRequest) normalize() {
	normalizeKategorie(r.Kategorie)
}

func (r SupersedeEntryRequest) toInput() etb.SupersedeEntryInput {
	input := etb.SupersedeEntryInput{
		TimestampEreignis:       r.TimestampEreignis,
		Inhalt:                  r.Inhalt,
		ReferenzEinsatzID:       r.ReferenzEinsatzID,
		ReferenzPatientID:       r.ReferenzPatientID,
		ReferenzEinsatzmittelID: r.ReferenzEinsatzmittelID,
		Sender:                  r.Sender,
		Receiver:                r.Receiver,
		Grund:                   r.Grund,
	}
	if r.Kategorie != nil {
		kategorie := models.EntryCategoryENUMType(*r.Kategorie)
		input.Kategorie = &kategorie
	}
	return input
}

// EntryResponse response carrying one entry
type EntryResponse struct {
	goutils.RestAPIBaseResponse
	Entry models.Entry `json:"entry"`
}

// EntryListResponse response carrying one page of entries
type EntryListResponse struct {
	goutils.RestAPIBaseResponse
	Items      []models.Entry `json:"items"`
	Pagination etb.Pagination `json:"pagination"`
}

// EntryHistoryResponse response carrying a supersede chain
type EntryHistoryResponse struct {
	goutils.RestAPIBaseResponse
	Entries []models.Entry `json:"entries"`
}

// AttachmentResponse response carrying one attachment
type AttachmentResponse struct {
	goutils.RestAPIBaseResponse
	Attachment models.Attachment `json:"attachment"`
}

// AttachmentListResponse response carrying attachments
type AttachmentListResponse struct {
	goutils.RestAPIBaseResponse
	Attachments []models.Attachment `json:"attachments"`
}

// AuditEventListResponse response carrying audit events
type AuditEventListResponse struct {
	goutils.RestAPIBaseResponse
	Events []models.AuditEvent `json:"events"`
}

// EncryptionKeyResponse response carrying an encryption key reference
type EncryptionKeyResponse struct {
	goutils.RestAPIBaseResponse
	KeyID string `json:"keyId"`
}
