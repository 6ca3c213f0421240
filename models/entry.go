// Package models - operations log data models
package models

import (
	"strings"
	"time"
)

// EntryCategoryENUMType ETB entry category ENUM value type
type EntryCategoryENUMType string

const (
	// EntryCategorySituationReport situation report ("Lagemeldung")
	EntryCategorySituationReport EntryCategoryENUMType = "LAGEMELDUNG"
	// EntryCategoryMessage generic message ("Meldung")
	EntryCategoryMessage EntryCategoryENUMType = "MELDUNG"
	// EntryCategoryRequest request for resources or action ("Anforderung")
	EntryCategoryRequest EntryCategoryENUMType = "ANFORDERUNG"
	// EntryCategoryCorrection correction of an earlier statement ("Korrektur")
	EntryCategoryCorrection EntryCategoryENUMType = "KORREKTUR"
	// EntryCategoryAutoForces automatically generated, forces related
	EntryCategoryAutoForces EntryCategoryENUMType = "AUTO_KRAEFTE"
	// EntryCategoryAutoPatients automatically generated, patient related
	EntryCategoryAutoPatients EntryCategoryENUMType = "AUTO_PATIENTEN"
	// EntryCategoryAutoTechnical automatically generated, technical
	EntryCategoryAutoTechnical EntryCategoryENUMType = "AUTO_TECHNISCH"
	// EntryCategoryAutoOther automatically generated, other
	EntryCategoryAutoOther EntryCategoryENUMType = "AUTO_SONSTIGES"
)

// EntryCategories the complete set of supported entry categories
var EntryCategories = []EntryCategoryENUMType{
	EntryCategorySituationReport,
	EntryCategoryMessage,
	EntryCategoryRequest,
	EntryCategoryCorrection,
	EntryCategoryAutoForces,
	EntryCategoryAutoPatients,
	EntryCategoryAutoTechnical,
	EntryCategoryAutoOther,
}

// ParseEntryCategory read a category regardless of letter case, i.e. "Meldung"
func ParseEntryCategory(value string) EntryCategoryENUMType {
	return EntryCategoryENUMType(strings.ToUpper(strings.TrimSpace(value)))
}

// IsValid whether the category is one of the supported values
func (c EntryCategoryENUMType) IsValid() bool {
	for _, known := range EntryCategories {
		if c == known {
			return true
		}
	}
	return false
}

// EntryStatusENUMType ETB entry status ENUM value type
type EntryStatusENUMType string

const (
	// EntryStatusActive the entry is the effective version
	EntryStatusActive EntryStatusENUMType = "AKTIV"
	// EntryStatusSuperseded the entry was replaced by a newer entry
	EntryStatusSuperseded EntryStatusENUMType = "UEBERSCHRIEBEN"
)

// Entry one record in the operations log (Einsatztagebuch)
type Entry struct {
	// ID entry ID
	ID string `json:"id" validate:"required,uuid_rfc4122"`
	// LaufendeNummer sequential display number
	LaufendeNummer int64 `json:"laufendeNummer" validate:"gte=1"`

	// TimestampErstellung when the entry was created
	TimestampErstellung time.Time `json:"timestampErstellung" validate:"required"`
	// TimestampEreignis when the logged event happened
	TimestampEreignis time.Time `json:"timestampEreignis" validate:"required"`

	// AutorID author user ID
	AutorID string `json:"autorId" validate:"required"`
	// AutorName author display name
	AutorName *string `json:"autorName,omitempty"`
	// AutorRolle author role
	AutorRolle *string `json:"autorRolle,omitempty"`

	// Kategorie entry category
	Kategorie EntryCategoryENUMType `json:"kategorie" validate:"required,etb_kategorie"`
	// Inhalt entry content
	Inhalt string `json:"inhalt" validate:"required"`

	// ReferenzEinsatzID referenced incident
	ReferenzEinsatzID *string `json:"referenzEinsatzId,omitempty"`
	// ReferenzPatientID referenced patient
	ReferenzPatientID *string `json:"referenzPatientId,omitempty"`
	// ReferenzEinsatzmittelID referenced resource / unit
	ReferenzEinsatzmittelID *string `json:"referenzEinsatzmittelId,omitempty"`

	// Sender call sign of the sender
	Sender *string `json:"sender,omitempty"`
	// Receiver call sign of the receiver
	Receiver *string `json:"receiver,omitempty"`

	// Version incremented on every content update
	Version int `json:"version" validate:"gte=1"`

	// IstAbgeschlossen whether the entry is closed
	IstAbgeschlossen bool `json:"istAbgeschlossen"`
	// TimestampAbschluss when the entry was closed
	TimestampAbschluss *time.Time `json:"timestampAbschluss,omitempty"`
	// AbgeschlossenVon who closed the entry
	AbgeschlossenVon *string `json:"abgeschlossenVon,omitempty"`

	// Status entry status
	Status EntryStatusENUMType `json:"status" validate:"required,etb_status"`
	// UeberschriebenDurchID the entry which superseded this one
	UeberschriebenDurchID *string `json:"ueberschriebenDurchId,omitempty"`
	// TimestampUeberschrieben when this entry was superseded
	TimestampUeberschrieben *time.Time `json:"timestampUeberschrieben,omitempty"`
	// UeberschriebenVon who superseded this entry
	UeberschriebenVon *string `json:"ueberschriebenVon,omitempty"`

	// Anlagen attachments of this entry. Only populated when explicitly loaded.
	Anlagen []Attachment `json:"anlagen,omitempty" validate:"-"`
	// UeberschriebeneEintraege entries which this entry superseded. Only populated when
	// explicitly loaded.
	UeberschriebeneEintraege []EntryReference `json:"ueberschriebeneEintraege,omitempty" validate:"-"`
}

// IsSuperseded whether the entry has been replaced by another entry
func (e Entry) IsSuperseded() bool {
	return e.Status == EntryStatusSuperseded
}

// Reference short reference to this entry
func (e Entry) Reference() EntryReference {
	return EntryReference{ID: e.ID, LaufendeNummer: e.LaufendeNummer}
}

// EntryReference lightweight pointer to another entry
type EntryReference struct {
	// ID entry ID
	ID string `json:"id"`
	// LaufendeNummer sequential display number
	LaufendeNummer int64 `json:"laufendeNummer"`
}

// EntryFieldUpdate set of entry fields a caller wants to change. Nil fields are left
// untouched.
type EntryFieldUpdate struct {
	Kategorie               *EntryCategoryENUMType `validate:"omitempty,etb_kategorie"`
	TimestampEreignis       *time.Time
	Inhalt                  *string `validate:"omitempty,min=1"`
	ReferenzEinsatzID       *string
	ReferenzPatientID       *string
	ReferenzEinsatzmittelID *string
	Sender                  *string
	Receiver                *string
}

// IsEmpty whether no field is being changed
func (u EntryFieldUpdate) IsEmpty() bool {
	return u.Kategorie == nil &&
		u.TimestampEreignis == nil &&
		u.Inhalt == nil &&
		u.ReferenzEinsatzID == nil &&
		u.ReferenzPatientID == nil &&
		u.ReferenzEinsatzmittelID == nil &&
		u.Sender == nil &&
		u.Receiver == nil
}
