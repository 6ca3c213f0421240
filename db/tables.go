package db

import (
	"time"

	"github.com/alwitt/bluelight/models"
	"gorm.io/datatypes"
)

// The row types below mirror the schema built by the migrations under `migrations/`.
// They are deliberately separate from the `models` types; the to*/from* functions are the
// only place the two shapes meet.

// --------------------------------------------------------------------------------------
// ETB entries

// EntryRow ETB entry DB row
type EntryRow struct {
	ID                      string     `gorm:"column:id;primaryKey"`
	LaufendeNummer          int64      `gorm:"column:laufende_nummer;not null;uniqueIndex:idx_etb_entry_laufende_nummer"`
	TimestampErstellung     time.Time  `gorm:"column:timestamp_erstellung;not null"`
	TimestampEreignis       time.Time  `gorm:"column:timestamp_ereignis;not null;index:idx_etb_entry_timestamp_ereignis"`
	AutorID                 string     `gorm:"column:autor_id;not null;index:idx_etb_entry_autor_id"`
	AutorName               *string    `gorm:"column:autor_name"`
	AutorRolle              *string    `gorm:"column:autor_rolle"`
	Kategorie               string     `gorm:"column:kategorie;not null;index:idx_etb_entry_kategorie"`
	Inhalt                  string     `gorm:"column:inhalt;not null"`
	ReferenzEinsatzID       *string    `gorm:"column:referenz_einsatz_id;index:idx_etb_entry_referenz_einsatz_id"`
	ReferenzPatientID       *string    `gorm:"column:referenz_patient_id"`
	ReferenzEinsatzmittelID *string    `gorm:"column:referenz_einsatzmittel_id"`
	Sender                  *string    `gorm:"column:sender"`
	Receiver                *string    `gorm:"column:receiver"`
	Version                 int        `gorm:"column:version;not null;default:1"`
	IstAbgeschlossen        bool       `gorm:"column:ist_abgeschlossen;not null;default:false"`
	TimestampAbschluss      *time.Time `gorm:"column:timestamp_abschluss"`
	AbgeschlossenVon        *string    `gorm:"column:abgeschlossen_von"`
	Status                  string     `gorm:"column:status;not null;default:AKTIV;index:idx_etb_entry_status"`
	UeberschriebenDurchID   *string    `gorm:"column:ueberschrieben_durch_id"`
	TimestampUeberschrieben *time.Time `gorm:"column:timestamp_ueberschrieben"`
	UeberschriebenVon       *string    `gorm:"column:ueberschrieben_von"`
}

// TableName hard code table name
func (EntryRow) TableName() string {
	return "etb_entry"
}

func toEntryRow(e models.Entry) EntryRow {
	return EntryRow{
		ID:                      e.ID,
		LaufendeNummer:          e.LaufendeNummer,
		TimestampErstellung:     e.TimestampErstellung,
		TimestampEreignis:       e.TimestampEreignis,
		AutorID:                 e.AutorID,
		AutorName:               e.AutorName,
		AutorRolle:              e.AutorRolle,
		Kategorie:               string(e.Kategorie),
		Inhalt:                  e.Inhalt,
		ReferenzEinsatzID:       e.ReferenzEinsatzID,
		ReferenzPatientID:       e.ReferenzPatientID,
		ReferenzEinsatzmittelID: e.ReferenzEinsatzmittelID,
		Sender:                  e.Sender,
		Receiver:                e.Receiver,
		Version:                 e.Version,
		IstAbgeschlossen:        e.IstAbgeschlossen,
		TimestampAbschluss:      e.TimestampAbschluss,
		AbgeschlossenVon:        e.AbgeschlossenVon,
		Status:                  string(e.Status),
		UeberschriebenDurchID:   e.UeberschriebenDurchID,
		TimestampUeberschrieben: e.TimestampUeberschrieben,
		UeberschriebenVon:       e.UeberschriebenVon,
	}
}

func fromEntryRow(r EntryRow) models.Entry {
	return models.Entry{
		ID:                      r.ID,
		LaufendeNummer:          r.LaufendeNummer,
		TimestampErstellung:     r.TimestampErstellung,
		TimestampEreignis:       r.TimestampEreignis,
		AutorID:                 r.AutorID,
		AutorName:               r.AutorName,
		AutorRolle:              r.AutorRolle,
		Kategorie:               models.EntryCategoryENUMType(r.Kategorie),
		Inhalt:                  r.Inhalt,
		ReferenzEinsatzID:       r.ReferenzEinsatzID,
		ReferenzPatientID:       r.ReferenzPatientID,
		ReferenzEinsatzmittelID: r.ReferenzEinsatzmittelID,
		Sender:                  r.Sender,
		Receiver:                r.Receiver,
		Version:                 r.Version,
		IstAbgeschlossen:        r.IstAbgeschlossen,
		TimestampAbschluss:      r.TimestampAbschluss,
		AbgeschlossenVon:        r.AbgeschlossenVon,
		Status:                  models.EntryStatusENUMType(r.Status),
		UeberschriebenDurchID:   r.UeberschriebenDurchID,
		TimestampUeberschrieben: r.TimestampUeberschrieben,
		UeberschriebenVon:       r.UeberschriebenVon,
	}
}

// --------------------------------------------------------------------------------------
// ETB attachments

// AttachmentRow ETB attachment DB row
type AttachmentRow struct {
	ID           string    `gorm:"column:id;primaryKey"`
	EntryID      string    `gorm:"column:etb_entry_id;not null;index:idx_etb_attachment_etb_entry_id"`
	Dateiname    string    `gorm:"column:dateiname;not null"`
	Dateityp     string    `gorm:"column:dateityp;not null"`
	Speicherort  string    `gorm:"column:speicherort;not null"`
	Beschreibung *string   `gorm:"column:beschreibung"`
	Groesse      int64     `gorm:"column:groesse;not null;default:0"`
	EncKeyID     *string   `gorm:"column:enc_key_id"`
	EncNonce     []byte    `gorm:"column:enc_nonce"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	Entry        EntryRow  `gorm:"constraint:OnDelete:CASCADE;foreignKey:EntryID"`
}

// TableName hard code table name
func (AttachmentRow) TableName() string {
	return "etb_attachment"
}

func toAttachmentRow(a models.Attachment) AttachmentRow {
	return AttachmentRow{
		ID:           a.ID,
		EntryID:      a.EntryID,
		Dateiname:    a.Dateiname,
		Dateityp:     a.Dateityp,
		Speicherort:  a.Speicherort,
		Beschreibung: a.Beschreibung,
		Groesse:      a.Groesse,
		EncKeyID:     a.EncKeyID,
		EncNonce:     a.EncNonce,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func fromAttachmentRow(r AttachmentRow) models.Attachment {
	return models.Attachment{
		ID:           r.ID,
		EntryID:      r.EntryID,
		Dateiname:    r.Dateiname,
		Dateityp:     r.Dateityp,
		Speicherort:  r.Speicherort,
		Beschreibung: r.Beschreibung,
		Groesse:      r.Groesse,
		EncKeyID:     r.EncKeyID,
		EncNonce:     r.EncNonce,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// --------------------------------------------------------------------------------------
// Sequence counters

// SequenceRow named counter DB row
type SequenceRow struct {
	ID   string `gorm:"column:id;primaryKey"`
	Wert int64  `gorm:"column:wert;not null;default:0"`
}

// TableName hard code table name
func (SequenceRow) TableName() string {
	return "etb_sequence"
}

// --------------------------------------------------------------------------------------
// Audit events

// AuditEventRow audit event DB row
type AuditEventRow struct {
	ID        string         `gorm:"column:id;primaryKey"`
	EventType string         `gorm:"column:type;not null;index:idx_etb_audit_events_type"`
	EntryID   *string        `gorm:"column:etb_entry_id;index:idx_etb_audit_events_etb_entry_id"`
	ActorID   *string        `gorm:"column:actor_id"`
	Metadata  datatypes.JSON `gorm:"column:metadata;default:null"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

// TableName hard code table name
func (AuditEventRow) TableName() string {
	return "etb_audit_events"
}

func fromAuditEventRow(r AuditEventRow) models.AuditEvent {
	return models.AuditEvent{
		ID:        r.ID,
		EventType: models.AuditEventTypeENUMType(r.EventType),
		EntryID:   r.EntryID,
		ActorID:   r.ActorID,
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
	}
}

// --------------------------------------------------------------------------------------
// Encryption keys

// EncryptionKeyRow attachment encryption key DB row
type EncryptionKeyRow struct {
	ID             string    `gorm:"column:id;primaryKey"`
	EncKeyMaterial []byte    `gorm:"column:enc_key_material;not null"`
	State          string    `gorm:"column:state;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

// TableName hard code table name
func (EncryptionKeyRow) TableName() string {
	return "etb_encryption_keys"
}

func toEncryptionKeyRow(k models.EncryptionKey) EncryptionKeyRow {
	return EncryptionKeyRow{
		ID:             k.ID,
		EncKeyMaterial: k.EncKeyMaterial,
		State:          string(k.State),
		CreatedAt:      k.CreatedAt,
		UpdatedAt:      k.UpdatedAt,
	}
}

func fromEncryptionKeyRow(r EncryptionKeyRow) models.EncryptionKey {
	return models.EncryptionKey{
		ID:             r.ID,
		EncKeyMaterial: r.EncKeyMaterial,
		State:          models.EncryptionKeyStateENUMType(r.State),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
