package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDBAttachment(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	uut := newTestClient(t)
	utCtx := context.Background()

	entry1 := createTestEntry(t, uut, models.EntryCategoryMessage, "Mit Anlage")
	entry2 := createTestEntry(t, uut, models.EntryCategoryMessage, "Ohne Anlage")

	beschreibung := "Lageskizze"
	var attach1, attach2 models.Attachment
	err := uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		var err error
		attach1, err = dbClient.InsertAttachment(ctx, models.Attachment{
			ID:           uuid.NewString(),
			EntryID:      entry1.ID,
			Dateiname:    "skizze.png",
			Dateityp:     "image/png",
			Speicherort:  "2026/10/17/abc_skizze.png",
			Beschreibung: &beschreibung,
			Groesse:      1024,
		})
		if err != nil {
			return err
		}
		keyID := uuid.NewString()
		attach2, err = dbClient.InsertAttachment(ctx, models.Attachment{
			ID:          uuid.NewString(),
			EntryID:     entry1.ID,
			Dateiname:   "bericht.pdf",
			Dateityp:    "application/pdf",
			Speicherort: "2026/10/17/def_bericht.pdf",
			Groesse:     2048,
			EncKeyID:    &keyID,
			EncNonce:    []byte("nonce"),
		})
		return err
	})
	assert.Nil(err)

	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		read, err := dbClient.GetAttachment(ctx, attach1.ID)
		assert.Nil(err)
		assert.Equal(entry1.ID, read.EntryID)
		assert.Equal("skizze.png", read.Dateiname)
		assert.Equal(beschreibung, *read.Beschreibung)
		assert.Equal(int64(1024), read.Groesse)
		assert.False(read.IsEncrypted())

		read, err = dbClient.GetAttachment(ctx, attach2.ID)
		assert.Nil(err)
		assert.True(read.IsEncrypted())
		assert.Equal([]byte("nonce"), read.EncNonce)

		attachments, err := dbClient.ListAttachmentsOfEntry(ctx, entry1.ID)
		assert.Nil(err)
		assert.Len(attachments, 2)

		attachments, err = dbClient.ListAttachmentsOfEntry(ctx, entry2.ID)
		assert.Nil(err)
		assert.Len(attachments, 0)

		_, err = dbClient.GetAttachment(ctx, uuid.NewString())
		assert.True(errors.Is(err, db.ErrNotFound))
		return nil
	})
	assert.Nil(err)

	// Attachment of an unknown entry violates the foreign key
	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.InsertAttachment(ctx, models.Attachment{
			ID:          uuid.NewString(),
			EntryID:     uuid.NewString(),
			Dateiname:   "x.txt",
			Dateityp:    "text/plain",
			Speicherort: "x",
		})
		return err
	})
	assert.NotNil(err)
}

func TestDBAuditEvents(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	uut := newTestClient(t)
	utCtx := context.Background()

	entry1 := createTestEntry(t, uut, models.EntryCategoryMessage, "Eins")
	entry2 := createTestEntry(t, uut, models.EntryCategoryMessage, "Zwei")
	actor := "user-1"

	err := uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		if _, err := dbClient.RecordAuditEvent(
			ctx, models.AuditEventTypeEntryCreated, &entry1.ID, &actor,
			models.AuditEventEntryRelated{LaufendeNummer: 1, Version: 1},
		); err != nil {
			return err
		}
		if _, err := dbClient.RecordAuditEvent(
			ctx, models.AuditEventTypeEntryCreated, &entry2.ID, &actor,
			models.AuditEventEntryRelated{LaufendeNummer: 2, Version: 1},
		); err != nil {
			return err
		}
		_, err := dbClient.RecordAuditEvent(
			ctx, models.AuditEventTypeEntrySuperseded, &entry1.ID, &actor,
			models.AuditEventEntrySuperseded{
				OriginalID: entry1.ID, SuccessorID: entry2.ID, Reason: "Tippfehler",
			},
		)
		return err
	})
	assert.Nil(err)

	// Invalid metadata is rejected
	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.RecordAuditEvent(
			ctx, models.AuditEventTypeEntryCreated, &entry1.ID, &actor,
			models.AuditEventEntryRelated{LaufendeNummer: 0, Version: 1},
		)
		return err
	})
	assert.NotNil(err)

	validate := validator.New()
	assert.Nil(models.RegisterWithValidator(validate))

	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		events, err := dbClient.ListAuditEvents(ctx, db.AuditEventQueryFilter{})
		assert.Nil(err)
		assert.Len(events, 3)

		events, err = dbClient.ListAuditEvents(ctx, db.AuditEventQueryFilter{EntryID: &entry1.ID})
		assert.Nil(err)
		assert.Len(events, 2)

		events, err = dbClient.ListAuditEvents(ctx, db.AuditEventQueryFilter{
			EventTypes: []models.AuditEventTypeENUMType{models.AuditEventTypeEntrySuperseded},
		})
		assert.Nil(err)
		assert.Len(events, 1)
		metadata, err := events[0].ParseMetadata(validate)
		assert.Nil(err)
		superseded, ok := metadata.(models.AuditEventEntrySuperseded)
		assert.True(ok)
		assert.Equal(entry2.ID, superseded.SuccessorID)
		assert.Equal("Tippfehler", superseded.Reason)
		return nil
	})
	assert.Nil(err)
}
