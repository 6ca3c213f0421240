package etb_test

import (
	"context"
	"testing"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/etb"
	mockdb "github.com/alwitt/bluelight/mocks/db"
	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAttachmentPlain(t *testing.T) {
	assert := assert.New(t)
	utCtx := context.Background()

	uut, _ := newTestService(t, false)

	entry := createEntry(t, uut, models.EntryCategoryMessage, "Foto Einsatzstelle")

	// Nothing attached yet
	attachments, err := uut.FindAttachmentsByEntry(utCtx, entry.ID)
	assert.Nil(err)
	assert.Empty(attachments)

	content := []byte("Lageskizze Abschnitt Nord\n")
	attachment, err := uut.AddAttachment(utCtx, testActor, entry.ID, etb.AttachmentUpload{
		Filename:     "../skizze nord.txt",
		Beschreibung: strPtr("Skizze"),
		Content:      content,
	})
	assert.Nil(err)
	assert.Equal(entry.ID, attachment.EntryID)
	assert.Equal("../skizze nord.txt", attachment.Dateiname)
	assert.Equal("text/plain; charset=utf-8", attachment.Dateityp)
	assert.Equal(int64(len(content)), attachment.Groesse)
	assert.Contains(attachment.Speicherort, "_skizze_nord.txt")
	assert.NotContains(attachment.Speicherort, "..")
	assert.False(attachment.IsEncrypted())

	// Declared type wins
	second, err := uut.AddAttachment(utCtx, testActor, entry.ID, etb.AttachmentUpload{
		Filename:    "daten.json",
		ContentType: "application/json",
		Content:     []byte(`{"a":1}`),
	})
	assert.Nil(err)
	assert.Equal("application/json", second.Dateityp)

	attachments, err = uut.FindAttachmentsByEntry(utCtx, entry.ID)
	assert.Nil(err)
	assert.Len(attachments, 2)

	read, err := uut.FindAttachmentByID(utCtx, attachment.ID)
	assert.Nil(err)
	assert.Equal(attachment.Speicherort, read.Speicherort)

	_, readContent, err := uut.ReadAttachmentContent(utCtx, attachment.ID)
	assert.Nil(err)
	assert.Equal(content, readContent)

	// Entry carries its attachments
	hydrated, err := uut.FindOne(utCtx, entry.ID)
	assert.Nil(err)
	assert.Len(hydrated.Anlagen, 2)

	// Empty upload
	_, err = uut.AddAttachment(utCtx, testActor, entry.ID, etb.AttachmentUpload{
		Filename: "leer.txt",
	})
	assert.True(etb.IsBadRequest(err))

	// Closed entry
	_, err = uut.Close(utCtx, testActor, entry.ID)
	assert.Nil(err)
	_, err = uut.AddAttachment(utCtx, testActor, entry.ID, etb.AttachmentUpload{
		Filename: "spaet.txt",
		Content:  []byte("zu spaet"),
	})
	assert.True(etb.IsBadRequest(err))

	// Unknown IDs
	missing := "2c4e8f6a-0000-4000-8000-000000000000"
	_, err = uut.FindAttachmentByID(utCtx, missing)
	assert.True(etb.IsNotFound(err))
	_, err = uut.FindAttachmentsByEntry(utCtx, missing)
	assert.True(etb.IsNotFound(err))
	_, err = uut.AddAttachment(utCtx, testActor, missing, etb.AttachmentUpload{
		Filename: "x.txt",
		Content:  []byte("x"),
	})
	assert.True(etb.IsNotFound(err))

	events, err := uut.ListAuditEvents(utCtx, etb.AuditEventFilter{
		EventTypes: []models.AuditEventTypeENUMType{models.AuditEventTypeAttachmentAdded},
	})
	assert.Nil(err)
	assert.Len(events, 2)
}

func TestAttachmentEncrypted(t *testing.T) {
	assert := assert.New(t)
	utCtx := context.Background()

	uut, _ := newTestService(t, true)

	entry := createEntry(t, uut, models.EntryCategoryMessage, "Patientenliste")

	content := []byte("Patient 1: Sichtungskategorie rot")
	attachment, err := uut.AddAttachment(utCtx, testActor, entry.ID, etb.AttachmentUpload{
		Filename: "patienten.txt",
		Content:  content,
	})
	assert.Nil(err)
	assert.True(attachment.IsEncrypted())
	assert.NotEmpty(attachment.EncNonce)

	_, readContent, err := uut.ReadAttachmentContent(utCtx, attachment.ID)
	assert.Nil(err)
	assert.Equal(content, readContent)

	// Rotation does not affect existing content
	newKey, err := uut.RotateEncryptionKey(utCtx, testActor)
	assert.Nil(err)
	assert.NotEqual(*attachment.EncKeyID, newKey.ID)

	_, readContent, err = uut.ReadAttachmentContent(utCtx, attachment.ID)
	assert.Nil(err)
	assert.Equal(content, readContent)

	// New content uses the new key
	second, err := uut.AddAttachment(utCtx, testActor, entry.ID, etb.AttachmentUpload{
		Filename: "patienten2.txt",
		Content:  []byte("Patient 2: gelb"),
	})
	assert.Nil(err)
	assert.Equal(newKey.ID, *second.EncKeyID)

	// Attachment audit events record the encryption
	events, err := uut.ListAuditEvents(utCtx, etb.AuditEventFilter{
		EventTypes: []models.AuditEventTypeENUMType{models.AuditEventTypeAttachmentAdded},
	})
	assert.Nil(err)
	assert.Len(events, 2)
	validate := validator.New()
	for _, event := range events {
		parsed, err := event.ParseMetadata(validate)
		assert.Nil(err)
		meta, ok := parsed.(models.AuditEventAttachmentRelated)
		assert.True(ok)
		assert.True(meta.Encrypted)
	}
}

func TestAttachmentRotateWithoutEncryption(t *testing.T) {
	assert := assert.New(t)

	uut, _ := newTestService(t, false)

	_, err := uut.RotateEncryptionKey(context.Background(), testActor)
	assert.True(etb.IsBadRequest(err))
}

func TestAttachmentListShortCircuitsOnMissingEntry(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	mockDBClient := mockdb.NewClient(t)
	mockDatabase := mockdb.NewDatabase(t)

	uut, err := etb.NewService(etb.ServiceParams{
		Persistence: mockDBClient,
		Files:       &memoryStore{content: map[string][]byte{}},
	})
	assert.Nil(err)

	missing := "2c4e8f6a-0000-4000-8000-000000000000"

	mockDBClient.On("UseDatabase", mock.Anything, mock.Anything).Return(
		func(ctx context.Context, coreLogic func(context.Context, db.Database) error) error {
			return coreLogic(ctx, mockDatabase)
		},
	).Once()
	mockDatabase.On("GetEntry", mock.Anything, missing).Return(models.Entry{}, db.ErrNotFound).Once()

	_, err = uut.FindAttachmentsByEntry(utCtx, missing)
	assert.True(etb.IsNotFound(err))

	mockDatabase.AssertNotCalled(t, "ListAttachmentsOfEntry", mock.Anything, mock.Anything)
}
