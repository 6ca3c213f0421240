package etb

import (
	"context"
	"errors"
	"mime"
	"strconv"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/encryption"
	"github.com/alwitt/bluelight/filestore"
	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// detectContentType pick the MIME type of an upload. The declared type wins unless it is
// missing or generic, then the content is sniffed.
func detectContentType(declared string, content []byte) string {
	if declared != "" {
		if parsed, params, err := mime.ParseMediaType(declared); err == nil &&
			parsed != "application/octet-stream" {
			return mime.FormatMediaType(parsed, params)
		}
	}
	return mimetype.Detect(content).String()
}

/*
AddAttachment attach a file to an open entry

	@param ctx context.Context - execution context
	@param actor models.Actor - who is uploading
	@param entryID string - entry ID
	@param upload AttachmentUpload - the file
	@returns the attachment
*/
func (s *service) AddAttachment(
	ctx context.Context, actor models.Actor, entryID string, upload AttachmentUpload,
) (models.Attachment, error) {
	logTags := s.GetLogTagsForContext(ctx)

	if err := s.checkActor(actor); err != nil {
		return models.Attachment{}, s.fail(ctx, "add-attachment", err)
	}
	if len(upload.Content) == 0 {
		return models.Attachment{}, s.fail(
			ctx, "add-attachment", badRequest(nil, "no file content uploaded"),
		)
	}
	if err := s.validator.Struct(&upload); err != nil {
		return models.Attachment{}, s.fail(
			ctx, "add-attachment", badRequest(err, "invalid attachment upload"),
		)
	}

	attachment := models.Attachment{
		ID:           uuid.NewString(),
		EntryID:      entryID,
		Dateiname:    upload.Filename,
		Dateityp:     detectContentType(upload.ContentType, upload.Content),
		Beschreibung: upload.Beschreibung,
		Groesse:      int64(len(upload.Content)),
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
	}

	storedLocation := ""
	if err := s.persistence.UseDatabaseInTransaction(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			entry, err := getEntry(dbCtx, dbClient, entryID)
			if err != nil {
				return err
			}
			if entry.IstAbgeschlossen {
				return badRequest(nil, "entry %d is already closed", entry.LaufendeNummer)
			}

			content := upload.Content
			if s.crypto != nil {
				key, err := s.crypto.CurrentEncryptionKey(dbCtx, dbClient)
				if err != nil {
					return internal(err, "no attachment encryption key available")
				}
				_, encrypted, err := s.crypto.EncryptData(dbCtx, key.ID, content, dbClient)
				if err != nil {
					return internal(err, "unable to encrypt attachment")
				}
				keyID := key.ID
				attachment.EncKeyID = &keyID
				attachment.EncNonce = encrypted.Nonce
				content = encrypted.CipherText
			}

			storedLocation, err = s.files.Store(dbCtx, filestore.StorageName(upload.Filename), content)
			if err != nil {
				return internal(err, "unable to store attachment content")
			}
			attachment.Speicherort = storedLocation

			if attachment, err = dbClient.InsertAttachment(dbCtx, attachment); err != nil {
				return fromDBError(err, "unable to record attachment")
			}

			if _, err := dbClient.RecordAuditEvent(
				dbCtx,
				models.AuditEventTypeAttachmentAdded,
				&entry.ID,
				&actor.ID,
				models.AuditEventAttachmentRelated{
					AttachmentID: attachment.ID,
					Filename:     attachment.Dateiname,
					Encrypted:    attachment.IsEncrypted(),
				},
			); err != nil {
				return internal(err, "unable to record audit event")
			}
			return nil
		},
	); err != nil {
		// Content was written but the row was not committed
		if storedLocation != "" {
			if delErr := s.files.Delete(ctx, storedLocation); delErr != nil {
				log.WithError(delErr).WithFields(logTags).
					WithField("location", storedLocation).
					Error("Failed to remove orphaned attachment content")
			}
		}
		return models.Attachment{}, s.fail(
			ctx, "add-attachment", fromDBError(err, "unable to add attachment"),
		)
	}

	attachmentsStoredTotal.WithLabelValues(strconv.FormatBool(attachment.IsEncrypted())).Inc()
	attachmentBytesTotal.Add(float64(attachment.Groesse))
	log.WithFields(logTags).
		WithField("entry_id", entryID).
		WithField("attachment_id", attachment.ID).
		WithField("location", attachment.Speicherort).
		WithField("mime", attachment.Dateityp).
		Info("Stored attachment")

	return attachment, nil
}

/*
FindAttachmentsByEntry list attachments of an entry

	@param ctx context.Context - execution context
	@param entryID string - entry ID
	@returns the attachments
*/
func (s *service) FindAttachmentsByEntry(
	ctx context.Context, entryID string,
) ([]models.Attachment, error) {
	var attachments []models.Attachment
	if err := s.persistence.UseDatabase(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			if _, err := getEntry(dbCtx, dbClient, entryID); err != nil {
				return err
			}
			var err error
			attachments, err = dbClient.ListAttachmentsOfEntry(dbCtx, entryID)
			return err
		},
	); err != nil {
		return nil, s.fail(
			ctx, "find-attachments", fromDBError(err, "unable to list attachments"),
		)
	}
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	return attachments, nil
}

// getAttachment fetch an attachment, reporting a missing attachment as NotFound
func getAttachment(
	ctx context.Context, dbClient db.Database, attachmentID string,
) (models.Attachment, error) {
	attachment, err := dbClient.GetAttachment(ctx, attachmentID)
	if err != nil {
		return models.Attachment{}, fromDBError(err, "attachment %s not found", attachmentID)
	}
	return attachment, nil
}

/*
FindAttachmentByID fetch one attachment

	@param ctx context.Context - execution context
	@param attachmentID string - attachment ID
	@returns the attachment
*/
func (s *service) FindAttachmentByID(
	ctx context.Context, attachmentID string,
) (models.Attachment, error) {
	var attachment models.Attachment
	if err := s.persistence.UseDatabase(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			attachment, err = getAttachment(dbCtx, dbClient, attachmentID)
			return err
		},
	); err != nil {
		return models.Attachment{}, s.fail(
			ctx, "find-attachment", fromDBError(err, "unable to fetch attachment"),
		)
	}
	return attachment, nil
}

/*
ReadAttachmentContent fetch an attachment and its content

	@param ctx context.Context - execution context
	@param attachmentID string - attachment ID
	@returns the attachment and its plain content
*/
func (s *service) ReadAttachmentContent(
	ctx context.Context, attachmentID string,
) (models.Attachment, []byte, error) {
	var attachment models.Attachment
	var content []byte
	if err := s.persistence.UseDatabase(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			if attachment, err = getAttachment(dbCtx, dbClient, attachmentID); err != nil {
				return err
			}

			stored, err := s.files.Load(dbCtx, attachment.Speicherort)
			if err != nil {
				if errors.Is(err, filestore.ErrNotFound) {
					return notFound("content of attachment %s is missing", attachmentID)
				}
				return internal(err, "unable to load attachment content")
			}

			if !attachment.IsEncrypted() {
				content = stored
				return nil
			}
			if s.crypto == nil {
				return internal(
					nil, "attachment %s is encrypted but encryption is not configured", attachmentID,
				)
			}
			_, content, err = s.crypto.DecryptData(
				dbCtx,
				*attachment.EncKeyID,
				encryption.EncryptedData{CipherText: stored, Nonce: attachment.EncNonce},
				dbClient,
			)
			if err != nil {
				return internal(err, "unable to decrypt attachment content")
			}
			return nil
		},
	); err != nil {
		return models.Attachment{}, nil, s.fail(
			ctx, "read-attachment", fromDBError(err, "unable to read attachment"),
		)
	}
	return attachment, content, nil
}
