package db

import (
	"context"
	"fmt"

	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
	"gorm.io/gorm/clause"
)

// ======================================================================================
// ETB attachments

/*
InsertAttachment persist a new attachment

	@param ctx context.Context - execution context
	@param attachment models.Attachment - the attachment
	@returns the stored attachment
*/
func (d *databaseImpl) InsertAttachment(
	ctx context.Context, attachment models.Attachment,
) (models.Attachment, error) {
	logTags := d.GetLogTagsForContext(ctx)

	if err := d.validator.Struct(&attachment); err != nil {
		return models.Attachment{}, fmt.Errorf("new attachment is not valid [%w]", err)
	}

	newEntry := toAttachmentRow(attachment)
	if tmp := d.db.Omit(clause.Associations).Create(&newEntry); tmp.Error != nil {
		err := translateError(tmp.Error)
		log.WithError(err).WithFields(logTags).WithField("entry_id", attachment.EntryID).
			Error("Attachment insert failed")
		return models.Attachment{}, fmt.Errorf(
			"attachment of entry %s failed insert [%w]", attachment.EntryID, err,
		)
	}

	return fromAttachmentRow(newEntry), nil
}

/*
GetAttachment fetch an attachment by ID

	@param ctx context.Context - execution context
	@param attachmentID string - attachment ID
	@returns the attachment
*/
func (d *databaseImpl) GetAttachment(
	_ context.Context, attachmentID string,
) (models.Attachment, error) {
	var entry AttachmentRow
	if err := d.db.Where("id = ?", attachmentID).First(&entry).Error; err != nil {
		return models.Attachment{}, fmt.Errorf(
			"failed to fetch attachment %s [%w]", attachmentID, translateError(err),
		)
	}
	return fromAttachmentRow(entry), nil
}

/*
ListAttachmentsOfEntry list attachments of one entry

	@param ctx context.Context - execution context
	@param entryID string - entry ID
	@returns the attachments
*/
func (d *databaseImpl) ListAttachmentsOfEntry(
	_ context.Context, entryID string,
) ([]models.Attachment, error) {
	var entries []AttachmentRow
	if tmp := d.db.
		Where("etb_entry_id = ?", entryID).
		Order("created_at").
		Order("id").
		Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list attachments of entry %s [%w]", entryID, tmp.Error)
	}

	result := []models.Attachment{}
	for _, entry := range entries {
		result = append(result, fromAttachmentRow(entry))
	}
	return result, nil
}
