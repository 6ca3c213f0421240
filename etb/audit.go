package etb

import (
	"context"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
)

/*
ListAuditEvents list recorded audit events

	@param ctx context.Context - execution context
	@param filter AuditEventFilter - listing parameters
	@returns the audit events
*/
func (s *service) ListAuditEvents(
	ctx context.Context, filter AuditEventFilter,
) ([]models.AuditEvent, error) {
	if err := s.validator.Struct(&filter); err != nil {
		return nil, s.fail(ctx, "list-audit-events", badRequest(err, "invalid audit event filter"))
	}

	limit := filter.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := filter.Offset

	var events []models.AuditEvent
	if err := s.persistence.UseDatabase(
		ctx, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			events, err = dbClient.ListAuditEvents(dbCtx, db.AuditEventQueryFilter{
				CommonListEntryQueryFilter: db.CommonListEntryQueryFilter{
					Limit: &limit, Offset: &offset,
				},
				EventTypes:   filter.EventTypes,
				EntryID:      filter.EntryID,
				EventsAfter:  utcTime(filter.Von),
				EventsBefore: utcTime(filter.Bis),
			})
			return err
		},
	); err != nil {
		return nil, s.fail(
			ctx, "list-audit-events", fromDBError(err, "unable to list audit events"),
		)
	}
	if events == nil {
		events = []models.AuditEvent{}
	}
	return events, nil
}

/*
RotateEncryptionKey start encrypting new attachments with a fresh key

	@param ctx context.Context - execution context
	@param actor models.Actor - who requested the rotation
	@returns the new key
*/
func (s *service) RotateEncryptionKey(
	ctx context.Context, actor models.Actor,
) (models.EncryptionKey, error) {
	if err := s.checkActor(actor); err != nil {
		return models.EncryptionKey{}, s.fail(ctx, "rotate-key", err)
	}
	if s.crypto == nil {
		return models.EncryptionKey{}, s.fail(
			ctx, "rotate-key", badRequest(nil, "attachment encryption is not enabled"),
		)
	}

	newKey, err := s.crypto.RotateEncryptionKey(ctx, nil)
	if err != nil {
		return models.EncryptionKey{}, s.fail(
			ctx, "rotate-key", internal(err, "unable to rotate encryption key"),
		)
	}

	log.WithFields(s.GetLogTagsForContext(ctx)).
		WithField("key_id", newKey.ID).
		WithField("requested_by", actor.ID).
		Info("Rotated attachment encryption key")

	return newKey, nil
}
