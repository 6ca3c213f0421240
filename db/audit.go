// Package db - persistence layer
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alwitt/bluelight/models"
	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
)

/*
RecordAuditEvent record a new audit event

	@param ctx context.Context - execution context
	@param eventType models.AuditEventTypeENUMType - event type
	@param entryID *string - related entry, if any
	@param actorID *string - who triggered the event, if known
	@param metadata interface{} - event metadata
	@returns the audit event
*/
func (d *databaseImpl) RecordAuditEvent(
	_ context.Context,
	eventType models.AuditEventTypeENUMType,
	entryID *string,
	actorID *string,
	metadata interface{},
) (models.AuditEvent, error) {
	newEntry := AuditEventRow{
		ID:        ulid.Make().String(),
		EventType: string(eventType),
		EntryID:   entryID,
		ActorID:   actorID,
		CreatedAt: time.Now().UTC(),
	}

	if metadata != nil {
		if err := d.validator.Struct(metadata); err != nil {
			return models.AuditEvent{}, fmt.Errorf(
				"new audit event '%s' metadata entry is not valid [%w]", eventType, err,
			)
		}

		metadataStr, err := json.Marshal(metadata)
		if err != nil {
			return models.AuditEvent{}, fmt.Errorf(
				"new audit event '%s' metadata serialization failed [%w]", eventType, err,
			)
		}
		newEntry.Metadata = datatypes.JSON(metadataStr)
	}

	event := fromAuditEventRow(newEntry)
	if err := d.validator.Struct(&event); err != nil {
		return models.AuditEvent{}, fmt.Errorf(
			"new audit event '%s' entry is not valid [%w]", eventType, err,
		)
	}

	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.AuditEvent{}, fmt.Errorf(
			"new audit event '%s' insert failed [%w]", eventType, tmp.Error,
		)
	}

	return fromAuditEventRow(newEntry), nil
}

/*
ListAuditEvents list captured audit events

	@param ctx context.Context - execution context
	@param filters AuditEventQueryFilter - entry listing filter
	@return list of audit events
*/
func (d *databaseImpl) ListAuditEvents(
	_ context.Context, filters AuditEventQueryFilter,
) ([]models.AuditEvent, error) {
	query := d.db.Model(&AuditEventRow{})

	if len(filters.EventTypes) > 0 {
		eventTypes := []string{}
		for _, oneType := range filters.EventTypes {
			eventTypes = append(eventTypes, string(oneType))
		}
		query = query.Where("type in ?", eventTypes)
	}
	if filters.EntryID != nil {
		query = query.Where("etb_entry_id = ?", *filters.EntryID)
	}

	if filters.EventsAfter != nil {
		query = query.Where("created_at >= ?", filters.EventsAfter.UTC())
	}
	if filters.EventsBefore != nil {
		query = query.Where("created_at <= ?", filters.EventsBefore.UTC())
	}

	query = applyPaging(query, filters.CommonListEntryQueryFilter)

	// ULIDs sort by creation time, which keeps events from the same instant ordered
	query = query.Order("created_at").Order("id")

	var entries []AuditEventRow
	if tmp := query.Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list captured audit events [%w]", tmp.Error)
	}

	result := []models.AuditEvent{}
	for _, entry := range entries {
		result = append(result, fromAuditEventRow(entry))
	}

	return result, nil
}
