package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
	"gorm.io/gorm"
)

// likeEscaper escapes LIKE wildcards, paired with ESCAPE '\'
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ======================================================================================
// ETB entries

/*
InsertEntry persist a new entry

	@param ctx context.Context - execution context
	@param entry models.Entry - the fully populated entry
	@returns the stored entry
*/
func (d *databaseImpl) InsertEntry(ctx context.Context, entry models.Entry) (models.Entry, error) {
	logTags := d.GetLogTagsForContext(ctx)

	if err := d.validator.Struct(&entry); err != nil {
		return models.Entry{}, fmt.Errorf("new entry '%s' is not valid [%w]", entry.ID, err)
	}

	newEntry := toEntryRow(entry)
	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		err := translateError(tmp.Error)
		log.WithError(err).WithFields(logTags).WithField("laufende_nummer", entry.LaufendeNummer).
			Error("Entry insert failed")
		return models.Entry{}, fmt.Errorf("new entry '%s' failed insert [%w]", entry.ID, err)
	}

	return fromEntryRow(newEntry), nil
}

// getEntryRow find an entry by ID
func (d *databaseImpl) getEntryRow(entryID string) (EntryRow, error) {
	var entry EntryRow
	err := d.db.Where("id = ?", entryID).First(&entry).Error
	return entry, translateError(err)
}

/*
GetEntry fetch an entry by ID

	@param ctx context.Context - execution context
	@param entryID string - entry ID
	@returns the entry
*/
func (d *databaseImpl) GetEntry(_ context.Context, entryID string) (models.Entry, error) {
	entry, err := d.getEntryRow(entryID)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to fetch entry %s [%w]", entryID, err)
	}
	return fromEntryRow(entry), nil
}

/*
GetEntriesByIDs fetch a set of entries by ID. Unknown IDs are skipped.

	@param ctx context.Context - execution context
	@param entryIDs []string - entry IDs
	@returns the entries indexed by ID
*/
func (d *databaseImpl) GetEntriesByIDs(
	_ context.Context, entryIDs []string,
) (map[string]models.Entry, error) {
	result := map[string]models.Entry{}
	if len(entryIDs) == 0 {
		return result, nil
	}

	var entries []EntryRow
	if tmp := d.db.Where("id IN ?", entryIDs).Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to fetch %d entries [%w]", len(entryIDs), tmp.Error)
	}

	for _, entry := range entries {
		result[entry.ID] = fromEntryRow(entry)
	}
	return result, nil
}

// filteredEntryQuery build the entry query with all filter conditions except paging
func (d *databaseImpl) filteredEntryQuery(filters EntryQueryFilter) *gorm.DB {
	query := d.db.Model(&EntryRow{})

	if !filters.IncludeSuperseded {
		query = query.Where("status = ?", string(models.EntryStatusActive))
	}
	if filters.Kategorie != nil {
		query = query.Where("kategorie = ?", string(*filters.Kategorie))
	}
	if filters.ReferenzEinsatzID != nil {
		query = query.Where("referenz_einsatz_id = ?", *filters.ReferenzEinsatzID)
	}
	if filters.ReferenzPatientID != nil {
		query = query.Where("referenz_patient_id = ?", *filters.ReferenzPatientID)
	}
	if filters.ReferenzEinsatzmittelID != nil {
		query = query.Where("referenz_einsatzmittel_id = ?", *filters.ReferenzEinsatzmittelID)
	}
	if filters.AutorID != nil {
		query = query.Where("autor_id = ?", *filters.AutorID)
	}
	if filters.EventsAfter != nil {
		query = query.Where("timestamp_ereignis >= ?", filters.EventsAfter.UTC())
	}
	if filters.EventsBefore != nil {
		query = query.Where("timestamp_ereignis <= ?", filters.EventsBefore.UTC())
	}
	if filters.Search != nil && strings.TrimSpace(*filters.Search) != "" {
		search := strings.ToLower(strings.TrimSpace(*filters.Search))
		pattern := "%" + likeEscaper.Replace(search) + "%"
		query = query.Where(
			`LOWER(inhalt) LIKE ? ESCAPE '\' OR LOWER(COALESCE(sender, '')) LIKE ? ESCAPE '\' OR `+
				`LOWER(COALESCE(receiver, '')) LIKE ? ESCAPE '\' OR `+
				`LOWER(COALESCE(autor_name, '')) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern,
		)
	}

	return query
}

/*
ListEntries list entries

	@param ctx context.Context - execution context
	@param filters EntryQueryFilter - entry listing filter
	@returns the page of entries, and total number of entries matching the filter
*/
func (d *databaseImpl) ListEntries(
	_ context.Context, filters EntryQueryFilter,
) ([]models.Entry, int64, error) {
	var total int64
	if tmp := d.filteredEntryQuery(filters).Count(&total); tmp.Error != nil {
		return nil, 0, fmt.Errorf("failed to count entries [%w]", tmp.Error)
	}

	query := applyPaging(d.filteredEntryQuery(filters), filters.CommonListEntryQueryFilter)
	query = query.Order("laufende_nummer desc")

	var entries []EntryRow
	if tmp := query.Find(&entries); tmp.Error != nil {
		return nil, 0, fmt.Errorf("failed to list entries [%w]", tmp.Error)
	}

	result := []models.Entry{}
	for _, entry := range entries {
		result = append(result, fromEntryRow(entry))
	}

	return result, total, nil
}

/*
ListEntriesSupersededBy list the entries which were superseded by an entry

	@param ctx context.Context - execution context
	@param entryID string - the superseding entry ID
	@returns the superseded entries
*/
func (d *databaseImpl) ListEntriesSupersededBy(
	_ context.Context, entryID string,
) ([]models.Entry, error) {
	var entries []EntryRow
	if tmp := d.db.
		Where("ueberschrieben_durch_id = ?", entryID).
		Order("laufende_nummer").
		Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list entries superseded by %s [%w]", entryID, tmp.Error)
	}

	result := []models.Entry{}
	for _, entry := range entries {
		result = append(result, fromEntryRow(entry))
	}
	return result, nil
}

// guardedEntryUpdate apply column changes to one entry, but only when the guard conditions
// still hold. When nothing matched, tell apart a missing entry from a lost race.
func (d *databaseImpl) guardedEntryUpdate(
	entryID string, changes map[string]interface{}, guards map[string]interface{},
) (EntryRow, error) {
	query := d.db.Model(&EntryRow{}).Where("id = ?", entryID)
	for condition, value := range guards {
		query = query.Where(condition, value)
	}

	tmp := query.Updates(changes)
	if tmp.Error != nil {
		return EntryRow{}, translateError(tmp.Error)
	}

	if tmp.RowsAffected == 0 {
		if _, err := d.getEntryRow(entryID); err != nil {
			return EntryRow{}, err
		}
		return EntryRow{}, ErrConflict
	}

	return d.getEntryRow(entryID)
}

/*
UpdateEntryFields change content fields of an open, active entry

	@param ctx context.Context - execution context
	@param entryID string - entry ID
	@param expectedVersion int - the entry version the change is based on
	@param fields models.EntryFieldUpdate - the fields to change
	@returns the updated entry
*/
func (d *databaseImpl) UpdateEntryFields(
	ctx context.Context, entryID string, expectedVersion int, fields models.EntryFieldUpdate,
) (models.Entry, error) {
	logTags := d.GetLogTagsForContext(ctx)

	if err := d.validator.Struct(&fields); err != nil {
		return models.Entry{}, fmt.Errorf("entry %s field update is not valid [%w]", entryID, err)
	}

	changes := map[string]interface{}{"version": gorm.Expr("version + ?", 1)}
	if fields.Kategorie != nil {
		changes["kategorie"] = string(*fields.Kategorie)
	}
	if fields.TimestampEreignis != nil {
		changes["timestamp_ereignis"] = *fields.TimestampEreignis
	}
	if fields.Inhalt != nil {
		changes["inhalt"] = *fields.Inhalt
	}
	if fields.ReferenzEinsatzID != nil {
		changes["referenz_einsatz_id"] = *fields.ReferenzEinsatzID
	}
	if fields.ReferenzPatientID != nil {
		changes["referenz_patient_id"] = *fields.ReferenzPatientID
	}
	if fields.ReferenzEinsatzmittelID != nil {
		changes["referenz_einsatzmittel_id"] = *fields.ReferenzEinsatzmittelID
	}
	if fields.Sender != nil {
		changes["sender"] = *fields.Sender
	}
	if fields.Receiver != nil {
		changes["receiver"] = *fields.Receiver
	}

	updated, err := d.guardedEntryUpdate(entryID, changes, map[string]interface{}{
		"version = ?":           expectedVersion,
		"ist_abgeschlossen = ?": false,
		"status = ?":            string(models.EntryStatusActive),
	})
	if err != nil {
		log.WithError(err).WithFields(logTags).WithField("entry_id", entryID).
			Error("Entry field update failed")
		return models.Entry{}, fmt.Errorf("failed to update entry %s [%w]", entryID, err)
	}

	return fromEntryRow(updated), nil
}

/*
CloseEntry mark an open entry as closed

	@param ctx context.Context - execution context
	@param entryID string - entry ID
	@param closedBy string - user closing the entry
	@param closedAt time.Time - closing timestamp
	@returns the updated entry
*/
func (d *databaseImpl) CloseEntry(
	ctx context.Context, entryID string, closedBy string, closedAt time.Time,
) (models.Entry, error) {
	logTags := d.GetLogTagsForContext(ctx)

	updated, err := d.guardedEntryUpdate(
		entryID,
		map[string]interface{}{
			"ist_abgeschlossen":   true,
			"timestamp_abschluss": closedAt,
			"abgeschlossen_von":   closedBy,
		},
		map[string]interface{}{"ist_abgeschlossen = ?": false},
	)
	if err != nil {
		log.WithError(err).WithFields(logTags).WithField("entry_id", entryID).
			Error("Entry close failed")
		return models.Entry{}, fmt.Errorf("failed to close entry %s [%w]", entryID, err)
	}

	return fromEntryRow(updated), nil
}

/*
MarkEntrySuperseded mark an open, active entry as superseded

	@param ctx context.Context - execution context
	@param entryID string - entry ID
	@param successorID string - the replacement entry
	@param supersededBy string - user performing the operation
	@param supersededAt time.Time - operation timestamp
	@returns the updated entry
*/
func (d *databaseImpl) MarkEntrySuperseded(
	ctx context.Context,
	entryID string,
	successorID string,
	supersededBy string,
	supersededAt time.Time,
) (models.Entry, error) {
	logTags := d.GetLogTagsForContext(ctx)

	if entryID == successorID {
		return models.Entry{}, fmt.Errorf("entry %s can not supersede itself", entryID)
	}

	updated, err := d.guardedEntryUpdate(
		entryID,
		map[string]interface{}{
			"status":                   string(models.EntryStatusSuperseded),
			"ueberschrieben_durch_id":  successorID,
			"timestamp_ueberschrieben": supersededAt,
			"ueberschrieben_von":       supersededBy,
		},
		map[string]interface{}{
			"ist_abgeschlossen = ?": false,
			"status = ?":            string(models.EntryStatusActive),
		},
	)
	if err != nil {
		log.WithError(err).WithFields(logTags).WithField("entry_id", entryID).
			Error("Marking entry superseded failed")
		return models.Entry{}, fmt.Errorf(
			"failed to mark entry %s superseded by %s [%w]", entryID, successorID, err,
		)
	}

	return fromEntryRow(updated), nil
}
