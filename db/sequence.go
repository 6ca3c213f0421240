package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apex/log"
	"gorm.io/gorm"
)

// EntryNumberSequenceID ID of the singleton counter backing `laufende_nummer`
const EntryNumberSequenceID = "laufende-nummer"

// incrementSequence advance a named counter and return the new value
//
// The UPDATE runs first so the row (or, for SQLite, the database) write lock is held for the
// remainder of the transaction; concurrent creators queue behind it instead of reading the
// same value. If the counter row does not exist yet, it is seeded from `seed` and the
// returned value is `seed + 1`.
func (d *databaseImpl) incrementSequence(sequenceID string, seed func(tx *gorm.DB) (int64, error)) (int64, error) {
	tmp := d.db.Model(&SequenceRow{}).
		Where("id = ?", sequenceID).
		Update("wert", gorm.Expr("wert + ?", 1))
	if tmp.Error != nil {
		return 0, fmt.Errorf(
			"failed to advance sequence '%s' [%w]", sequenceID, translateError(tmp.Error),
		)
	}

	if tmp.RowsAffected == 0 {
		start, err := seed(d.db)
		if err != nil {
			return 0, fmt.Errorf("failed to seed sequence '%s' [%w]", sequenceID, err)
		}
		newEntry := SequenceRow{ID: sequenceID, Wert: start + 1}
		if err := d.db.Create(&newEntry).Error; err != nil {
			return 0, fmt.Errorf(
				"failed to define sequence '%s' [%w]", sequenceID, translateError(err),
			)
		}
		return newEntry.Wert, nil
	}

	var entry SequenceRow
	if err := d.db.Where("id = ?", sequenceID).First(&entry).Error; err != nil {
		return 0, fmt.Errorf("failed to read sequence '%s' [%w]", sequenceID, translateError(err))
	}
	return entry.Wert, nil
}

// maxLaufendeNummer the highest entry number currently in use, 0 if there are no entries
func maxLaufendeNummer(tx *gorm.DB) (int64, error) {
	var current sql.NullInt64
	if err := tx.Model(&EntryRow{}).
		Select("MAX(laufende_nummer)").
		Row().
		Scan(&current); err != nil {
		return 0, err
	}
	return current.Int64, nil
}

/*
NextLaufendeNummer reserve the next sequential entry number

The reservation is only durable if the surrounding transaction commits.

	@param ctx context.Context - execution context
	@returns the reserved number
*/
func (d *databaseImpl) NextLaufendeNummer(ctx context.Context) (int64, error) {
	logTags := d.GetLogTagsForContext(ctx)
	next, err := d.incrementSequence(EntryNumberSequenceID, maxLaufendeNummer)
	if err != nil {
		log.WithError(err).WithFields(logTags).Error("Unable to reserve entry number")
		return 0, err
	}
	return next, nil
}
