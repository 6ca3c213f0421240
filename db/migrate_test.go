package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrateLegacyEntries(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	testDB := fmt.Sprintf("/tmp/bluelight_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	gormDB, err := gorm.Open(GetSqliteDialector(testDB), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	assert.Nil(err)
	sqlDB, err := gormDB.DB()
	assert.Nil(err)

	// Build the initial schema only
	assert.Nil(runMigrations(utCtx, sqlDB, DialectSqlite, 1))

	// Legacy rows with split content and free form category values
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	legacy := []struct {
		id           string
		created      time.Time
		kategorie    string
		titel        *string
		beschreibung string
	}{
		{id: "c", created: base.Add(2 * time.Minute), kategorie: "lagemeldung", beschreibung: "nur text"},
		{id: "a", created: base, kategorie: "MELDUNG", titel: ptr("Titel"), beschreibung: "Text"},
		{id: "b", created: base.Add(time.Minute), kategorie: "irgendwas", titel: ptr("Nur Titel"), beschreibung: ""},
	}
	for _, row := range legacy {
		assert.Nil(gormDB.Exec(
			"INSERT INTO etb_entry (id, timestamp_erstellung, timestamp_ereignis, autor_id, "+
				"kategorie, titel, beschreibung) VALUES (?, ?, ?, ?, ?, ?, ?)",
			row.id, row.created, row.created, "legacy-user", row.kategorie, row.titel, row.beschreibung,
		).Error)
	}

	// Apply the rest
	assert.Nil(runMigrations(utCtx, sqlDB, DialectSqlite, 0))

	var rows []EntryRow
	assert.Nil(gormDB.Order("laufende_nummer").Find(&rows).Error)
	assert.Len(rows, 3)

	// Numbered by creation order
	assert.Equal("a", rows[0].ID)
	assert.Equal(int64(1), rows[0].LaufendeNummer)
	assert.Equal("b", rows[1].ID)
	assert.Equal(int64(2), rows[1].LaufendeNummer)
	assert.Equal("c", rows[2].ID)
	assert.Equal(int64(3), rows[2].LaufendeNummer)

	// Content merged
	assert.Equal("Titel\n\nText", rows[0].Inhalt)
	assert.Equal("Nur Titel", rows[1].Inhalt)
	assert.Equal("nur text", rows[2].Inhalt)

	// Category normalized
	assert.Equal("MELDUNG", rows[0].Kategorie)
	assert.Equal("MELDUNG", rows[1].Kategorie)
	assert.Equal("LAGEMELDUNG", rows[2].Kategorie)

	// Supersede columns default
	for _, row := range rows {
		assert.Equal("AKTIV", row.Status)
		assert.Nil(row.UeberschriebenDurchID)
		assert.Equal(1, row.Version)
	}

	// The sequence continues after the backfilled numbers
	uut, err := newDatabase(utCtx, gormDB)
	assert.Nil(err)
	next, err := uut.NextLaufendeNummer(utCtx)
	assert.Nil(err)
	assert.Equal(int64(4), next)

	// Running again is a no-op
	assert.Nil(runMigrations(utCtx, sqlDB, DialectSqlite, 0))
}

func TestSequenceSeedsFromExistingEntries(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	testDB := fmt.Sprintf("/tmp/bluelight_ut_%s.db", ulid.Make().String())

	gormDB, err := gorm.Open(GetSqliteDialector(testDB), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	assert.Nil(err)
	sqlDB, err := gormDB.DB()
	assert.Nil(err)
	assert.Nil(runMigrations(utCtx, sqlDB, DialectSqlite, 0))

	// Lose the counter row
	assert.Nil(gormDB.Exec("DELETE FROM etb_sequence").Error)

	uut, err := newDatabase(utCtx, gormDB)
	assert.Nil(err)

	next, err := uut.NextLaufendeNummer(utCtx)
	assert.Nil(err)
	assert.Equal(int64(1), next)

	next, err = uut.NextLaufendeNummer(utCtx)
	assert.Nil(err)
	assert.Equal(int64(2), next)
}

func ptr(v string) *string {
	return &v
}
