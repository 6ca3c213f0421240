package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

// newTestClient create a migrated sqlite DB in a unique temporary file
func newTestClient(t *testing.T) db.Client {
	assert := assert.New(t)

	testDB := fmt.Sprintf("/tmp/bluelight_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)

	assert.Nil(uut.Migrate(context.Background()))

	return uut
}

// createTestEntry reserve a number and insert a new active entry
func createTestEntry(
	t *testing.T, uut db.Client, kategorie models.EntryCategoryENUMType, inhalt string,
) models.Entry {
	assert := assert.New(t)

	var created models.Entry
	err := uut.UseDatabaseInTransaction(
		context.Background(), func(ctx context.Context, dbClient db.Database) error {
			nummer, err := dbClient.NextLaufendeNummer(ctx)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			created, err = dbClient.InsertEntry(ctx, models.Entry{
				ID:                  uuid.NewString(),
				LaufendeNummer:      nummer,
				TimestampErstellung: now,
				TimestampEreignis:   now,
				AutorID:             "user-1",
				Kategorie:           kategorie,
				Inhalt:              inhalt,
				Version:             1,
				Status:              models.EntryStatusActive,
			})
			return err
		},
	)
	assert.Nil(err)

	return created
}
