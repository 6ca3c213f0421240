package etb_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/encryption"
	"github.com/alwitt/bluelight/etb"
	"github.com/alwitt/bluelight/filestore"
	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

var testActor = models.Actor{ID: "user-1", Name: "Max Muster", Role: "EL"}

var otherActor = models.Actor{ID: "user-2", Name: "Erika Beispiel", Role: "S2"}

// newTestService create an entry service on top of a fresh sqlite DB and local file store
func newTestService(t *testing.T, withEncryption bool) (etb.Service, db.Client) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	testID := ulid.Make().String()
	testDB := fmt.Sprintf("/tmp/bluelight_ut_%s.db", testID)
	log.WithField("db", testDB).Debug("Test database")

	dbClient, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)
	assert.Nil(dbClient.Migrate(context.Background()))

	files, err := filestore.NewLocalStore(fmt.Sprintf("/tmp/bluelight_ut_files_%s", testID))
	assert.Nil(err)

	params := etb.ServiceParams{Persistence: dbClient, Files: files}
	if withEncryption {
		testCertFile, err := filepath.Abs("../test/ut_rsa.crt")
		assert.Nil(err)
		testKeyFile, err := filepath.Abs("../test/ut_rsa.key")
		assert.Nil(err)
		params.Crypto, err = encryption.NewCryptographyEngine(
			context.Background(), encryption.CryptographyEngineParams{
				Persistence:        dbClient,
				PrimaryRSACertFile: testCertFile,
				PrimaryRSAKeyFile:  testKeyFile,
			},
		)
		assert.Nil(err)
	}

	uut, err := etb.NewService(params)
	assert.Nil(err)

	return uut, dbClient
}

// createEntry log an entry with the default test actor
func createEntry(
	t *testing.T, uut etb.Service, kategorie models.EntryCategoryENUMType, inhalt string,
) models.Entry {
	assert := assert.New(t)

	entry, err := uut.Create(context.Background(), testActor, etb.CreateEntryInput{
		Kategorie:         kategorie,
		TimestampEreignis: time.Now().UTC(),
		Inhalt:            inhalt,
	})
	assert.Nil(err)
	return entry
}

func strPtr(v string) *string {
	return &v
}

// memoryStore in memory file store
type memoryStore struct {
	lock    sync.Mutex
	content map[string][]byte
}

func (m *memoryStore) Store(_ context.Context, storageName string, content []byte) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.content[storageName] = content
	return storageName, nil
}

func (m *memoryStore) Load(_ context.Context, location string) ([]byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	content, ok := m.content[location]
	if !ok {
		return nil, filestore.ErrNotFound
	}
	return content, nil
}

func (m *memoryStore) Delete(_ context.Context, location string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.content, location)
	return nil
}
