package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestDBEncryptionKeyRecord verifies the behaviour of the encryption key API:
//   - RecordEncryptionKey
//   - GetEncryptionKey
//
// The test performs the following steps:
//
//  1. Record two encryption keys (test key 1 and test key 2).
//  2. Retrieve each key and verify the stored material.
//  3. Fetch an unknown key.
//  4. List audit events – there should be two NewEncryptionKey events.
func TestDBEncryptionKeyRecord(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	uut := newTestClient(t)

	// 1. Record test keys
	keyMaterial1 := []byte(uuid.NewString())
	keyMaterial2 := []byte(uuid.NewString())
	var key1, key2 models.EncryptionKey
	err := uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		var err error
		if key1, err = dbClient.RecordEncryptionKey(ctx, keyMaterial1); err != nil {
			return err
		}
		key2, err = dbClient.RecordEncryptionKey(ctx, keyMaterial2)
		return err
	})
	assert.Nil(err)

	// 2. Retrieve test keys and verify content
	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		ek, err := dbClient.GetEncryptionKey(ctx, key1.ID)
		if err != nil {
			return err
		}
		assert.Equal(keyMaterial1, ek.EncKeyMaterial)
		assert.Equal(models.EncryptionKeyStateActive, ek.State)

		ek, err = dbClient.GetEncryptionKey(ctx, key2.ID)
		if err != nil {
			return err
		}
		assert.Equal(keyMaterial2, ek.EncKeyMaterial)
		return nil
	})
	assert.Nil(err)

	// 3. Unknown key
	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.GetEncryptionKey(ctx, uuid.NewString())
		return err
	})
	assert.True(errors.Is(err, db.ErrNotFound))

	// 4. List audit events
	var events []models.AuditEvent
	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		events, err = dbClient.ListAuditEvents(ctx, db.AuditEventQueryFilter{})
		return err
	})
	assert.Nil(err)
	assert.Len(events, 2)

	validate := validator.New()
	assert.Nil(models.RegisterWithValidator(validate))

	newKey1Event := false
	newKey2Event := false
	for _, e := range events {
		assert.Equal(models.AuditEventTypeNewEncryptionKey, e.EventType)
		metadata, err := e.ParseMetadata(validate)
		assert.Nil(err)
		encMetadata, ok := metadata.(models.AuditEventEncKeyRelated)
		assert.True(ok)
		switch encMetadata.KeyID {
		case key1.ID:
			newKey1Event = true
		case key2.ID:
			newKey2Event = true
		}
	}
	assert.True(newKey1Event)
	assert.True(newKey2Event)
}

// TestDBEncryptionKeyRetire verifies retiring keys and listing keys by state.
//
// The test performs the following steps:
//
//  1. Record three encryption keys.
//  2. Retire test key 3, twice. The second call is a no-op.
//  3. List all keys, then only ACTIVE keys, then only INACTIVE keys.
//  4. Retiring an unknown key fails.
func TestDBEncryptionKeyRetire(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	uut := newTestClient(t)

	// 1. Record test keys
	keys := []models.EncryptionKey{}
	for itr := 0; itr < 3; itr++ {
		err := uut.UseDatabaseInTransaction(
			utCtx, func(ctx context.Context, dbClient db.Database) error {
				ek, err := dbClient.RecordEncryptionKey(ctx, []byte(uuid.NewString()))
				if err != nil {
					return err
				}
				keys = append(keys, ek)
				return nil
			},
		)
		assert.Nil(err)
	}

	// 2. Retire test key 3
	for itr := 0; itr < 2; itr++ {
		err := uut.UseDatabaseInTransaction(
			utCtx, func(ctx context.Context, dbClient db.Database) error {
				return dbClient.MarkEncryptionKeyInactive(ctx, keys[2].ID)
			},
		)
		assert.Nil(err)
	}

	// 3. Listing
	err := uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		all, err := dbClient.ListEncryptionKeys(ctx, db.EncryptionKeyQueryFilter{})
		assert.Nil(err)
		assert.Len(all, 3)

		active, err := dbClient.ListEncryptionKeys(ctx, db.EncryptionKeyQueryFilter{
			TargetState: []models.EncryptionKeyStateENUMType{models.EncryptionKeyStateActive},
		})
		assert.Nil(err)
		assert.Len(active, 2)
		for _, ek := range active {
			assert.NotEqual(keys[2].ID, ek.ID)
		}

		inactive, err := dbClient.ListEncryptionKeys(ctx, db.EncryptionKeyQueryFilter{
			TargetState: []models.EncryptionKeyStateENUMType{models.EncryptionKeyStateInactive},
		})
		assert.Nil(err)
		assert.Len(inactive, 1)
		assert.Equal(keys[2].ID, inactive[0].ID)
		return nil
	})
	assert.Nil(err)

	// 4. Unknown key
	err = uut.UseDatabase(utCtx, func(ctx context.Context, dbClient db.Database) error {
		return dbClient.MarkEncryptionKeyInactive(ctx, uuid.NewString())
	})
	assert.True(errors.Is(err, db.ErrNotFound))
}
