package encryption

import (
	"context"
	"fmt"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/models"
	"github.com/alwitt/cgoutils/crypto"
	"github.com/apex/log"
)

/*
NewEncryptionKey define a new encryption symmetric encryption key

	@param ctx context.Context - execution context
	@param activeDBClient Database - existing database transaction
	@returns the key entry
*/
func (e *cryptoEngine) NewEncryptionKey(
	ctx context.Context, activeDBClient db.Database,
) (models.EncryptionKey, error) {
	// RNG for generating the key
	rng := e.crypto.GetRNGReader()

	aead, err := e.crypto.GetAEAD(ctx, crypto.AEADTypeXChaCha20Poly1305)
	if err != nil {
		return models.EncryptionKey{}, fmt.Errorf("unable to define AEAD client [%w]", err)
	}

	keyLen := aead.ExpectedKeyLen()

	newKey := make([]byte, keyLen)
	if n, err := rng.Read(newKey); err != nil {
		return models.EncryptionKey{}, fmt.Errorf("failed to read %d bytes from RNG [%w]", keyLen, err)
	} else if n != keyLen {
		return models.EncryptionKey{}, fmt.Errorf("did not get %d bytes from RNG, only %d", keyLen, n)
	}

	// Encrypt the key for storage
	newKeyEnc, err := e.crypto.RSAEncrypt(ctx, newKey, e.rsaPubKey, nil)
	if err != nil {
		return models.EncryptionKey{}, fmt.Errorf("failed to encrypt symmetric enc key [%w]", err)
	}

	// Record the key
	var keyEntry models.EncryptionKey
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, e.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			keyEntry, err = dbClient.RecordEncryptionKey(dbCtx, newKeyEnc)
			return err
		},
	); dbErr != nil {
		return models.EncryptionKey{}, fmt.Errorf("failed to record new encryption key [%w]", dbErr)
	}

	e.writeKeyToCache(keyEntry.ID, newKey)

	log.WithFields(e.GetLogTagsForContext(ctx)).
		WithField("key_id", keyEntry.ID).
		Info("Defined new attachment encryption key")

	return keyEntry, nil
}

// writeKeyToCache write key into cache for use
func (e *cryptoEngine) writeKeyToCache(keyID string, plainKey []byte) {
	e.keyCacheLock.Lock()
	defer e.keyCacheLock.Unlock()
	e.plainKeys[keyID] = plainKey
}

// getCachedKey helper function to read a key from cache
func (e *cryptoEngine) getCachedKey(keyID string) ([]byte, bool) {
	e.keyCacheLock.RLock()
	defer e.keyCacheLock.RUnlock()
	key, ok := e.plainKeys[keyID]
	return key, ok
}

// unwrapKey fetch the plain text key material, decrypting it on first use
func (e *cryptoEngine) unwrapKey(ctx context.Context, keyEntry models.EncryptionKey) ([]byte, error) {
	if key, ok := e.getCachedKey(keyEntry.ID); ok {
		return key, nil
	}

	key, err := e.crypto.RSADecrypt(ctx, keyEntry.EncKeyMaterial, e.rsaKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt symmetric key %s [%w]", keyEntry.ID, err)
	}

	e.writeKeyToCache(keyEntry.ID, key)
	return key, nil
}

// getEncryptionKey core function for fetching on encryption key
func (e *cryptoEngine) getEncryptionKey(
	ctx context.Context, keyID string, activeDBClient db.Database,
) (models.EncryptionKey, error) {
	var keyEntry models.EncryptionKey
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, e.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			keyEntry, err = dbClient.GetEncryptionKey(dbCtx, keyID)
			return err
		},
	); dbErr != nil {
		return models.EncryptionKey{}, fmt.Errorf("encryption key %s unknown [%w]", keyID, dbErr)
	}
	return keyEntry, nil
}

/*
GetEncryptionKey fetch one encryption key

	@param ctx context.Context - execution context
	@param keyID string - the encryption key ID
	@param activeDBClient Database - existing database transaction
	@return key entry
*/
func (e *cryptoEngine) GetEncryptionKey(
	ctx context.Context, keyID string, activeDBClient db.Database,
) (models.EncryptionKey, error) {
	return e.getEncryptionKey(ctx, keyID, activeDBClient)
}

/*
ListEncryptionKeys list encryption keys

	@param ctx context.Context - execution context
	@param filters EncryptionKeyQueryFilter - entry listing filter
	@param activeDBClient Database - existing database transaction
	@return list of keys
*/
func (e *cryptoEngine) ListEncryptionKeys(
	ctx context.Context, filters db.EncryptionKeyQueryFilter, activeDBClient db.Database,
) ([]models.EncryptionKey, error) {
	var keyEntries []models.EncryptionKey
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, e.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			keyEntries, err = dbClient.ListEncryptionKeys(dbCtx, filters)
			return err
		},
	); dbErr != nil {
		return nil, fmt.Errorf("failed to list encryption keys [%w]", dbErr)
	}
	return keyEntries, nil
}

/*
CurrentEncryptionKey the key new content is encrypted with. This is the newest
active key; one is created if none exists.

	@param ctx context.Context - execution context
	@param activeDBClient Database - existing database transaction
	@return key entry
*/
func (e *cryptoEngine) CurrentEncryptionKey(
	ctx context.Context, activeDBClient db.Database,
) (models.EncryptionKey, error) {
	limit := 1
	active, err := e.ListEncryptionKeys(ctx, db.EncryptionKeyQueryFilter{
		CommonListEntryQueryFilter: db.CommonListEntryQueryFilter{Limit: &limit},
		TargetState:                []models.EncryptionKeyStateENUMType{models.EncryptionKeyStateActive},
	}, activeDBClient)
	if err != nil {
		return models.EncryptionKey{}, err
	}
	if len(active) > 0 {
		return active[0], nil
	}
	return e.NewEncryptionKey(ctx, activeDBClient)
}

/*
RetireEncryptionKey mark encryption key inactive. It can still decrypt existing
content, but will not encrypt new content.

	@param ctx context.Context - execution context
	@param keyID string - the encryption key ID
	@param activeDBClient Database - existing database transaction
	@return key entry
*/
func (e *cryptoEngine) RetireEncryptionKey(
	ctx context.Context, keyID string, activeDBClient db.Database,
) (models.EncryptionKey, error) {
	var keyEntry models.EncryptionKey
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, e.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			if err = dbClient.MarkEncryptionKeyInactive(dbCtx, keyID); err != nil {
				return fmt.Errorf("failed to mark encryption key %s inactive [%w]", keyID, err)
			}
			keyEntry, err = dbClient.GetEncryptionKey(dbCtx, keyID)
			if err != nil {
				return fmt.Errorf("failed to fetch encryption key %s [%w]", keyID, err)
			}
			return nil
		},
	); dbErr != nil {
		return models.EncryptionKey{}, fmt.Errorf(
			"failed to retire encryption key %s [%w]", keyID, dbErr,
		)
	}

	return keyEntry, nil
}

/*
RotateEncryptionKey define a new key, and retire all other active keys

	@param ctx context.Context - execution context
	@param activeDBClient Database - existing database transaction
	@return the new key entry
*/
func (e *cryptoEngine) RotateEncryptionKey(
	ctx context.Context, activeDBClient db.Database,
) (models.EncryptionKey, error) {
	logTags := e.GetLogTagsForContext(ctx)

	var newKey models.EncryptionKey
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, e.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			previous, err := e.ListEncryptionKeys(dbCtx, db.EncryptionKeyQueryFilter{
				TargetState: []models.EncryptionKeyStateENUMType{models.EncryptionKeyStateActive},
			}, dbClient)
			if err != nil {
				return err
			}

			if newKey, err = e.NewEncryptionKey(dbCtx, dbClient); err != nil {
				return err
			}

			for _, oldKey := range previous {
				if _, err := e.RetireEncryptionKey(dbCtx, oldKey.ID, dbClient); err != nil {
					return err
				}
			}
			return nil
		},
	); dbErr != nil {
		log.WithError(dbErr).WithFields(logTags).Error("Encryption key rotation failed")
		return models.EncryptionKey{}, fmt.Errorf("failed to rotate encryption key [%w]", dbErr)
	}

	return newKey, nil
}
