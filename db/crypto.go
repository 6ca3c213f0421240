package db

import (
	"context"
	"fmt"

	"github.com/alwitt/bluelight/models"
	"github.com/google/uuid"
)

/*
RecordEncryptionKey record an encrypted symmetric encryption key

	@param ctx context.Context - execution context
	@param encKeyMaterial string - encrypted key material
	@returns the key entry
*/
func (d *databaseImpl) RecordEncryptionKey(
	ctx context.Context, encKeyMaterial []byte,
) (models.EncryptionKey, error) {
	newKey := models.EncryptionKey{
		ID:             uuid.NewString(),
		EncKeyMaterial: encKeyMaterial,
		State:          models.EncryptionKeyStateActive,
	}

	if err := d.validator.Struct(&newKey); err != nil {
		return models.EncryptionKey{}, fmt.Errorf("new encryption key entry is invalid [%w]", err)
	}

	newEntry := toEncryptionKeyRow(newKey)
	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.EncryptionKey{}, fmt.Errorf(
			"new encryption key entry insert failed [%w]", tmp.Error,
		)
	}

	// Record this event
	if _, err := d.RecordAuditEvent(
		ctx,
		models.AuditEventTypeNewEncryptionKey,
		nil,
		nil,
		models.AuditEventEncKeyRelated{KeyID: newEntry.ID},
	); err != nil {
		return models.EncryptionKey{}, fmt.Errorf(
			"failed to log add new encryption key audit event [%w]", err,
		)
	}

	return fromEncryptionKeyRow(newEntry), nil
}

// getEncryptionKey fetch one encryption key
func (d *databaseImpl) getEncryptionKey(keyID string) (EncryptionKeyRow, error) {
	var entry EncryptionKeyRow
	err := d.db.Where("id = ?", keyID).First(&entry).Error
	return entry, translateError(err)
}

/*
GetEncryptionKey fetch one encryption key

	@param ctx context.Context - execution context
	@param keyID string - the encryption key ID
	@return key entry
*/
func (d *databaseImpl) GetEncryptionKey(
	_ context.Context, keyID string,
) (models.EncryptionKey, error) {
	entry, err := d.getEncryptionKey(keyID)
	if err != nil {
		return models.EncryptionKey{}, fmt.Errorf("failed to fetch encryption key %s [%w]", keyID, err)
	}
	return fromEncryptionKeyRow(entry), nil
}

/*
ListEncryptionKeys list encryption keys

	@param ctx context.Context - execution context
	@param filters EncryptionKeyQueryFilter - entry listing filter
	@return list of keys
*/
func (d *databaseImpl) ListEncryptionKeys(
	_ context.Context, filters EncryptionKeyQueryFilter,
) ([]models.EncryptionKey, error) {
	query := d.db.Model(&EncryptionKeyRow{})

	if len(filters.TargetState) > 0 {
		states := []string{}
		for _, oneState := range filters.TargetState {
			states = append(states, string(oneState))
		}
		query = query.Where("state in ?", states)
	}

	query = applyPaging(query, filters.CommonListEntryQueryFilter)

	query = query.Order("created_at desc")

	var entries []EncryptionKeyRow
	if tmp := query.Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf("failed to list encryption keys [%w]", tmp.Error)
	}

	result := []models.EncryptionKey{}
	for _, entry := range entries {
		result = append(result, fromEncryptionKeyRow(entry))
	}

	return result, nil
}

/*
MarkEncryptionKeyInactive retire an encryption key. Retired keys can still decrypt.

	@param ctx context.Context - execution context
	@param keyID string - the encryption key ID
*/
func (d *databaseImpl) MarkEncryptionKeyInactive(_ context.Context, keyID string) error {
	entry, err := d.getEncryptionKey(keyID)
	if err != nil {
		return fmt.Errorf("failed to fetch encryption key %s [%w]", keyID, err)
	}

	current := fromEncryptionKeyRow(entry)
	if current.State == models.EncryptionKeyStateInactive {
		// NOOP
		return nil
	}

	if err := current.ValidateNextState(models.EncryptionKeyStateInactive); err != nil {
		return fmt.Errorf("encryption key %s can not be retired [%w]", keyID, err)
	}

	if tmp := d.db.
		Model(&EncryptionKeyRow{}).
		Where("id = ?", keyID).
		Update("state", string(models.EncryptionKeyStateInactive)); tmp.Error != nil {
		return fmt.Errorf("encryption key %s state change update failed [%w]", keyID, tmp.Error)
	}

	return nil
}
