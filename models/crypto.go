package models

import (
	"fmt"
	"time"
)

// EncryptionKeyStateENUMType encryption state enum type
type EncryptionKeyStateENUMType string

const (
	// EncryptionKeyStateActive the encryption key can be used
	EncryptionKeyStateActive EncryptionKeyStateENUMType = "ACTIVE"
	// EncryptionKeyStateInactive the encryption key is retired
	EncryptionKeyStateInactive EncryptionKeyStateENUMType = "INACTIVE"
)

// EncryptionKey a symmetric key used to encrypt attachment content at rest
//
// The key material is stored wrapped by the service RSA key pair.
type EncryptionKey struct {
	// ID key ID
	ID string `json:"id" validate:"required,uuid_rfc4122"`

	// EncKeyMaterial the encrypted encryption key material
	EncKeyMaterial []byte `json:"-" validate:"required"`

	// State the encryption key state
	State EncryptionKeyStateENUMType `json:"state" validate:"required,enc_key_state"`

	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt entry update timestamp
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidateNextState verify can transition to new state
func (e *EncryptionKey) ValidateNextState(newState EncryptionKeyStateENUMType) error {
	statesWithTransitions := map[EncryptionKeyStateENUMType]map[EncryptionKeyStateENUMType]bool{
		EncryptionKeyStateActive: {
			EncryptionKeyStateActive:   true,
			EncryptionKeyStateInactive: true,
		},
		EncryptionKeyStateInactive: {
			EncryptionKeyStateInactive: true,
		},
	}

	availableNextStates, ok := statesWithTransitions[e.State]
	if !ok {
		return fmt.Errorf("encryption key can't transition out of state '%s'", e.State)
	}

	if _, ok := availableNextStates[newState]; !ok {
		return fmt.Errorf("encryption key can't transition from '%s' to '%s'", e.State, newState)
	}

	return nil
}
