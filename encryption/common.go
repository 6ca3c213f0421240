// Package encryption - attachment content encryption engine
package encryption

import (
	"context"
	"crypto/rsa"
	"fmt"
	"sync"

	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/models"
	cgoCrypto "github.com/alwitt/cgoutils/crypto"
	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
)

// EncryptedData cipher text and the nonce it was sealed with
type EncryptedData struct {
	CipherText []byte
	Nonce      []byte
}

/*
CryptographyEngine the system's cryptography engine. It is solely responsible for all
cryptographic operations in the system.

Aside from performing the cryptographic computation, it also provides the wrapper
interface around the encryption related APIs in the persistence layer. (i.e. the rest
of the system must not directly interact with the encryption key APIs of the persistence
layer.)
*/
type CryptographyEngine interface {
	// ------------------------------------------------------------------------------------
	// Encryption key management

	/*
	   NewEncryptionKey define a new encryption symmetric encryption key

	   	@param ctx context.Context - execution context
	   	@param activeDBClient Database - existing database transaction
	   	@returns the key entry
	*/
	NewEncryptionKey(ctx context.Context, activeDBClient db.Database) (models.EncryptionKey, error)

	/*
		GetEncryptionKey fetch one encryption key

			@param ctx context.Context - execution context
			@param keyID string - the encryption key ID
			@param activeDBClient Database - existing database transaction
			@return key entry
	*/
	GetEncryptionKey(
		ctx context.Context, keyID string, activeDBClient db.Database,
	) (models.EncryptionKey, error)

	/*
		ListEncryptionKeys list encryption keys

			@param ctx context.Context - execution context
			@param filters EncryptionKeyQueryFilter - entry listing filter
			@param activeDBClient Database - existing database transaction
			@return list of keys
	*/
	ListEncryptionKeys(
		ctx context.Context, filters db.EncryptionKeyQueryFilter, activeDBClient db.Database,
	) ([]models.EncryptionKey, error)

	/*
		CurrentEncryptionKey the key new content is encrypted with. This is the newest
		active key; one is created if none exists.

			@param ctx context.Context - execution context
			@param activeDBClient Database - existing database transaction
			@return key entry
	*/
	CurrentEncryptionKey(
		ctx context.Context, activeDBClient db.Database,
	) (models.EncryptionKey, error)

	/*
		RetireEncryptionKey mark encryption key inactive. It can still decrypt existing
		content, but will not encrypt new content.

			@param ctx context.Context - execution context
			@param keyID string - the encryption key ID
			@param activeDBClient Database - existing database transaction
			@return key entry
	*/
	RetireEncryptionKey(
		ctx context.Context, keyID string, activeDBClient db.Database,
	) (models.EncryptionKey, error)

	/*
		RotateEncryptionKey define a new key, and retire all other active keys

			@param ctx context.Context - execution context
			@param activeDBClient Database - existing database transaction
			@return the new key entry
	*/
	RotateEncryptionKey(
		ctx context.Context, activeDBClient db.Database,
	) (models.EncryptionKey, error)

	// ------------------------------------------------------------------------------------
	// Data encryption

	/*
		EncryptData encrypt plain text

			@param ctx context.Context - execution context
			@param keyID string - the encryption key ID
			@param plainText []byte - the plain text to encrypt
			@param activeDBClient Database - existing database transaction
			@return key entry for the encryption, and the cipher text
	*/
	EncryptData(
		ctx context.Context, keyID string, plainText []byte, activeDBClient db.Database,
	) (models.EncryptionKey, EncryptedData, error)

	/*
		DecryptData decrypt cipher text

			@param ctx context.Context - execution context
			@param keyID string - the encryption key ID
			@param encrypted EncryptedData - the cipher text to decrypt
			@param activeDBClient Database - existing database transaction
			@return key entry for the encryption, and the plain text
	*/
	DecryptData(
		ctx context.Context, keyID string, encrypted EncryptedData, activeDBClient db.Database,
	) (models.EncryptionKey, []byte, error)
}

// cryptoEngine implements CryptographyEngine
type cryptoEngine struct {
	goutils.Component

	persistence db.Client
	validator   *validator.Validate

	crypto cgoCrypto.Engine

	rsaKey    *rsa.PrivateKey
	rsaPubKey *rsa.PublicKey

	// key material never changes, so plain text keys are cached regardless of key state
	keyCacheLock *sync.RWMutex
	plainKeys    map[string][]byte
}

// CryptographyEngineParams cryptography engine init parameters
//
// The primary RSA key pair is used to encrypt and decrypt symmetric encryption keys
type CryptographyEngineParams struct {
	// Persistence persistence layer client
	Persistence db.Client `validate:"-"`
	// PrimaryRSACertFile file path to the primary RSA certificate PEM
	PrimaryRSACertFile string `validate:"required,file"`
	// PrimaryRSAKeyFile file path to the primary RSA certificate private key PEM
	PrimaryRSAKeyFile string `validate:"required,file"`
}

/*
NewCryptographyEngine define new cryptography engine

	@param ctx context.Context - execution context
	@param params CryptographyEngineParams - engine parameters
	@returns engine instance
*/
func NewCryptographyEngine(
	ctx context.Context, params CryptographyEngineParams,
) (CryptographyEngine, error) {
	// Prepare core crypto engine
	engine, err := cgoCrypto.NewEngine(log.Fields{
		"package": "cgoutils", "module": "crypto", "component": "crypto-engine",
	})

	if err != nil {
		return nil, fmt.Errorf("failed to prepare core cryptography [%w]", err)
	}

	logTags := log.Fields{"package": "bluelight", "module": "encryption", "component": "crypto-engine"}

	instance := &cryptoEngine{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		persistence:  params.Persistence,
		validator:    validator.New(),
		crypto:       engine,
		keyCacheLock: &sync.RWMutex{},
		plainKeys:    make(map[string][]byte),
	}
	if err := models.RegisterWithValidator(instance.validator); err != nil {
		return nil, fmt.Errorf("failed to install custom validation macros [%w]", err)
	}

	// Load the primary RSA certificate and private key
	if err := instance.validator.Struct(&params); err != nil {
		return nil, fmt.Errorf("invalid engine init parameters [%w]", err)
	}
	if err := instance.loadRSAKeyPair(
		ctx, params.PrimaryRSACertFile, params.PrimaryRSAKeyFile,
	); err != nil {
		return nil, fmt.Errorf("failed to load primary RSA key pair [%w]", err)
	}

	return instance, nil
}
