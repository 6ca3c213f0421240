// Package bluelight - operations log (Einsatztagebuch) backend
package bluelight

import (
	"context"
	"fmt"

	"github.com/alwitt/bluelight/config"
	"github.com/alwitt/bluelight/db"
	"github.com/alwitt/bluelight/encryption"
	"github.com/alwitt/bluelight/etb"
	"github.com/alwitt/bluelight/filestore"
	"gorm.io/gorm"
)

// Components the assembled operations log backend
type Components struct {
	// Persistence DB client, owned by the caller once returned
	Persistence db.Client
	// Files attachment content storage
	Files filestore.FileStore
	// Crypto attachment encryption engine, nil when encryption is disabled
	Crypto encryption.CryptographyEngine
	// Entries the operations log service
	Entries etb.Service
}

/*
NewDialector select the GORM dialector of the configured database

	@param cfg config.DatabaseConfig - database configuration
	@returns the dialector
*/
func NewDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Dialect {
	case string(db.DialectSqlite):
		return db.GetSqliteDialector(cfg.SqliteFile), nil
	case string(db.DialectPostgres):
		return db.GetPostgresDialector(cfg.PostgresDSN), nil
	}
	return nil, fmt.Errorf("unsupported database dialect '%s'", cfg.Dialect)
}

/*
NewFileStore define the configured attachment content storage

	@param ctx context.Context - execution context
	@param cfg config.AttachmentConfig - attachment storage configuration
	@returns the file store
*/
func NewFileStore(ctx context.Context, cfg config.AttachmentConfig) (filestore.FileStore, error) {
	if cfg.Backend != "s3" {
		return filestore.NewLocalStore(cfg.LocalRoot)
	}

	client, err := filestore.NewS3Client(ctx, filestore.S3StoreParams{
		Bucket:          cfg.S3.Bucket,
		Prefix:          cfg.S3.Prefix,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		UsePathStyle:    cfg.S3.UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to define S3 client [%w]", err)
	}
	return filestore.NewS3Store(client, cfg.S3.Bucket, cfg.S3.Prefix)
}

/*
NewComponents assemble the operations log backend from configuration.

The database schema is migrated first when the configuration asks for it.

	@param ctx context.Context - execution context
	@param cfg config.Config - service configuration
	@returns the assembled components
*/
func NewComponents(ctx context.Context, cfg config.Config) (*Components, error) {
	dialector, err := NewDialector(cfg.Database)
	if err != nil {
		return nil, err
	}

	persistence, err := db.NewConnection(dialector, cfg.Database.SQLLogLevel())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize persistence client [%w]", err)
	}

	result, err := assemble(ctx, cfg, persistence)
	if err != nil {
		_ = persistence.Close()
		return nil, err
	}
	return result, nil
}

func assemble(ctx context.Context, cfg config.Config, persistence db.Client) (*Components, error) {
	if cfg.Database.MigrateOnStart {
		if err := persistence.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate DB schema [%w]", err)
		}
	}

	files, err := NewFileStore(ctx, cfg.Attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize attachment storage [%w]", err)
	}

	var crypto encryption.CryptographyEngine
	if cfg.Attachments.Encryption.Enabled {
		crypto, err = encryption.NewCryptographyEngine(ctx, encryption.CryptographyEngineParams{
			Persistence:        persistence,
			PrimaryRSACertFile: cfg.Attachments.Encryption.RSACertFile,
			PrimaryRSAKeyFile:  cfg.Attachments.Encryption.RSAKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cryptography engine [%w]", err)
		}
	}

	entries, err := etb.NewService(etb.ServiceParams{
		Persistence: persistence, Files: files, Crypto: crypto,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize operations log service [%w]", err)
	}

	return &Components{
		Persistence: persistence, Files: files, Crypto: crypto, Entries: entries,
	}, nil
}
