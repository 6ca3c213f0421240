package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// goose keeps its FS, dialect, and logger as package globals
var migrationLock sync.Mutex

// gooseLogger route goose output through apex/log
type gooseLogger struct {
	logTags log.Fields
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	log.WithFields(l.logTags).Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	log.WithFields(l.logTags).Fatal(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

/*
runMigrations apply pending schema migrations of a dialect

	@param ctx context.Context - execution context
	@param sqlDB *sql.DB - DB handle
	@param dialect DialectENUMType - SQL dialect
	@param targetVersion int64 - stop after this version. Zero or less means latest.
*/
func runMigrations(
	ctx context.Context, sqlDB *sql.DB, dialect DialectENUMType, targetVersion int64,
) error {
	var gooseDialect, migrationDir string
	switch dialect {
	case DialectSqlite:
		gooseDialect = "sqlite3"
		migrationDir = "migrations/sqlite"
	case DialectPostgres:
		gooseDialect = "postgres"
		migrationDir = "migrations/postgres"
	default:
		return fmt.Errorf("unsupported SQL dialect '%s'", dialect)
	}

	migrationLock.Lock()
	defer migrationLock.Unlock()

	goose.SetBaseFS(migrationFiles)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{
		logTags: log.Fields{"package": "bluelight", "module": "db", "component": "migration"},
	})

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set migration dialect '%s' [%w]", gooseDialect, err)
	}

	var err error
	if targetVersion > 0 {
		err = goose.UpToContext(ctx, sqlDB, migrationDir, targetVersion)
	} else {
		err = goose.UpContext(ctx, sqlDB, migrationDir)
	}
	if err != nil {
		return fmt.Errorf("failed to apply '%s' schema migrations [%w]", dialect, err)
	}

	return nil
}
