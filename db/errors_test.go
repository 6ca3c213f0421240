package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(translateError(nil))
	assert.ErrorIs(translateError(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(translateError(gorm.ErrDuplicatedKey), ErrConflict)

	// SQLite lock contention is a lost race, not a broken database
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	assert.ErrorIs(translateError(busy), ErrConflict)
	assert.ErrorIs(translateError(fmt.Errorf("advance [%w]", busy)), ErrConflict)
	assert.ErrorIs(translateError(sqlite3.Error{Code: sqlite3.ErrLocked}), ErrConflict)

	other := errors.New("disk I/O error")
	assert.Equal(other, translateError(other))
	assert.False(errors.Is(translateError(sqlite3.Error{Code: sqlite3.ErrIoErr}), ErrConflict))
}

func TestSqliteDialectorTakesWriteLockOnBegin(t *testing.T) {
	assert := assert.New(t)

	dialector, ok := GetSqliteDialector("/tmp/bluelight_ut_dsn.db").(*sqlite.Dialector)
	assert.True(ok)
	assert.Contains(dialector.DSN, "_txlock=immediate")
	assert.Contains(dialector.DSN, "_busy_timeout=")
}
