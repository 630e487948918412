package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/example/blueprint/internal/core/violation"
)

// wrapDBError wraps a database error with operation context.
// It converts sql.ErrNoRows to violation.ErrNotFound for consistent error handling.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, violation.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isBusy reports whether err is a transient lock error worth retrying.
func isBusy(err error) bool {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code == sqlite3.ErrBusy || sqlErr.Code == sqlite3.ErrLocked
	}
	return false
}

// isPrimaryKeyViolation reports whether err is a PRIMARY KEY or UNIQUE clash.
func isPrimaryKeyViolation(err error) bool {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
