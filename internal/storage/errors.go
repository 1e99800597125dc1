package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"ledger/internal/core"
)

const (
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// isForeignKeyViolation reports whether err is a foreign-key failure from
// either supported driver.
func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "FOREIGN KEY"))
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlRowIsReferenced || me.Number == mysqlNoReferencedRow
	}
	return false
}

// writeError maps an insert/update failure. A foreign-key failure here means
// a referenced row vanished after validation.
func writeError(op, entity string, err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%s %s: %w", op, entity, core.ErrReferenceNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, entity, err)
}

// deleteError maps a delete failure. A foreign-key failure here means other
// rows still point at the target.
func deleteError(entity string, id int64, err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("delete %s %d: %w", entity, id, core.ErrConflict)
	}
	return fmt.Errorf("delete %s %d: %w", entity, id, err)
}
