package books

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrBookNotFound is returned when no book has the requested ID.
	ErrBookNotFound = errors.New("book not found")

	// ErrDuplicateISBN is returned when the unique ISBN index rejects a write.
	ErrDuplicateISBN = errors.New("a book with this ISBN already exists")
)

// mysqlDuplicateEntry is MySQL's "Duplicate entry 'x' for key 'y'" error number.
const mysqlDuplicateEntry = 1062

// isDuplicateKeyError reports whether err is a unique constraint violation.
// gorm translates most driver errors to gorm.ErrDuplicatedKey; the driver
// checks cover errors that reach us untranslated.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}

	return false
}
