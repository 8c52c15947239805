package database

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqliteDriverName is the database/sql driver used for every sqlite
// connection the catalog opens.
const sqliteDriverName = "sqlite3_bookcatalog"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// sqlite's builtin lower() folds ASCII only. Search and title
			// ordering need the Unicode case mapping.
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

// SQLiteDialector opens path through the catalog's sqlite driver.
func SQLiteDialector(path string) gorm.Dialector {
	return sqlite.New(sqlite.Config{
		DriverName: sqliteDriverName,
		DSN:        sqliteDSN(path),
	})
}
