package config

// Supported database drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// DefaultDatabasePath is the default path for the sqlite catalog database
const DefaultDatabasePath = "./bookcatalog.db"
