// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (sqlite or mysql), pool settings, migrations
//	├── books/           # Book CRUD, listing and the duplicate-ISBN signal
//	└── audit/           # Audit event storage
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
//	book, err := booksRepo.GetBookByID(ctx, 123)
//
// # Drivers
//
// sqlite is the default and needs only DATABASE_PATH. mysql is selected with
// DATABASE_DRIVER=mysql and DATABASE_DSN. Both enforce ISBN uniqueness with a
// unique index created by AutoMigrate, and both report violations through
// books.ErrDuplicateISBN.
package database
