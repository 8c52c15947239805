package http

import (
	"context"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/security"
	"github.com/mrlokans/bookcatalog/internal/services"
)

// Each controller depends on the narrow interface it needs.

// BookCatalog is the catalog surface used by BooksController.
// Implemented by services.Catalog.
type BookCatalog interface {
	ListBooks(ctx context.Context, search string, page int) (*services.BookPage, error)
	GetBook(ctx context.Context, id uint) (*entities.Book, error)
	CreateBook(ctx context.Context, in services.BookInput) (*entities.Book, error)
	UpdateBook(ctx context.Context, pathID uint, in services.BookInput) (*entities.Book, error)
	DeleteBook(ctx context.Context, id uint) error
}

// FlashStore carries one-shot notices across a redirect.
// Implemented by security.SessionManager.
type FlashStore interface {
	SetFlash(ctx context.Context, kind, message string)
	PopFlash(ctx context.Context) *security.Flash
}

// AuditReader provides read access to recorded audit events.
// Implemented by audit.Service.
type AuditReader interface {
	GetEvents(ctx context.Context, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(ctx context.Context, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// HealthChecker reports storage connectivity.
// Implemented by database.Database.
type HealthChecker interface {
	Ping() error
}

var (
	_ BookCatalog = (*services.Catalog)(nil)
	_ FlashStore  = (*security.SessionManager)(nil)
)
