package services

import (
	"context"

	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// BookStore is the persistence contract the catalog depends on.
// Implemented by books.Repository.
type BookStore interface {
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	BookExists(ctx context.Context, id uint) (bool, error)
	ListBooks(ctx context.Context, q books.ListQuery) ([]entities.Book, int64, error)
	CreateBook(ctx context.Context, book *entities.Book) error
	UpdateBook(ctx context.Context, book *entities.Book) error
	DeleteBook(ctx context.Context, id uint) error
}

// Auditor records catalog mutations and storage failures.
// Implemented by audit.Service.
type Auditor interface {
	LogBookChange(ctx context.Context, action string, book *entities.Book)
	LogBookDelete(ctx context.Context, id uint)
	LogStorageFailure(ctx context.Context, action string, err error)
}

var _ BookStore = (*books.Repository)(nil)

type noopAuditor struct{}

func (noopAuditor) LogBookChange(context.Context, string, *entities.Book) {}
func (noopAuditor) LogBookDelete(context.Context, uint)                   {}
func (noopAuditor) LogStorageFailure(context.Context, string, error)      {}
