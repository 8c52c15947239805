package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// PageSize is the fixed number of books per listing page.
const PageSize = books.DefaultPageSize

// BookInput is the boundary representation of a create or edit request,
// independent of whether it arrived as a form or as JSON.
type BookInput struct {
	ID     uint
	Title  string
	Author string
	ISBN   string
	Year   int
}

func (in BookInput) toBook() *entities.Book {
	return &entities.Book{
		ID:     in.ID,
		Title:  strings.TrimSpace(in.Title),
		Author: strings.TrimSpace(in.Author),
		ISBN:   strings.TrimSpace(in.ISBN),
		Year:   in.Year,
	}
}

// BookPage is one page of a filtered listing plus its pagination metadata.
type BookPage struct {
	Books      []entities.Book
	Search     string
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

func (p *BookPage) HasPrevious() bool { return p.Page > 1 }
func (p *BookPage) HasNext() bool     { return p.Page < p.TotalPages }
func (p *BookPage) PreviousPage() int { return p.Page - 1 }
func (p *BookPage) NextPage() int     { return p.Page + 1 }

// Catalog orchestrates validation and persistence for books. It holds no
// per-request state; correctness under concurrency comes from the store.
type Catalog struct {
	store   BookStore
	auditor Auditor
}

// NewCatalog creates a catalog service. auditor may be nil.
func NewCatalog(store BookStore, auditor Auditor) *Catalog {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	return &Catalog{store: store, auditor: auditor}
}

// ListBooks returns the requested page of books whose title or author
// contains search. Pages below 1 are treated as the first page; pages past
// the addressable range are clamped to its end.
func (c *Catalog) ListBooks(ctx context.Context, search string, page int) (*BookPage, error) {
	if page < 1 {
		page = 1
	}
	if maxPage := books.MaxPage(PageSize); page > maxPage {
		page = maxPage
	}
	search = strings.TrimSpace(search)

	items, total, err := c.store.ListBooks(ctx, books.ListQuery{
		Search:   search,
		Page:     page,
		PageSize: PageSize,
	})
	if err != nil {
		c.auditor.LogStorageFailure(ctx, "book_list", err)
		return nil, err
	}

	return &BookPage{
		Books:      items,
		Search:     search,
		Page:       page,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: int((total + PageSize - 1) / PageSize),
	}, nil
}

// GetBook returns a single book or ErrBookNotFound.
func (c *Catalog) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := c.store.GetBookByID(ctx, id)
	if err != nil {
		if !IsUserError(err) {
			c.auditor.LogStorageFailure(ctx, "book_get", err)
		}
		return nil, err
	}
	return book, nil
}

// CreateBook validates the input and stores a new book. Returns a
// *ValidationError, ErrDuplicateISBN, or a storage error on failure.
func (c *Catalog) CreateBook(ctx context.Context, in BookInput) (*entities.Book, error) {
	book := in.toBook()
	book.ID = 0

	if fields := ValidateBook(book); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := c.store.CreateBook(ctx, book); err != nil {
		if !IsUserError(err) {
			c.auditor.LogStorageFailure(ctx, "book_create", err)
		}
		return nil, err
	}

	c.auditor.LogBookChange(ctx, "book_create", book)
	return book, nil
}

// UpdateBook replaces the editable fields of the book identified by pathID.
// The input must carry the same ID; the record's existence is re-checked
// right before the update because it may have been deleted since the form
// was loaded.
func (c *Catalog) UpdateBook(ctx context.Context, pathID uint, in BookInput) (*entities.Book, error) {
	if in.ID == 0 {
		return nil, ErrBookIDMissing
	}
	if pathID != in.ID {
		return nil, ErrBookNotFound
	}

	exists, err := c.store.BookExists(ctx, in.ID)
	if err != nil {
		c.auditor.LogStorageFailure(ctx, "book_update", err)
		return nil, err
	}
	if !exists {
		return nil, ErrBookNotFound
	}

	book := in.toBook()
	if fields := ValidateBook(book); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := c.store.UpdateBook(ctx, book); err != nil {
		if !IsUserError(err) {
			c.auditor.LogStorageFailure(ctx, "book_update", err)
		}
		return nil, err
	}

	c.auditor.LogBookChange(ctx, "book_update", book)
	return book, nil
}

// DeleteBook removes a book permanently. Returns ErrBookNotFound when there
// was nothing to delete.
func (c *Catalog) DeleteBook(ctx context.Context, id uint) error {
	if err := c.store.DeleteBook(ctx, id); err != nil {
		if IsUserError(err) {
			return err
		}
		c.auditor.LogStorageFailure(ctx, "book_delete", err)
		return fmt.Errorf("delete book: %w", err)
	}

	c.auditor.LogBookDelete(ctx, id)
	return nil
}
