// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	err := repo.CreateBook(ctx, &entities.Book{Title: "Dune", ...})
//	if errors.Is(err, books.ErrDuplicateISBN) {
//		// another record already holds this ISBN
//	}
package books

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

// DefaultPageSize is used when a ListQuery does not specify one.
const DefaultPageSize = 20

// ListQuery describes a filtered, paginated listing.
type ListQuery struct {
	Search   string // Case-insensitive substring of title or author
	Page     int    // 1-based
	PageSize int
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return &book, nil
}

// BookExists reports whether a book with the given ID is stored.
func (r *Repository) BookExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check book %d: %w", id, err)
	}
	return count > 0, nil
}

// ListBooks returns one page of books ordered by title together with the
// total number of books matching the search.
func (r *Repository) ListBooks(ctx context.Context, q ListQuery) ([]entities.Book, int64, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if maxPage := MaxPage(pageSize); page > maxPage {
		page = maxPage
	}

	filter := searchScope(q.Search)

	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	books := make([]entities.Book, 0, pageSize)
	err := r.db.WithContext(ctx).Scopes(filter).
		Order("LOWER(title) ASC, id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&books).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return books, total, nil
}

// MaxPage is the highest page number whose offset fits in an int.
func MaxPage(pageSize int) int {
	return math.MaxInt/pageSize + 1
}

// CreateBook inserts a new book. The store assigns the ID.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	book.ID = 0
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateISBN
		}
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// UpdateBook replaces the editable fields of an existing book and reloads it.
// Returns ErrBookNotFound when the row vanished before the update ran.
func (r *Repository) UpdateBook(ctx context.Context, book *entities.Book) error {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ?", book.ID).
		Updates(map[string]any{
			"title":  book.Title,
			"author": book.Author,
			"isbn":   book.ISBN,
			"year":   book.Year,
		})
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return ErrDuplicateISBN
		}
		return fmt.Errorf("update book %d: %w", book.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}

	stored, err := r.GetBookByID(ctx, book.ID)
	if err != nil {
		return err
	}
	*book = *stored
	return nil
}

// DeleteBook permanently removes a book.
func (r *Repository) DeleteBook(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.Book{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete book %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func searchScope(search string) func(*gorm.DB) *gorm.DB {
	search = strings.TrimSpace(search)
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		return db.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(author) LIKE ? ESCAPE '!'", pattern, pattern)
	}
}
