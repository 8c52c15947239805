package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/mrlokans/bookcatalog/internal/database/books"
)

var (
	// ErrBookNotFound means the requested book does not exist (or no longer does).
	ErrBookNotFound = books.ErrBookNotFound

	// ErrDuplicateISBN means another book already holds the ISBN.
	ErrDuplicateISBN = books.ErrDuplicateISBN

	// ErrBookIDMissing means an edit arrived without a usable book ID.
	ErrBookIDMissing = errors.New("book id missing")
)

// ValidationError carries the per-field messages of a rejected input.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// IsUserError reports whether err is a correctable outcome (validation,
// conflict or not found) rather than a storage failure.
func IsUserError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr) ||
		errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrDuplicateISBN) ||
		errors.Is(err, ErrBookIDMissing)
}
