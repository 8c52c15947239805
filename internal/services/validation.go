package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

// FieldErrors maps a field name (as it appears in JSON and forms) to a
// user-facing message. An empty map means the input is valid.
type FieldErrors map[string]string

// isbnPattern approximates ISBN-10/13 with optional hyphen separators.
var isbnPattern = regexp.MustCompile(`^[0-9\-xX]{10,17}$`)

var bookMessages = map[string]map[string]string{
	"title": {
		"required": "title is required",
		"min":      "title must be between 2 and 100 characters",
		"max":      "title must be between 2 and 100 characters",
	},
	"author": {
		"required": "author is required",
		"min":      "author must be between 2 and 80 characters",
		"max":      "author must be between 2 and 80 characters",
	},
	"isbn": {
		"required":   "isbn is required",
		"isbnformat": "invalid ISBN (10-13 digits, optionally with hyphens)",
	},
	"year": {
		"required": "year is required",
		"gte":      "year must be between 1000 and 2025",
		"lte":      "year must be between 1000 and 2025",
	},
}

var bookValidator = newBookValidator()

func newBookValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names so messages line up with form inputs
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("isbnformat", func(fl validator.FieldLevel) bool {
		return isbnPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// ValidateBook applies the field rules to book and collects one message per
// invalid field. Blank strings count as missing. It never touches storage.
func ValidateBook(book *entities.Book) FieldErrors {
	fields := FieldErrors{}
	if book == nil {
		book = &entities.Book{}
	}

	candidate := *book
	candidate.Title = blankToEmpty(candidate.Title)
	candidate.Author = blankToEmpty(candidate.Author)
	candidate.ISBN = blankToEmpty(candidate.ISBN)

	err := bookValidator.Struct(&candidate)
	if err == nil {
		return fields
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		fields["book"] = "invalid book"
		return fields
	}

	for _, fe := range validationErrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = messageFor(name, fe.Tag())
	}
	return fields
}

func messageFor(field, tag string) string {
	if msg, ok := bookMessages[field][tag]; ok {
		return msg
	}
	return field + " is invalid"
}

func blankToEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
