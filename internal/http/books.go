package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/security"
	"github.com/mrlokans/bookcatalog/internal/services"
)

const booksPath = "/books"

// BooksController serves the catalog in page mode (full pages and
// server-rendered fragments) and in structured JSON mode.
type BooksController struct {
	catalog BookCatalog
	flashes FlashStore
}

// NewBooksController creates a books controller. flashes may be nil, in
// which case success notices are not carried across redirects.
func NewBooksController(catalog BookCatalog, flashes FlashStore) *BooksController {
	return &BooksController{
		catalog: catalog,
		flashes: flashes,
	}
}

// Index renders the filtered, paginated list. With the AJAX marker only
// the table fragment is rendered.
// GET /books?search=&page=
func (bc *BooksController) Index(c *gin.Context) {
	search := c.Query("search")
	page := parsePageQuery(c)

	result, err := bc.catalog.ListBooks(c.Request.Context(), search, page)
	if err != nil {
		log.Printf("Failed to list books (search=%q, page=%d): %v", search, page, err)
		if isAjaxRequest(c) {
			c.String(http.StatusInternalServerError, summaryStorage)
			return
		}
		renderError(c, http.StatusInternalServerError, "The book list could not be loaded.")
		return
	}

	data := gin.H{
		"Books":      result.Books,
		"Page":       result.Page,
		"TotalPages": result.TotalPages,
		"Total":      result.Total,
		"Search":     result.Search,
		"Pagination": result,
	}

	if isAjaxRequest(c) {
		render(c, nil, http.StatusOK, "books-table", data)
		return
	}
	render(c, bc.flashes, http.StatusOK, "books", data)
}

// Details renders a single book.
// GET /books/:id
func (bc *BooksController) Details(c *gin.Context) {
	book, ok := bc.loadBookPage(c)
	if !ok {
		return
	}
	render(c, bc.flashes, http.StatusOK, "book", gin.H{"Book": book})
}

// DetailFragment renders the detail block for in-place display.
// GET /books/:id/detail-fragment
func (bc *BooksController) DetailFragment(c *gin.Context) {
	book, ok := bc.loadBookFragment(c)
	if !ok {
		return
	}
	render(c, nil, http.StatusOK, "book-detail-fragment", gin.H{"Book": book})
}

// New renders the empty create form.
// GET /books/new
func (bc *BooksController) New(c *gin.Context) {
	render(c, bc.flashes, http.StatusOK, "book-form", gin.H{
		"Form":   bookForm{},
		"Errors": map[string]string{},
		"IsEdit": false,
	})
}

// Create stores a new book from a form or a JSON body.
// POST /books
func (bc *BooksController) Create(c *gin.Context) {
	if wantsStructured(c) {
		input, ok := structuredInput(c)
		if !ok {
			return
		}
		_, err := bc.catalog.CreateBook(c.Request.Context(), input)
		respondResult(c, err, "create book")
		return
	}

	form := formFromRequest(c)
	book, err := bc.catalog.CreateBook(c.Request.Context(), form.input())
	if err != nil {
		bc.renderFormError(c, "book-form", form, false, err)
		return
	}

	bc.flash(c, security.FlashSuccess, "Book \""+book.Title+"\" was created.")
	c.Redirect(http.StatusSeeOther, booksPath)
}

// Edit renders the edit form for an existing book.
// GET /books/:id/edit
func (bc *BooksController) Edit(c *gin.Context) {
	book, ok := bc.loadBookPage(c)
	if !ok {
		return
	}
	render(c, bc.flashes, http.StatusOK, "book-form", gin.H{
		"Form":   formFromBook(book),
		"Errors": map[string]string{},
		"IsEdit": true,
	})
}

// EditFragment renders the edit form for in-place editing. A missing book
// yields a 404 carrying alert markup the client can show inline.
// GET /books/:id/edit-fragment
func (bc *BooksController) EditFragment(c *gin.Context) {
	book, ok := bc.loadBookFragment(c)
	if !ok {
		return
	}
	render(c, nil, http.StatusOK, "book-edit-fragment", gin.H{
		"Form":   formFromBook(book),
		"Errors": map[string]string{},
		"IsEdit": true,
	})
}

// Update applies a form submission, or a JSON / AJAX submission in
// structured mode.
// POST /books/:id
func (bc *BooksController) Update(c *gin.Context) {
	if wantsStructured(c) {
		bc.UpdateJSON(c)
		return
	}

	pathID, ok := parseIDParam(c, "id")
	if !ok {
		renderError(c, http.StatusNotFound, summaryNotFound)
		return
	}

	form := formFromRequest(c)
	book, err := bc.catalog.UpdateBook(c.Request.Context(), pathID, form.input())
	if err != nil {
		bc.renderFormError(c, "book-form", form, true, err)
		return
	}

	bc.flash(c, security.FlashSuccess, "Book \""+book.Title+"\" was updated.")
	c.Redirect(http.StatusSeeOther, booksPath)
}

// UpdateJSON applies a structured edit from a JSON body or an AJAX form.
// PUT /books/:id
func (bc *BooksController) UpdateJSON(c *gin.Context) {
	pathID, ok := parseIDParam(c, "id")
	if !ok {
		respondResult(c, services.ErrBookIDMissing, "update book")
		return
	}

	input, ok := structuredInput(c)
	if !ok {
		return
	}
	_, err := bc.catalog.UpdateBook(c.Request.Context(), pathID, input)
	respondResult(c, err, "update book")
}

// structuredInput reads a JSON body, or the form fields of an AJAX
// submission. A malformed JSON body has already been answered when ok is
// false.
func structuredInput(c *gin.Context) (services.BookInput, bool) {
	if !isJSONRequest(c) {
		return formFromRequest(c).input(), true
	}
	var payload bookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMalformedJSON(c)
		return services.BookInput{}, false
	}
	return payload.input(), true
}

// ConfirmDelete renders the delete confirmation page.
// GET /books/:id/delete
func (bc *BooksController) ConfirmDelete(c *gin.Context) {
	book, ok := bc.loadBookPage(c)
	if !ok {
		return
	}
	render(c, bc.flashes, http.StatusOK, "book-delete", gin.H{"Book": book})
}

// DeleteConfirmed deletes the book and returns to the list whatever the
// outcome; problems are reported through the flash message.
// POST /books/:id/delete
func (bc *BooksController) DeleteConfirmed(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		bc.flash(c, security.FlashError, summaryNotFound)
		c.Redirect(http.StatusSeeOther, booksPath)
		return
	}

	err := bc.catalog.DeleteBook(c.Request.Context(), id)
	switch {
	case err == nil:
		bc.flash(c, security.FlashSuccess, "Book was deleted.")
	case errors.Is(err, services.ErrBookNotFound):
		bc.flash(c, security.FlashError, summaryNotFound)
	default:
		log.Printf("Failed to delete book %d: %v", id, err)
		bc.flash(c, security.FlashError, "The book could not be deleted because of a storage error.")
	}
	c.Redirect(http.StatusSeeOther, booksPath)
}

// DeleteJSON deletes a book in structured mode.
// DELETE /books/:id
func (bc *BooksController) DeleteJSON(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondResult(c, services.ErrBookNotFound, "delete book")
		return
	}
	respondResult(c, bc.catalog.DeleteBook(c.Request.Context(), id), "delete book")
}

// loadBookPage fetches the book named by the path, rendering the error page
// itself when that fails.
func (bc *BooksController) loadBookPage(c *gin.Context) (*entities.Book, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		renderError(c, http.StatusNotFound, summaryNotFound)
		return nil, false
	}

	book, err := bc.catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			renderError(c, http.StatusNotFound, summaryNotFound)
		} else {
			log.Printf("Failed to load book %d: %v", id, err)
			renderError(c, http.StatusInternalServerError, "The book could not be loaded.")
		}
		return nil, false
	}
	return book, true
}

// loadBookFragment is loadBookPage for fragment endpoints: failures are
// reported as an inline alert.
func (bc *BooksController) loadBookFragment(c *gin.Context) (*entities.Book, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		render(c, nil, http.StatusNotFound, "alert", gin.H{"Message": "Book not found."})
		return nil, false
	}

	book, err := bc.catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			render(c, nil, http.StatusNotFound, "alert", gin.H{"Message": "Book not found."})
		} else {
			log.Printf("Failed to load book %d: %v", id, err)
			render(c, nil, http.StatusInternalServerError, "alert", gin.H{"Message": "The book could not be loaded."})
		}
		return nil, false
	}
	return book, true
}

// renderFormError redisplays the form for correctable errors and falls
// back to the error pages otherwise.
func (bc *BooksController) renderFormError(c *gin.Context, name string, form bookForm, isEdit bool, err error) {
	if errors.Is(err, services.ErrBookIDMissing) {
		renderError(c, http.StatusBadRequest, summaryIDMissing)
		return
	}

	status, result := resultForError(err, "save book")
	switch status {
	case http.StatusBadRequest:
		render(c, bc.flashes, status, name, gin.H{
			"Form":    form,
			"Errors":  result.Fields,
			"Summary": result.Summary,
			"IsEdit":  isEdit,
		})
	case http.StatusNotFound:
		renderError(c, status, summaryNotFound)
	default:
		renderError(c, status, "The book could not be saved.")
	}
}

func (bc *BooksController) flash(c *gin.Context, kind, message string) {
	if bc.flashes != nil {
		bc.flashes.SetFlash(c.Request.Context(), kind, message)
	}
}
