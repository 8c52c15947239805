package http

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/readonly"
	"github.com/mrlokans/bookcatalog/internal/security"
	"github.com/mrlokans/bookcatalog/internal/services"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// loadTemplates parses the page templates from dir, or the embedded copies
// when dir is empty.
func loadTemplates(dir string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"subtract": func(a, b int) int {
			return a - b
		},
	}

	tmpl := template.New("").Funcs(funcMap)
	if dir != "" {
		return tmpl.ParseGlob(filepath.Join(dir, "*.html"))
	}
	return tmpl.ParseFS(templatesFS, "templates/*.html")
}

// staticFileSystem serves dir, or the embedded assets when dir is empty.
func staticFileSystem(dir string) (http.FileSystem, error) {
	if dir != "" {
		return http.Dir(dir), nil
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	return http.FS(sub), nil
}

// bookForm is the view model of the create and edit forms. Fields stay
// strings so a rejected submission is redisplayed exactly as typed.
type bookForm struct {
	ID     string
	Title  string
	Author string
	ISBN   string
	Year   string
}

func formFromBook(book *entities.Book) bookForm {
	return bookForm{
		ID:     strconv.FormatUint(uint64(book.ID), 10),
		Title:  book.Title,
		Author: book.Author,
		ISBN:   book.ISBN,
		Year:   strconv.Itoa(book.Year),
	}
}

func formFromRequest(c *gin.Context) bookForm {
	return bookForm{
		ID:     strings.TrimSpace(c.PostForm("id")),
		Title:  c.PostForm("title"),
		Author: c.PostForm("author"),
		ISBN:   c.PostForm("isbn"),
		Year:   strings.TrimSpace(c.PostForm("year")),
	}
}

// input converts the form to a catalog input. An unparsable year or ID
// becomes zero, which validation and the edit checks then reject.
func (f bookForm) input() services.BookInput {
	id, _ := strconv.ParseUint(f.ID, 10, 32)
	year, _ := strconv.Atoi(f.Year)
	return services.BookInput{
		ID:     uint(id),
		Title:  f.Title,
		Author: f.Author,
		ISBN:   f.ISBN,
		Year:   year,
	}
}

// bookPayload is the JSON body of structured create and edit calls.
type bookPayload struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
	Year   int    `json:"year"`
}

func (p bookPayload) input() services.BookInput {
	return services.BookInput{
		ID:     p.ID,
		Title:  p.Title,
		Author: p.Author,
		ISBN:   p.ISBN,
		Year:   p.Year,
	}
}

// render executes a named template with the per-request values every page
// needs (CSRF field, pending flash, read-only flag) merged into data.
func render(c *gin.Context, flashes FlashStore, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CSRFField"] = security.CSRFTokenField(c)
	data["CSRFToken"] = security.GetCSRFToken(c)
	data["ReadOnly"] = c.GetBool(readonly.ContextKey)
	if flashes != nil {
		if flash := flashes.PopFlash(c.Request.Context()); flash != nil {
			data["Flash"] = flash
		}
	}
	c.HTML(status, name, data)
}

// renderError renders one of the generic error pages.
func renderError(c *gin.Context, status int, message string) {
	name := "error"
	switch status {
	case http.StatusNotFound:
		name = "not-found"
	case http.StatusBadRequest:
		name = "bad-request"
	}
	render(c, nil, status, name, gin.H{"Message": message})
}
