package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/services"
)

// Result summaries shared by the JSON contract and the rendered forms.
const (
	summaryValidation = "please correct the following errors"
	summaryDuplicate  = "a book with this ISBN already exists"
	summaryIDMissing  = "book id missing"
	summaryNotFound   = "book not found"
	summaryStorage    = "storage error"
)

// --- Response Types ---

// Result is the structured response of every create, edit and delete call.
type Result struct {
	Success bool              `json:"success"`
	Summary string            `json:"summary,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// resultForError maps a catalog error to its status code and response body.
// Unexpected errors are logged here and reported without detail.
func resultForError(err error, context string) (int, Result) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, Result{Summary: summaryValidation, Fields: validationErr.Fields}
	case errors.Is(err, services.ErrDuplicateISBN):
		return http.StatusBadRequest, Result{
			Summary: summaryDuplicate,
			Fields:  map[string]string{"isbn": "this ISBN is already taken"},
		}
	case errors.Is(err, services.ErrBookIDMissing):
		return http.StatusBadRequest, Result{
			Summary: summaryIDMissing,
			Fields:  map[string]string{"id": "invalid book id"},
		}
	case errors.Is(err, services.ErrBookNotFound):
		return http.StatusNotFound, Result{Summary: summaryNotFound}
	default:
		log.Printf("Internal error (%s): %v", context, err)
		return http.StatusInternalServerError, Result{Summary: summaryStorage}
	}
}

// respondResult writes err (or success when nil) in the structured format.
func respondResult(c *gin.Context, err error, context string) {
	if err == nil {
		c.JSON(http.StatusOK, Result{Success: true})
		return
	}
	status, result := resultForError(err, context)
	c.JSON(status, result)
}

// respondMalformedJSON rejects a body that could not be decoded.
func respondMalformedJSON(c *gin.Context) {
	c.JSON(http.StatusBadRequest, Result{
		Summary: summaryValidation,
		Fields:  map[string]string{"body": "invalid JSON payload"},
	})
}

// --- Parameter Parsing ---

// parseIDParam extracts a positive unsigned integer ID from URL parameters.
// Callers decide how to report a bad ID, since page and structured modes
// answer it differently.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parsePageQuery reads the 1-based page number, falling back to 1.
func parsePageQuery(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// --- Request Mode ---

// isAjaxRequest reports whether the request carries the AJAX marker sent by
// client-side script (jQuery-style or HTMX).
func isAjaxRequest(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest" ||
		c.GetHeader("HX-Request") == "true"
}

// isJSONRequest reports whether the request body is JSON.
func isJSONRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "application/json")
}

// wantsStructured selects structured mode for create and edit submissions.
func wantsStructured(c *gin.Context) bool {
	return isJSONRequest(c) || isAjaxRequest(c)
}
