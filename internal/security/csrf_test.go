package security

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSecret = []byte("test-secret-key-32-bytes-long!!!")

func newCSRFRouter(handlerCalled *bool) *gin.Engine {
	router := gin.New()
	router.Use(CSRFMiddleware(testSecret, false))
	router.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, GetCSRFToken(c))
	})
	router.POST("/form", func(c *gin.Context) {
		*handlerCalled = true
		c.Status(http.StatusOK)
	})
	return router
}

func TestCSRFMiddleware_AllowsGET(t *testing.T) {
	var called bool
	router := newCSRFRouter(&called)

	req := httptest.NewRequest(http.MethodGet, "/form", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Body.String(), "token should be exposed to handlers")
}

func TestCSRFMiddleware_BlocksPOSTWithoutToken(t *testing.T) {
	var called bool
	router := newCSRFRouter(&called)

	req := httptest.NewRequest(http.MethodPost, "/form", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, called)
	assert.Contains(t, rr.Body.String(), "Session Expired")
}

func TestCSRFMiddleware_JSONFailure(t *testing.T) {
	var called bool
	router := newCSRFRouter(&called)

	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader("title=Dune"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"success":false,"summary":"CSRF token invalid or missing"}`, rr.Body.String())
	assert.False(t, called)
}

func TestCSRFMiddleware_SkipsPreflightedRequests(t *testing.T) {
	var called bool
	router := newCSRFRouter(&called)
	router.PUT("/form", func(c *gin.Context) {
		called = true
		c.Status(http.StatusOK)
	})
	router.DELETE("/form", func(c *gin.Context) {
		called = true
		c.Status(http.StatusOK)
	})

	t.Run("JSON body", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, called)
	})

	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			called = false
			req := httptest.NewRequest(method, "/form", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.True(t, called)
		})
	}
}

func TestCSRFMiddleware_AcceptsValidToken(t *testing.T) {
	var called bool
	router := newCSRFRouter(&called)

	getReq := httptest.NewRequest(http.MethodGet, "/form", nil)
	getRR := httptest.NewRecorder()
	router.ServeHTTP(getRR, getReq)
	require.Equal(t, http.StatusOK, getRR.Code)
	token := getRR.Body.String()

	t.Run("form field", func(t *testing.T) {
		called = false
		form := url.Values{CSRFFieldName: {token}}
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for _, cookie := range getRR.Result().Cookies() {
			req.AddCookie(cookie)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, called)
	})

	t.Run("header", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(CSRFTokenHeader, token)
		for _, cookie := range getRR.Result().Cookies() {
			req.AddCookie(cookie)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, called)
	})
}

func TestGetCSRFToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetCSRFToken(c))

	c.Set(csrfContextKey, "test-token-123")
	assert.Equal(t, "test-token-123", GetCSRFToken(c))
}

func TestCSRFTokenField(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, string(CSRFTokenField(c)))

	c.Set(csrfContextKey, "abc123")
	assert.Equal(t, `<input type="hidden" name="gorilla.csrf.Token" value="abc123">`, string(CSRFTokenField(c)))
}
