package security

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/config"
)

func testSecurityConfig() config.Security {
	return config.Security{SessionLifetime: time.Hour}
}

func newFlashRouter(sm *SessionManager) *gin.Engine {
	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.POST("/books", func(c *gin.Context) {
		sm.SetFlash(c.Request.Context(), FlashSuccess, "Book created")
		c.Redirect(http.StatusSeeOther, "/books")
	})
	router.GET("/books", func(c *gin.Context) {
		flash := sm.PopFlash(c.Request.Context())
		if flash == nil {
			c.String(http.StatusOK, "none")
			return
		}
		c.String(http.StatusOK, flash.Kind+":"+flash.Message)
	})
	return router
}

func roundTripFlash(t *testing.T, sm *SessionManager) {
	t.Helper()
	router := newFlashRouter(sm)

	postRR := httptest.NewRecorder()
	router.ServeHTTP(postRR, httptest.NewRequest(http.MethodPost, "/books", nil))
	require.Equal(t, http.StatusSeeOther, postRR.Code)
	cookies := postRR.Result().Cookies()
	require.NotEmpty(t, cookies, "session cookie should be set on redirect")

	get := func() string {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Body.String()
	}

	assert.Equal(t, "success:Book created", get())
	assert.Equal(t, "none", get(), "flash is shown once")
}

func TestSessionManager_FlashInMemory(t *testing.T) {
	sm, err := NewSessionManager(nil, testSecurityConfig())
	require.NoError(t, err)

	roundTripFlash(t, sm)
}

func TestSessionManager_FlashSQLite(t *testing.T) {
	sqlDB, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	sm, err := NewSessionManager(sqlDB, testSecurityConfig())
	require.NoError(t, err)

	var count int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='sessions'`).Scan(&count))
	assert.Equal(t, 1, count)

	roundTripFlash(t, sm)
}

func TestSessionManager_CookieSettings(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.SecureCookies = true
	sm, err := NewSessionManager(nil, cfg)
	require.NoError(t, err)

	assert.True(t, sm.Cookie.Secure)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.Equal(t, time.Hour, sm.Lifetime)
}

func TestSessionManager_NoCookieWithoutFlash(t *testing.T) {
	sm, err := NewSessionManager(nil, testSecurityConfig())
	require.NoError(t, err)
	router := newFlashRouter(sm)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/books", nil))

	assert.Equal(t, "none", rr.Body.String())
	assert.Empty(t, rr.Result().Cookies())
}
