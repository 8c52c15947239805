package entrypoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	auditRepo "github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return &config.Config{
		Database: config.Database{
			Driver:   config.DriverSQLite,
			Path:     filepath.Join(t.TempDir(), "catalog.db"),
			LogLevel: "silent",
		},
		Security: config.Security{
			CSRFEnabled:     true,
			SessionLifetime: time.Hour,
		},
		Audit: config.Audit{RetentionDays: 30},
	}
}

func buildTestRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *database.Database) {
	t.Helper()
	db, err := database.NewDatabase(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	router, err := BuildRouter(cfg, db, "test")
	require.NoError(t, err)
	return router, db
}

func TestBuildRouter_ServesCatalog(t *testing.T) {
	router, _ := buildTestRouter(t, testConfig(t))

	for _, path := range []string{"/health", "/ping", "/books", "/books/new", "/static/app.css"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestBuildRouter_CSRFEnabledByDefault(t *testing.T) {
	router, _ := buildTestRouter(t, testConfig(t))

	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader("title=Dune"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBuildRouter_JSONCreateWithoutToken(t *testing.T) {
	router, _ := buildTestRouter(t, testConfig(t))

	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","year":1965}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestBuildRouter_CSRFDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.CSRFEnabled = false
	router, _ := buildTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","year":1965}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestBuildRouter_ReadOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.CSRFEnabled = false
	cfg.Global.ReadOnly = true
	router, _ := buildTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodDelete, "/books/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `href="/books/new"`)
}

func TestBuildRouter_PrunesOldAuditEvents(t *testing.T) {
	cfg := testConfig(t)
	db, err := database.NewDatabase(cfg.Database)
	require.NoError(t, err)
	defer db.Close()

	repo := auditRepo.NewRepository(db.DB)
	require.NoError(t, repo.LogEvent(context.Background(), &entities.AuditEvent{
		EventType: entities.AuditEventCreate,
		Action:    "book_create",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-60 * 24 * time.Hour),
	}))

	_, err = BuildRouter(cfg, db, "test")
	require.NoError(t, err)

	_, total, err := audit.NewService(repo).GetEvents(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCSRFSecret(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		secret, err := csrfSecret(config.Security{CSRFEnabled: false, SessionSecret: "ignored"})
		require.NoError(t, err)
		assert.Nil(t, secret)
	})

	t.Run("configured secret is stable", func(t *testing.T) {
		cfg := config.Security{CSRFEnabled: true, SessionSecret: "a passphrase"}
		first, err := csrfSecret(cfg)
		require.NoError(t, err)
		second, err := csrfSecret(cfg)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Len(t, first, 32)
	})

	t.Run("generated when empty", func(t *testing.T) {
		secret, err := csrfSecret(config.Security{CSRFEnabled: true})
		require.NoError(t, err)
		assert.Len(t, secret, 32)
	})
}
