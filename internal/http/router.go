package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/security"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(security.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(security.StrictTransportSecurityMiddleware())
	}

	// Sessions load first so the CSRF request replacement keeps their context.
	var flashes FlashStore
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
		flashes = cfg.SessionManager
	}

	if len(cfg.CSRFSecret) > 0 {
		router.Use(security.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.ReadOnly != nil {
		router.Use(cfg.ReadOnly.Handler())
	}

	tmpl, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	static, err := staticFileSystem(cfg.StaticPath)
	if err != nil {
		return nil, fmt.Errorf("load static assets: %w", err)
	}
	router.StaticFS("/static", static)

	health := NewHealthController(cfg.Health, cfg.Version)
	booksController := NewBooksController(cfg.Catalog, flashes)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, booksPath)
	})

	// Books
	router.GET("/books", booksController.Index)
	router.GET("/books/new", booksController.New)
	router.POST("/books", booksController.Create)
	router.GET("/books/:id", booksController.Details)
	router.GET("/books/:id/edit", booksController.Edit)
	router.POST("/books/:id", booksController.Update)
	router.PUT("/books/:id", booksController.UpdateJSON)
	router.GET("/books/:id/edit-fragment", booksController.EditFragment)
	router.GET("/books/:id/detail-fragment", booksController.DetailFragment)
	router.GET("/books/:id/delete", booksController.ConfirmDelete)
	router.POST("/books/:id/delete", booksController.DeleteConfirmed)
	router.DELETE("/books/:id", booksController.DeleteJSON)

	// Audit API
	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		router.GET("/api/audit", auditController.GetAuditEvents)
	}

	router.NoRoute(func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "Page not found")
	})

	return router, nil
}
