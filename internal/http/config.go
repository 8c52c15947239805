package http

import (
	"github.com/mrlokans/bookcatalog/internal/readonly"
	"github.com/mrlokans/bookcatalog/internal/security"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog BookCatalog
	Health  HealthChecker
	Audit   AuditReader

	// Flash messages; nil disables them
	SessionManager *security.SessionManager

	// CSRF protection is on when the secret is set
	CSRFSecret    []byte
	SecureCookies bool

	// Read-only maintenance mode (optional)
	ReadOnly *readonly.Middleware

	// UI paths; empty means the embedded assets
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
