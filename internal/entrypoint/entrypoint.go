package entrypoint

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	auditRepo "github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	http_controllers "github.com/mrlokans/bookcatalog/internal/http"
	"github.com/mrlokans/bookcatalog/internal/readonly"
	"github.com/mrlokans/bookcatalog/internal/security"
	"github.com/mrlokans/bookcatalog/internal/services"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

var _ services.Auditor = (*audit.Service)(nil)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -2 is SIGINT; SIGKILL cannot be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Release storage only after in-flight requests are done.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// csrfSecret returns the configured CSRF key, generating a per-process one
// when no secret is set.
func csrfSecret(cfg config.Security) ([]byte, error) {
	if !cfg.CSRFEnabled {
		return nil, nil
	}
	secret := cfg.SessionSecret
	if secret == "" {
		generated, err := security.GenerateSecret()
		if err != nil {
			return nil, err
		}
		log.Printf("SESSION_SECRET is not set; generated a temporary one. Forms will expire on restart.")
		secret = generated
	}
	return security.KeyFromSecret(secret), nil
}

// pruneAuditEvents drops audit events beyond the retention window.
func pruneAuditEvents(auditService *audit.Service, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	retention := time.Duration(retentionDays) * 24 * time.Hour
	deleted, err := auditService.DeleteOldEvents(context.Background(), retention)
	if err != nil {
		log.Printf("Failed to prune audit events: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Pruned %d audit events older than %d days", deleted, retentionDays)
	}
}

// BuildRouter wires storage, services and middleware into a ready router.
func BuildRouter(cfg *config.Config, db *database.Database, version string) (*gin.Engine, error) {
	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	pruneAuditEvents(auditService, cfg.Audit.RetentionDays)

	catalog := services.NewCatalog(books.NewRepository(db.DB), auditService)

	// Sessions share the sqlite file; other drivers keep them in memory.
	var sessionDB *sql.DB
	if db.IsSQLite() {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql database: %w", err)
		}
		sessionDB = sqlDB
	}
	sessionManager, err := security.NewSessionManager(sessionDB, cfg.Security)
	if err != nil {
		return nil, fmt.Errorf("create session manager: %w", err)
	}

	secret, err := csrfSecret(cfg.Security)
	if err != nil {
		return nil, fmt.Errorf("generate CSRF secret: %w", err)
	}
	if secret == nil {
		log.Printf("WARNING: CSRF protection is disabled")
	}

	var readOnly *readonly.Middleware
	if cfg.Global.ReadOnly {
		log.Printf("Read-only mode enabled - write operations will be blocked")
		readOnly = readonly.NewMiddleware(true)
	}

	return http_controllers.NewRouter(http_controllers.RouterConfig{
		Catalog:        catalog,
		Health:         db,
		Audit:          auditService,
		SessionManager: sessionManager,
		CSRFSecret:     secret,
		SecureCookies:  cfg.Security.SecureCookies,
		ReadOnly:       readOnly,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		Version:        version,
	})
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Book Catalog v%s", version)

	if cfg.HTTP.GinMode != "" {
		gin.SetMode(cfg.HTTP.GinMode)
	}

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	router, err := BuildRouter(cfg, db, version)
	if err != nil {
		db.Close()
		log.Fatalf("Failed to build router: %v", err)
	}

	Serve(router, cfg, func(ctx context.Context) {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	})
}
