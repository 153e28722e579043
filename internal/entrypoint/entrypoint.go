package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"libris/internal/auth"
	"libris/internal/catalog"
	"libris/internal/config"
	"libris/internal/covers"
	"libris/internal/database"
	"libris/internal/database/authors"
	"libris/internal/database/books"
	"libris/internal/database/users"
	http_controllers "libris/internal/http"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve starts the HTTP server and blocks until SIGINT/SIGTERM, then
// shuts down gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the application together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting libris v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	coverCache, err := covers.NewCache(cfg.Covers.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize cover cache: %v", err)
	}

	usersRepo := users.NewRepository(db.DB)
	authorsRepo := authors.NewRepository(db.DB)
	booksRepo := books.NewRepository(db.DB)

	authService := auth.NewService(usersRepo, cfg.Auth)
	authorCatalog := catalog.NewAuthorCatalog(authorsRepo)
	bookCatalog := catalog.NewBookCatalog(booksRepo, coverCache)

	sqlDB, err := db.SQLDB()
	if err != nil {
		log.Fatalf("Failed to access underlying connection: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	csrfSecret, err := resolveSecret(cfg.Auth.CSRFSecret)
	if err != nil {
		log.Fatalf("Failed to resolve CSRF secret: %v", err)
	}

	// Periodic sweep of cover files for deleted books. Catalog
	// operations themselves stay strictly synchronous.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Covers.SweepSchedule, func() {
		removed, err := bookCatalog.SweepCovers()
		if err != nil {
			log.Printf("Cover sweep failed: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("Cover sweep removed %d stale files", removed)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule cover sweep: %v", err)
	}
	scheduler.Start()

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthorCatalog:  authorCatalog,
		BookCatalog:    bookCatalog,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
	})

	Serve(router, cfg, func(ctx context.Context) {
		stopCtx := scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	})
}

// resolveSecret decodes a configured hex secret, generating a fresh one
// when none is set. A generated secret means sessions/CSRF tokens do not
// survive restarts, which is acceptable for a local deployment.
func resolveSecret(configured string) ([]byte, error) {
	if configured == "" {
		generated, err := auth.GenerateSecret()
		if err != nil {
			return nil, err
		}
		log.Printf("No CSRF secret configured, generated an ephemeral one")
		configured = generated
	}
	secret, err := hex.DecodeString(configured)
	if err != nil {
		return nil, fmt.Errorf("secret must be hex-encoded: %w", err)
	}
	return secret, nil
}
