package http

import (
	"github.com/gin-gonic/gin"

	"libris/internal/auth"
	"libris/internal/catalog"
)

// RouterConfig carries all dependencies the router needs, keeping the
// constructor signature stable as the surface grows.
type RouterConfig struct {
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthorCatalog  *catalog.AuthorCatalog
	BookCatalog    *catalog.BookCatalog
	CSRFSecret     []byte
	SecureCookies  bool
}

// NewRouter creates and configures the HTTP router with all endpoints.
// Every manager operation is exposed as a synchronous request/response
// call returning structured records.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so the session context is preserved
	// on top of CSRF's request replacement
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	router.Use(cfg.SessionManager.SessionLoadSave())
	router.Use(auth.RequireSession(cfg.SessionManager))

	router.GET("/health", Health)

	authController := auth.NewController(cfg.AuthService, cfg.SessionManager)
	authController.RegisterRoutes(router)

	authorsController := NewAuthorsController(cfg.AuthorCatalog)
	router.GET("/api/authors", authorsController.SearchAuthors)
	router.POST("/api/authors", authorsController.CreateAuthor)

	booksController := NewBooksController(cfg.BookCatalog)
	router.GET("/api/books", booksController.SearchBooks)
	router.POST("/api/books", booksController.CreateBook)
	router.PUT("/api/books/:id", booksController.UpdateBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)
	router.GET("/api/books/:id/cover", booksController.GetCover)

	return router
}
