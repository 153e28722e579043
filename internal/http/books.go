package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"libris/internal/catalog"
)

// BooksController exposes the book catalog over JSON.
type BooksController struct {
	catalog *catalog.BookCatalog
}

// NewBooksController creates a new books controller.
func NewBooksController(bookCatalog *catalog.BookCatalog) *BooksController {
	return &BooksController{catalog: bookCatalog}
}

// SearchBooks handles GET /api/books?q=<query>. Results are annotated
// with whether the session's user added each book.
func (ctrl *BooksController) SearchBooks(c *gin.Context) {
	results, err := ctrl.catalog.SearchBooks(c.Query("q"), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}
	c.JSON(http.StatusOK, results)
}

type bookRequest struct {
	Title         string `json:"title" binding:"required"`
	ISBN          string `json:"isbn"`
	PublishedYear *int   `json:"published_year"`
	CoverSource   string `json:"cover_source"`
	AuthorID      *uint  `json:"author_id"`
}

// CreateBook handles POST /api/books. The session's user becomes the
// book's added_by owner.
func (ctrl *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	err := ctrl.catalog.AddBook(req.Title, req.ISBN, req.PublishedYear, req.CoverSource, req.AuthorID, GetUserID(c))
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": "book created"})
	case errors.Is(err, catalog.ErrDuplicateISBN):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, catalog.ErrTitleRequired):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, "create book")
	}
}

// UpdateBook handles PUT /api/books/:id. Omitting cover_source keeps
// the stored cover untouched.
func (ctrl *BooksController) UpdateBook(c *gin.Context) {
	bookID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	err := ctrl.catalog.UpdateBook(bookID, req.Title, req.ISBN, req.PublishedYear, req.CoverSource, req.AuthorID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "book updated"})
	case errors.Is(err, catalog.ErrDuplicateISBN):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, catalog.ErrTitleRequired):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, "update book")
	}
}

// DeleteBook handles DELETE /api/books/:id. Deleting a non-existent id
// succeeds with no row affected.
func (ctrl *BooksController) DeleteBook(c *gin.Context) {
	bookID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.catalog.DeleteBook(bookID); err != nil {
		respondInternalError(c, err, "delete book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
}

// GetCover handles GET /api/books/:id/cover, serving the materialized
// cover file.
func (ctrl *BooksController) GetCover(c *gin.Context) {
	bookID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	path, err := ctrl.catalog.CoverPath(bookID)
	if err != nil {
		respondNotFound(c, "book")
		return
	}
	if path == "" {
		respondNotFound(c, "cover")
		return
	}
	c.File(path)
}
