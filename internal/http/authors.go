package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"libris/internal/catalog"
)

// AuthorsController exposes the author catalog over JSON.
type AuthorsController struct {
	catalog *catalog.AuthorCatalog
}

// NewAuthorsController creates a new authors controller.
func NewAuthorsController(authorCatalog *catalog.AuthorCatalog) *AuthorsController {
	return &AuthorsController{catalog: authorCatalog}
}

// SearchAuthors handles GET /api/authors?q=<query>. An empty query
// returns all authors.
func (ctrl *AuthorsController) SearchAuthors(c *gin.Context) {
	records, err := ctrl.catalog.SearchAuthors(c.Query("q"))
	if err != nil {
		respondInternalError(c, err, "search authors")
		return
	}
	c.JSON(http.StatusOK, records)
}

type createAuthorRequest struct {
	Name      string `json:"name" binding:"required"`
	BirthYear *int   `json:"birth_year"`
}

// CreateAuthor handles POST /api/authors.
func (ctrl *AuthorsController) CreateAuthor(c *gin.Context) {
	var req createAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := ctrl.catalog.AddAuthor(req.Name, req.BirthYear); err != nil {
		if errors.Is(err, catalog.ErrNameRequired) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create author")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "author created"})
}
