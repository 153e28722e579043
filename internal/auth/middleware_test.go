package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/config"
	"libris/internal/database"
)

func setupMiddlewareRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "middleware.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	sm, err := NewSessionManager(sqlDB, config.Auth{SessionLifetime: time.Hour})
	require.NoError(t, err)

	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	}

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(RequireSession(sm))
	router.GET("/health", handler)
	router.GET("/static/app.js", handler)
	router.GET("/api/books", handler)
	return router
}

func TestRequireSession(t *testing.T) {
	router := setupMiddlewareRouter(t)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", path, nil)
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("public paths pass without a session", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get("/health").Code)
		assert.Equal(t, http.StatusOK, get("/static/app.js").Code)
	})

	t.Run("protected paths reject anonymous requests", func(t *testing.T) {
		w := get("/api/books")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "authentication required")
	})
}

func TestGetUserID_EmptyContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uint(0), GetUserID(c))
}
