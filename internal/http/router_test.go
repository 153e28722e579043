package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris/internal/auth"
	"libris/internal/catalog"
	"libris/internal/config"
	"libris/internal/covers"
	"libris/internal/database"
	"libris/internal/database/authors"
	"libris/internal/database/books"
	"libris/internal/database/users"
	"libris/internal/entities"
)

// setupFullRouter assembles the complete middleware chain the server
// runs with, CSRF included.
func setupFullRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := database.NewDatabase(filepath.Join(dir, "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache, err := covers.NewCache(filepath.Join(dir, "covers"))
	require.NoError(t, err)

	cfg := config.Auth{
		SessionLifetime: time.Hour,
		BcryptCost:      4,
		SecureCookies:   false,
	}

	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		AuthService:    auth.NewService(users.NewRepository(db.DB), cfg),
		SessionManager: sessionManager,
		AuthorCatalog:  catalog.NewAuthorCatalog(authors.NewRepository(db.DB)),
		BookCatalog:    catalog.NewBookCatalog(books.NewRepository(db.DB), cache),
		CSRFSecret:     bytes.Repeat([]byte{0x42}, 32),
		SecureCookies:  false,
	})
}

// routerClient drives the router like a browser: it carries cookies
// between requests and echoes the last CSRF token it was handed.
type routerClient struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
	token   string
}

func newRouterClient(t *testing.T, router *gin.Engine) *routerClient {
	return &routerClient{t: t, router: router, cookies: map[string]*http.Cookie{}}
}

func (cl *routerClient) do(method, path string, payload any) *httptest.ResponseRecorder {
	cl.t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(cl.t, err)
		body = bytes.NewReader(data)
	}

	req, _ := http.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set(auth.CSRFTokenHeader, cl.token)
	}
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	cl.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		cl.cookies[c.Name] = c
	}
	if token := w.Header().Get(auth.CSRFTokenHeader); token != "" {
		cl.token = token
	}
	return w
}

func TestRouter_CSRFRejectionAbortsHandler(t *testing.T) {
	router := setupFullRouter(t)
	client := newRouterClient(t, router)

	signup := gin.H{"username": "alice", "password": "sup3rsecret", "email": "alice@example.com"}

	// No token at all: rejected, and the signup handler must not run
	w := client.do("POST", "/signup", signup)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "account created")

	// Obtain a token via a safe request, then retry. A 201 (not 409)
	// proves the rejected attempt never reached the handler.
	w = client.do("GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, client.token, "safe responses must carry the CSRF token header")

	w = client.do("POST", "/signup", signup)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouter_CSRFRequiresMatchingCookie(t *testing.T) {
	router := setupFullRouter(t)

	// Prime one client, then replay its token without its cookie
	primed := newRouterClient(t, router)
	require.Equal(t, http.StatusOK, primed.do("GET", "/health", nil).Code)

	stranger := newRouterClient(t, router)
	stranger.token = primed.token
	w := stranger.do("POST", "/signup", gin.H{
		"username": "mallory", "password": "sup3rsecret", "email": "m@example.com",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_FullFlow(t *testing.T) {
	router := setupFullRouter(t)
	client := newRouterClient(t, router)

	// Prime the CSRF cookie and token
	require.Equal(t, http.StatusOK, client.do("GET", "/health", nil).Code)

	w := client.do("POST", "/signup", gin.H{
		"username": "alice", "password": "sup3rsecret",
		"firstname": "Alice", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = client.do("POST", "/login", gin.H{"username": "alice", "password": "sup3rsecret"})
	require.Equal(t, http.StatusOK, w.Code)

	w = client.do("GET", "/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var identity entities.UserIdentity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &identity))
	assert.Equal(t, "alice", identity.Username)

	w = client.do("POST", "/api/authors", gin.H{"name": "J. Tolkien", "birth_year": 1892})
	require.Equal(t, http.StatusCreated, w.Code)

	w = client.do("GET", "/api/authors?q=Tolkien", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var authorRecords []entities.AuthorRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &authorRecords))
	require.Len(t, authorRecords, 1)

	w = client.do("POST", "/api/books", gin.H{
		"title": "The Hobbit", "isbn": "0000000001", "author_id": authorRecords[0].ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = client.do("GET", "/api/books?q=Hobbit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results []entities.BookSearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].AddedByAuthor, "the logged-in adder owns the book")
	require.NotNil(t, results[0].AuthorName)
	assert.Equal(t, "J. Tolkien", *results[0].AuthorName)

	w = client.do("PUT", "/api/books/"+itoa(results[0].ID), gin.H{
		"title": "The Hobbit", "isbn": "0000000001", "published_year": 1937,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = client.do("DELETE", "/api/books/"+itoa(results[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = client.do("GET", "/api/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	results = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Empty(t, results)
}

func TestRouter_ProtectedRoutesNeedSession(t *testing.T) {
	router := setupFullRouter(t)
	client := newRouterClient(t, router)

	// CSRF cookie alone is not a session
	require.Equal(t, http.StatusOK, client.do("GET", "/health", nil).Code)

	w := client.do("GET", "/api/books", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
