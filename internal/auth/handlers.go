package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Controller exposes account operations as synchronous JSON endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
}

// NewController creates a new authentication controller.
func NewController(service *Service, sessionManager *SessionManager) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/signup", ac.Signup)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/me", ac.Me)
}

type signupRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email" binding:"required"`
}

// Signup registers a new account.
func (ac *Controller) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := ac.service.Signup(req.Username, req.Password, req.Firstname, req.Lastname, req.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": "account created"})
	case errors.Is(err, ErrDuplicateUsername):
		c.JSON(http.StatusConflict, gin.H{"error": ErrDuplicateUsername.Error()})
	case errors.Is(err, ErrUsernameRequired),
		errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrUsernameInvalid),
		errors.Is(err, ErrEmailInvalid),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("signup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates credentials and establishes the session.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	identity, err := ac.service.Login(req.Username, req.Password)
	switch {
	case err == nil:
		// fall through to session creation below
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	default:
		log.Printf("login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, identity); err != nil {
		log.Printf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, identity)
}

// Logout clears the session unconditionally. Idempotent.
func (ac *Controller) Logout(c *gin.Context) {
	ac.service.Logout()
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("failed to destroy session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the current session's identity.
func (ac *Controller) Me(c *gin.Context) {
	identity := ac.sessionManager.GetIdentity(c.Request)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, identity)
}
