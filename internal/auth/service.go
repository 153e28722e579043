package auth

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"libris/internal/config"
	"libris/internal/database"
	"libris/internal/database/users"
	"libris/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUsernameInvalid    = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid       = errors.New("invalid email format")
)

// Service handles account registration and authentication. It owns the
// process-local Session: a successful login replaces the current
// identity and logout clears it.
type Service struct {
	users   *users.Repository
	session *Session
	config  config.Auth
}

// NewService creates a new account service with an anonymous session.
func NewService(usersRepo *users.Repository, cfg config.Auth) *Service {
	return &Service{
		users:   usersRepo,
		session: NewSession(),
		config:  cfg,
	}
}

// Signup registers a new account. The password is stored only as a
// bcrypt hash. A username collision is reported as ErrDuplicateUsername,
// detected from the storage layer's uniqueness violation rather than a
// racy pre-check.
func (s *Service) Signup(username, password, firstname, lastname, email string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameInvalid
	}
	// RFC 5321 length limit is 254
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return err
	}

	user := &entities.User{
		Username:  username,
		Password:  hash,
		Firstname: firstname,
		Lastname:  lastname,
		Email:     email,
	}

	if err := s.users.Create(user); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Login validates credentials and, on success, replaces the current
// session with the authenticated identity. An unknown username and a
// wrong password are reported distinctly so callers can give precise
// feedback.
func (s *Service) Login(username, password string) (*entities.UserIdentity, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	identity := &entities.UserIdentity{
		ID:        user.ID,
		Username:  user.Username,
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
		Email:     user.Email,
	}
	s.session.Replace(identity)

	return identity, nil
}

// Logout clears the current session. Calling it while anonymous is a
// no-op.
func (s *Service) Logout() {
	s.session.Clear()
}

// IsLoggedIn reports whether a session is currently populated.
func (s *Service) IsLoggedIn() bool {
	return s.session.IsActive()
}

// CurrentUser returns the cached identity of the logged-in user, or
// false when anonymous.
func (s *Service) CurrentUser() (*entities.UserIdentity, bool) {
	return s.session.Current()
}

// Session exposes the underlying session, so callers can pass the
// current user id into catalog operations explicitly.
func (s *Service) Session() *Session {
	return s.session
}
