package library

import (
	"crypto/subtle"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// Authenticator decides whether a username/password pair may log in.
type Authenticator interface {
	Verify(username, password string) bool
}

// PasswordAuthenticator checks a single admin account against a bcrypt hash.
type PasswordAuthenticator struct {
	username string
	hash     []byte
}

// NewPasswordAuthenticator validates passwordHash as a bcrypt hash.
func NewPasswordAuthenticator(username, passwordHash string) (*PasswordAuthenticator, error) {
	if username == "" {
		return nil, fmt.Errorf("admin username is empty: %w", ErrInvalidInput)
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	return &PasswordAuthenticator{username: username, hash: []byte(passwordHash)}, nil
}

// NewDefaultAuthenticator hashes DefaultAdminPassword at the given bcrypt cost.
func NewDefaultAuthenticator(cost int) (*PasswordAuthenticator, error) {
	hash, err := HashPassword(DefaultAdminPassword, cost)
	if err != nil {
		return nil, err
	}
	return NewPasswordAuthenticator(DefaultAdminUsername, hash)
}

func (a *PasswordAuthenticator) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	return userOK && passOK
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Session is the login gate in front of the catalog and the ledger.
type Session struct {
	mu       sync.RWMutex
	auth     Authenticator
	loggedIn bool
}

func NewSession(auth Authenticator) *Session {
	return &Session{auth: auth}
}

// Login opens the session when auth accepts the credentials.
func (s *Session) Login(username, password string) error {
	if !s.auth.Verify(username, password) {
		return ErrInvalidCredentials
	}
	s.mu.Lock()
	s.loggedIn = true
	s.mu.Unlock()
	return nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.loggedIn = false
	s.mu.Unlock()
}

func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// Require returns ErrNotLoggedIn while the session is closed.
func (s *Session) Require() error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	return nil
}
