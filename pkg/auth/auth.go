// Package auth provides scrypt password hashing and login against the user
// store, issuing session tokens via pkg/session.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"

	"pmtoolkit/pkg/session"
	"pmtoolkit/pkg/store"
)

const (
	saltSize = 16
	scryptN  = 32768 // 2^15
	scryptR  = 8
	scryptP  = 1
	keySize  = 32
)

// ErrInvalidCredentials is returned when the email or password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword derives an scrypt hash and returns it in the encoded form
// "scrypt$<base64 salt>$<base64 key>".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}
	return fmt.Sprintf("scrypt$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks password against an encoded hash.
func VerifyPassword(password, encoded string) error {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != "scrypt" {
		return errors.New("malformed password hash")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return errors.New("malformed password hash")
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return errors.New("malformed password hash")
	}
	got, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// Authenticator validates logins against the user store and manages sessions.
type Authenticator struct {
	store    *store.Store
	sessions *session.Manager
}

// New creates an authenticator.
func New(st *store.Store, sessions *session.Manager) *Authenticator {
	return &Authenticator{store: st, sessions: sessions}
}

// Login verifies credentials and starts a session on success.
func (a *Authenticator) Login(email, password string) (*session.Session, error) {
	user, err := a.store.GetUser(email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return a.sessions.Create(email), nil
}

// Logout ends the session for token.
func (a *Authenticator) Logout(token string) {
	a.sessions.Delete(token)
}

// Resolve maps a session token to its live session.
func (a *Authenticator) Resolve(token string) (*session.Session, bool) {
	return a.sessions.Get(token)
}

// Register creates a user account with a hashed password.
func (a *Authenticator) Register(email, password string) error {
	if email == "" || password == "" {
		return errors.New("email and password must be set")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return a.store.CreateUser(email, hash)
}
