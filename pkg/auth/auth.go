// Package auth checks the admin credential and issues sessions.
//
// There is one configured admin account: an email and a bcrypt hash of its
// password. A successful [Authenticator.Login] stores a new [session.Session]
// and returns it; its id is the bearer token clients send back.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
	"github.com/matzehuels/cardsheet/pkg/session"
)

// Credential is the configured admin account.
type Credential struct {
	Email        string
	PasswordHash string
}

// Authenticator issues and resolves admin sessions.
type Authenticator struct {
	cred  Credential
	store session.Store
	ttl   time.Duration
	now   func() time.Time
}

// New returns an Authenticator for cred storing sessions in store.
func New(cred Credential, store session.Store, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &Authenticator{cred: cred, store: store, ttl: ttl, now: time.Now}
}

// HashPassword returns a bcrypt hash suitable for [Credential.PasswordHash].
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperr.New(apperr.ErrCodeInvalidInput, "password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Wrap(apperr.ErrCodeInternal, err, "hash password")
	}
	return string(hash), nil
}

// Login checks email and password and returns a new stored session.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*session.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "Email and password are required")
	}
	if !a.check(email, password) {
		return nil, apperr.New(apperr.ErrCodeUnauthorized, "Invalid credentials")
	}

	sess, err := session.New(a.cred.Email, session.RoleAdmin, a.ttl)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "create session")
	}
	if err := a.store.Set(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "store session")
	}
	return sess, nil
}

func (a *Authenticator) check(email, password string) bool {
	if a.cred.Email == "" || a.cred.PasswordHash == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(email)), []byte(strings.ToLower(a.cred.Email))) == 1
	// Always run bcrypt so a wrong email costs the same as a wrong password.
	pwErr := bcrypt.CompareHashAndPassword([]byte(a.cred.PasswordHash), []byte(password))
	return emailOK && pwErr == nil
}

// Authorize resolves a bearer token to a valid session.
func (a *Authenticator) Authorize(ctx context.Context, token string) (*session.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.New(apperr.ErrCodeUnauthorized, "Authentication required")
	}

	sess, err := a.store.Get(ctx, token)
	switch {
	case errors.Is(err, session.ErrExpired):
		return nil, apperr.New(apperr.ErrCodeSessionExpired, "Session expired, please sign in again")
	case errors.Is(err, session.ErrNotFound):
		return nil, apperr.New(apperr.ErrCodeUnauthorized, "Invalid or revoked session")
	case err != nil:
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "load session")
	}
	if !sess.Valid(a.now()) {
		return nil, apperr.New(apperr.ErrCodeSessionExpired, "Session expired, please sign in again")
	}
	return sess, nil
}

// Logout revokes the session with token.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if err := a.store.Delete(ctx, token); err != nil {
		return apperr.Wrap(apperr.ErrCodeInternal, err, "revoke session")
	}
	return nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
