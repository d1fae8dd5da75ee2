// Package session owns the authentication state: the bearer token and the
// authenticated flag. The token is the only piece of client state that
// survives a restart, via the secure TokenStore slot.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Da1ch1/CoffeeShop/internal/api"
	"github.com/Da1ch1/CoffeeShop/pkg/ctxmanage"
	"github.com/Da1ch1/CoffeeShop/pkg/logkey"
)

// Status is tri-state: unknown until Restore has checked the stored
// credentials, then authenticated or anonymous.
type Status int

const (
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type Store struct {
	client   *api.Client
	tokens   TokenStore
	validate *validator.Validate

	mu     sync.Mutex
	token  string
	status Status
}

func NewStore(client *api.Client, tokens TokenStore) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("api client is nil")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token store is nil")
	}
	return &Store{
		client:   client,
		tokens:   tokens,
		validate: validator.New(),
		status:   StatusUnknown,
	}, nil
}

// Restore resolves the startup state from the persisted token. No server
// round-trip happens here; a stale token is only discovered when the next
// authenticated request fails. The one local check: a stored JWT whose
// expiry has already passed is discarded instead of restored.
func (s *Store) Restore() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.tokens.Load()
	if err != nil {
		s.token = ""
		s.status = StatusAnonymous
		return s.status
	}

	if expired(token) {
		slog.Info("stored token is expired, discarding")
		if err := s.tokens.Delete(); err != nil {
			slog.Error("failed to discard expired token", slog.String(logkey.ERROR, err.Error()))
		}
		s.token = ""
		s.status = StatusAnonymous
		return s.status
	}

	s.token = token
	s.status = StatusAuthenticated
	return s.status
}

// expired reports whether token is a parseable JWT with an exp claim in
// the past. Opaque tokens are never treated as expired.
func expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Login validates the credential format, then exchanges the credentials
// for a token. On success the token is held in memory and persisted. On
// any failure the session state is left exactly as it was, so a typo does
// not log the user out.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := s.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return &api.Error{Kind: api.KindValidation, Msg: "please enter a valid email and password", Err: err}
	}

	ctx = ctxmanage.WithTraceId(ctx)
	traceId := ctxmanage.GetTraceId(ctx)

	token, err := s.client.Login(ctx, email, password)
	if err != nil {
		slog.Error("login failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.status = StatusAuthenticated
	if err := s.tokens.Save(token); err != nil {
		// The session still works for this run; it just won't survive
		// a restart.
		slog.Error("failed to persist token", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
	}

	slog.Info("logged in", slog.String(logkey.TraceID, traceId))
	return nil
}

// Logout clears the persisted and in-memory token. It succeeds locally
// even when no token was present.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tokens.Delete(); err != nil {
		slog.Error("failed to delete persisted token", slog.String(logkey.ERROR, err.Error()))
	}
	s.token = ""
	s.status = StatusAnonymous
	return nil
}

// Profile fetches the authenticated account's profile.
func (s *Store) Profile(ctx context.Context) (api.Profile, error) {
	ctx = ctxmanage.WithTraceId(ctx)
	return s.client.User(ctx, s.Token())
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
