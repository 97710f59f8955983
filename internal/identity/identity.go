package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken   = errors.New("missing token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidSubject = errors.New("token subject is not a user id")
	ErrTokenLifetime  = errors.New("token expiry exceeds the allowed lifetime")
)

const (
	tokenQueryParam = "token"
	bearerPrefix    = "Bearer "
)

// Config controls how connections are identified.
type Config struct {
	JWTSecret        string
	AllowGuests      bool
	MaxTokenLifetime time.Duration // 0 disables the cap
}

// Resolver turns an upgrade request into a user id. Tokens are HS256 JWTs
// whose subject is the user's UUID.
type Resolver struct {
	secret      []byte
	allowGuests bool
	maxLifetime time.Duration
	now         func() time.Time
}

// NewResolver creates a Resolver from cfg.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{
		secret:      []byte(cfg.JWTSecret),
		allowGuests: cfg.AllowGuests,
		maxLifetime: cfg.MaxTokenLifetime,
		now:         time.Now,
	}
}

// Resolve identifies the user behind r. A bearer token in the Authorization
// header wins over the token query parameter. Without a token the request
// is admitted as a guest when guests are allowed. Guests always get a fresh
// id; only a verified token can reclaim an existing seat.
func (r *Resolver) Resolve(req *http.Request) (uuid.UUID, error) {
	token := bearerToken(req)
	if token == "" {
		token = req.URL.Query().Get(tokenQueryParam)
	}
	if token != "" {
		return r.ParseToken(token)
	}

	if !r.allowGuests {
		return uuid.Nil, ErrMissingToken
	}
	return uuid.New(), nil
}

// ParseToken validates token and returns its subject.
func (r *Resolver) ParseToken(token string) (uuid.UUID, error) {
	if len(r.secret) == 0 {
		return uuid.Nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(r.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if r.maxLifetime > 0 && claims.ExpiresAt.Time.After(r.now().Add(r.maxLifetime)) {
		return uuid.Nil, ErrTokenLifetime
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidSubject, claims.Subject)
	}
	return id, nil
}

func bearerToken(req *http.Request) string {
	h := req.Header.Get("Authorization")
	if len(h) < len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(bearerPrefix):])
}
