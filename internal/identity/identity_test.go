package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestResolver(cfg Config) *Resolver {
	r := NewResolver(cfg)
	r.now = func() time.Time { return fixedNow }
	return r
}

func sign(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(sub string, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{Subject: sub, ExpiresAt: jwt.NewNumericDate(exp)}
}

func TestResolver_ParseToken(t *testing.T) {
	userID := uuid.New()
	r := newTestResolver(Config{JWTSecret: testSecret, MaxTokenLifetime: 72 * time.Hour})

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:  "valid token",
			token: sign(t, jwt.SigningMethodHS256, testSecret, claimsFor(userID.String(), fixedNow.Add(time.Hour))),
		},
		{
			name:    "expired",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, claimsFor(userID.String(), fixedNow.Add(-time.Minute))),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "wrong secret",
			token:   sign(t, jwt.SigningMethodHS256, "other", claimsFor(userID.String(), fixedNow.Add(time.Hour))),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "unexpected algorithm",
			token:   sign(t, jwt.SigningMethodHS512, testSecret, claimsFor(userID.String(), fixedNow.Add(time.Hour))),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "no expiry",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{Subject: userID.String()}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "effectively non-expiring",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, claimsFor(userID.String(), time.Unix(1_000_000_000_000, 0))),
			wantErr: ErrTokenLifetime,
		},
		{
			name:    "subject is not a uuid",
			token:   sign(t, jwt.SigningMethodHS256, testSecret, claimsFor("alice", fixedNow.Add(time.Hour))),
			wantErr: ErrInvalidSubject,
		},
		{
			name:    "garbage",
			token:   "not.a.jwt",
			wantErr: ErrInvalidToken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ParseToken(tt.token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, uuid.Nil, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, got)
		})
	}
}

func TestResolver_NoLifetimeCap(t *testing.T) {
	userID := uuid.New()
	r := newTestResolver(Config{JWTSecret: testSecret})

	got, err := r.ParseToken(sign(t, jwt.SigningMethodHS256, testSecret, claimsFor(userID.String(), fixedNow.AddDate(10, 0, 0))))
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestResolver_Resolve(t *testing.T) {
	userID := uuid.New()
	token := sign(t, jwt.SigningMethodHS256, testSecret, claimsFor(userID.String(), fixedNow.Add(time.Hour)))
	guestID := uuid.New()

	tests := []struct {
		name      string
		cfg       Config
		target    string
		header    string
		want      uuid.UUID
		wantFresh bool
		wantErr   error
	}{
		{name: "bearer header", cfg: Config{JWTSecret: testSecret}, target: "/ws", header: "Bearer " + token, want: userID},
		{name: "lowercase scheme", cfg: Config{JWTSecret: testSecret}, target: "/ws", header: "bearer " + token, want: userID},
		{name: "query token", cfg: Config{JWTSecret: testSecret}, target: "/ws?token=" + token, want: userID},
		{name: "header wins over query", cfg: Config{JWTSecret: testSecret}, target: "/ws?token=broken", header: "Bearer " + token, want: userID},
		{name: "token required", cfg: Config{JWTSecret: testSecret}, target: "/ws", wantErr: ErrMissingToken},
		{name: "bad token with guests on", cfg: Config{JWTSecret: testSecret, AllowGuests: true}, target: "/ws?token=broken", wantErr: ErrInvalidToken},
		{name: "token without secret", cfg: Config{AllowGuests: true}, target: "/ws?token=" + token, wantErr: ErrInvalidToken},
		{name: "guest cannot pick its id", cfg: Config{AllowGuests: true}, target: "/ws?user_id=" + guestID.String(), wantFresh: true},
		{name: "new guest", cfg: Config{AllowGuests: true}, target: "/ws", wantFresh: true},
		{name: "malformed guest id", cfg: Config{AllowGuests: true}, target: "/ws?user_id=player-1", wantFresh: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			got, err := newTestResolver(tt.cfg).Resolve(req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantFresh {
				assert.NotEqual(t, uuid.Nil, got)
				assert.NotEqual(t, guestID, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
