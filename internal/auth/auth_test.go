package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":    "user-123",
		"iss":    "healthbridge",
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": []string{ScopeHealthRead, ScopeHealthWrite},
	}
}

func TestParseValidToken(t *testing.T) {
	token := signToken(t, baseClaims())

	claims, err := Parse(token, Config{Secret: testSecret, Issuer: "healthbridge"})
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
	require.True(t, claims.HasScope(ScopeHealthRead))
	require.True(t, claims.HasScope(ScopeHealthWrite))
	require.False(t, claims.HasScope("admin"))
}

func TestParseSpaceSeparatedScopes(t *testing.T) {
	c := baseClaims()
	c["scopes"] = "health:read  health:write"
	token := signToken(t, c)

	claims, err := Parse(token, Config{Secret: testSecret, Issuer: "healthbridge"})
	require.NoError(t, err)
	require.True(t, claims.HasScope(ScopeHealthRead))
	require.True(t, claims.HasScope(ScopeHealthWrite))
}

func TestParseRejectsBadTokens(t *testing.T) {
	cfg := Config{Secret: testSecret, Issuer: "healthbridge"}

	_, err := Parse("", cfg)
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = Parse("not.a.jwt", cfg)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Wrong secret.
	token := signToken(t, baseClaims())
	_, err = Parse(token, Config{Secret: "other", Issuer: "healthbridge"})
	require.ErrorIs(t, err, ErrInvalidToken)

	// Wrong issuer.
	_, err = Parse(token, Config{Secret: testSecret, Issuer: "someone-else"})
	require.ErrorIs(t, err, ErrInvalidToken)

	// Expired.
	c := baseClaims()
	c["exp"] = time.Now().Add(-time.Minute).Unix()
	_, err = Parse(signToken(t, c), cfg)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Missing subject.
	c = baseClaims()
	delete(c, "sub")
	_, err = Parse(signToken(t, c), cfg)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddlewareInjectsClaims(t *testing.T) {
	cfg := Config{Secret: testSecret, Issuer: "healthbridge"}
	m := NewMiddleware(cfg, nil)

	var got *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/availability", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, baseClaims()))
	rec := httptest.NewRecorder()
	m.Wrap(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	require.Equal(t, "user-123", got.Subject)
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	m := NewMiddleware(Config{Secret: testSecret, Issuer: "healthbridge"}, nil)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/availability", nil)
	rec := httptest.NewRecorder()
	m.Wrap(next).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareSkipper(t *testing.T) {
	m := NewMiddleware(Config{Secret: testSecret, Issuer: "healthbridge"}, func(r *http.Request) bool {
		return r.URL.Path == "/healthz"
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	m.Wrap(next).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
