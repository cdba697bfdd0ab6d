package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund-escrow/internal/core/domain"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAuthorizer(t *testing.T) {
	a := NewAuthorizer()
	ctx := context.Background()

	err := a.Authorize(ctx, "alice")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	ctx = WithPrincipal(ctx, "alice")
	require.NoError(t, a.Authorize(ctx, "alice"))
	require.ErrorIs(t, a.Authorize(ctx, "bob"), domain.ErrUnauthorized)
}

func TestVerifierRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v, err := NewVerifier("s3cret", "crowdfund", fixedNow(now))
	require.NoError(t, err)

	token, err := v.Issue("alice", time.Hour)
	require.NoError(t, err)

	addr, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Address("alice"), addr)
}

func TestVerifierRejects(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v, err := NewVerifier("s3cret", "crowdfund", fixedNow(now))
	require.NoError(t, err)
	token, err := v.Issue("alice", time.Minute)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later, err := NewVerifier("s3cret", "crowdfund", fixedNow(now.Add(time.Hour)))
		require.NoError(t, err)
		_, err = later.Verify(token)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
		require.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewVerifier("other", "crowdfund", fixedNow(now))
		require.NoError(t, err)
		_, err = other.Verify(token)
		require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewVerifier("s3cret", "someone-else", fixedNow(now))
		require.NoError(t, err)
		_, err = other.Verify(token)
		require.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "crowdfund",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = v.Verify(unsigned)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := v.Verify(" ")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := NewVerifier("", "crowdfund", nil)
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	now := time.Now()
	v, err := NewVerifier("s3cret", "crowdfund", fixedNow(now))
	require.NoError(t, err)
	token, err := v.Issue("alice", time.Hour)
	require.NoError(t, err)

	var seen domain.Address
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name     string
		insecure bool
		header   map[string]string
		status   int
		want     domain.Address
	}{
		{name: "bearer", header: map[string]string{"Authorization": "Bearer " + token}, status: http.StatusNoContent, want: "alice"},
		{name: "bad bearer", header: map[string]string{"Authorization": "Bearer nope"}, status: http.StatusUnauthorized},
		{name: "anonymous", status: http.StatusNoContent},
		{name: "header ignored when secure", header: map[string]string{PrincipalHeader: "bob"}, status: http.StatusNoContent},
		{name: "header trusted when insecure", insecure: true, header: map[string]string{PrincipalHeader: "bob"}, status: http.StatusNoContent, want: "bob"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			for k, val := range tc.header {
				req.Header.Set(k, val)
			}
			rec := httptest.NewRecorder()
			Middleware(v, tc.insecure)(next).ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.want, seen)
		})
	}
}
