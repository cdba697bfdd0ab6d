package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"crowdfund-escrow/internal/core/domain"
)

const signingMethod = "HS256"

// Verifier issues and validates HS256 bearer tokens whose subject is the
// caller's ledger address.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier returns a verifier for the shared secret. The issuer is
// written into issued tokens and required on verified ones.
func NewVerifier(secret, issuer string, now func() time.Time) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth secret is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, now: now}, nil
}

// Issue signs a token for subject that expires after ttl.
func (v *Verifier) Issue(subject domain.Address, ttl time.Duration) (string, error) {
	if subject.IsZero() {
		return "", errors.New("subject is required")
	}
	now := v.now()
	claims := jwt.RegisteredClaims{
		Issuer:    v.issuer,
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature, issuer and lifetime and returns the
// subject address.
func (v *Verifier) Verify(token string) (domain.Address, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.New(domain.CodeUnauthorized, "token is required")
	}

	var claims jwt.RegisteredClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", mapJWTError(err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", domain.New(domain.CodeUnauthorized, "token subject is required")
	}
	return domain.Address(claims.Subject), nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.Wrap(domain.CodeUnauthorized, "token is expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.Wrap(domain.CodeUnauthorized, "token signature is invalid", err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return domain.Wrap(domain.CodeUnauthorized, "token issuer mismatch", err)
	default:
		return domain.Wrap(domain.CodeUnauthorized, "token is invalid", err)
	}
}
