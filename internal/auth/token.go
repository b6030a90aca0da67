package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gradebook/gradebook/internal/shared"
)

// DefaultTokenTTL is the lifetime of an issued token.
const DefaultTokenTTL = 10 * time.Minute

// MinKeyLength is the shortest accepted HS256 signing key, in bytes.
const MinKeyLength = 32

var (
	// ErrMalformedToken is returned when a token cannot be decoded or its signature does not verify.
	ErrMalformedToken = errors.New("auth: malformed token")
	// ErrExpiredToken is returned when the only thing wrong with a token is its age.
	ErrExpiredToken = &shared.Error{Kind: shared.ErrUnauthorized, Message: "JWT expired"}
)

// TokenCodec issues and checks HS256 signed tokens. The key is fixed for the
// lifetime of the codec and is never exposed.
type TokenCodec struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTTL overrides DefaultTokenTTL.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *TokenCodec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewTokenCodec builds a codec around a symmetric signing key.
func NewTokenCodec(key []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("auth: signing key must be at least %d bytes", MinKeyLength)
	}
	c := &TokenCodec{
		key: append([]byte(nil), key...),
		ttl: DefaultTokenTTL,
		now: time.Now,
		// Expiry is checked by Validate so that it can be told apart from forgery.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for subject valid from now until now+TTL.
func (c *TokenCodec) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("auth: token subject required")
	}
	now := c.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ExtractSubject returns the sub claim of a token whose signature verifies.
// Expiry is not considered.
func (c *TokenCodec) ExtractSubject(token string) (string, error) {
	claims, err := c.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Validate reports whether token is a live token for expectedSubject. Forged,
// undecodable or foreign tokens yield false with a nil error. A token that
// is fine except for being past its expiry yields ErrExpiredToken.
// Expiry is compared in whole seconds and a token is still valid at exactly exp.
func (c *TokenCodec) Validate(token, expectedSubject string) (bool, error) {
	claims, err := c.parse(token)
	if err != nil {
		return false, nil
	}
	if claims.Subject != expectedSubject || claims.ExpiresAt == nil {
		return false, nil
	}
	now := c.now()
	if now.Unix() > claims.ExpiresAt.Unix() {
		return false, fmt.Errorf("%w at %s. Current time: %s", ErrExpiredToken,
			claims.ExpiresAt.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}
	return true, nil
}

func (c *TokenCodec) parse(token string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrMalformedToken)
	}
	return &claims, nil
}
