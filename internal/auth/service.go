package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/gradebook/gradebook/internal/shared"
)

// ErrBadCredentials is returned by Login for any unknown email or wrong password.
var ErrBadCredentials = &shared.Error{Kind: shared.ErrInvalidCredentials, Message: "Invalid email or password"}

// PrincipalResolver resolves a login subject.
type PrincipalResolver interface {
	Resolve(ctx context.Context, subject string) (Principal, error)
}

// TokenIssuer signs tokens for a subject.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// Service wraps authentication business rules.
type Service struct {
	resolver PrincipalResolver
	tokens   TokenIssuer
}

// NewService constructs a new Service.
func NewService(resolver PrincipalResolver, tokens TokenIssuer) *Service {
	return &Service{resolver: resolver, tokens: tokens}
}

// Login checks email/password credentials and issues a token for the
// resolved principal.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	principal, err := s.resolver.Resolve(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUnknownPrincipal) {
			return LoginResult{}, ErrBadCredentials
		}
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(principal.CredentialHash), []byte(password)); err != nil {
		return LoginResult{}, ErrBadCredentials
	}
	token, err := s.tokens.Issue(principal.Subject)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Email: principal.Subject, Token: token}, nil
}

// EnsureAvailable fails when email already names a staff member or a learner.
func (s *Service) EnsureAvailable(ctx context.Context, email string) error {
	_, err := s.resolver.Resolve(ctx, email)
	switch {
	case err == nil:
		return shared.BadRequestf("Email '%s' already exists", email)
	case errors.Is(err, ErrUnknownPrincipal):
		return nil
	default:
		return fmt.Errorf("auth: check email: %w", err)
	}
}

// HashPassword hashes a plain text password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}
