package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/gradebook/gradebook/internal/platform/httpx"
	"github.com/gradebook/gradebook/internal/shared"
)

const bearerPrefix = "Bearer "

// Authentication outcomes reported to the OutcomeRecorder.
const (
	OutcomeAnonymous     = "anonymous"
	OutcomeMalformed     = "malformed"
	OutcomeInvalid       = "invalid"
	OutcomeExpired       = "expired"
	OutcomeStale         = "stale"
	OutcomeAuthenticated = "authenticated"
)

// TokenVerifier is the part of TokenCodec used per request.
type TokenVerifier interface {
	ExtractSubject(token string) (string, error)
	Validate(token, expectedSubject string) (bool, error)
}

// CredentialResolver resolves the subject carried by a token.
type CredentialResolver interface {
	ResolveCredential(ctx context.Context, subject string) (Principal, error)
}

// OutcomeRecorder counts authentication outcomes.
type OutcomeRecorder interface {
	RecordAuthOutcome(outcome string)
}

// Authenticator turns a bearer token into a request session.
type Authenticator struct {
	tokens   TokenVerifier
	resolver CredentialResolver
	logger   *slog.Logger
	recorder OutcomeRecorder
}

// NewAuthenticator constructs an Authenticator. recorder may be nil.
func NewAuthenticator(tokens TokenVerifier, resolver CredentialResolver, logger *slog.Logger, recorder OutcomeRecorder) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{tokens: tokens, resolver: resolver, logger: logger, recorder: recorder}
}

// Middleware runs one authentication pass per request. Requests without a
// usable token continue anonymously; route gates decide whether that is
// enough. Expired tokens and tokens for vanished principals stop the
// request with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			a.record(OutcomeAnonymous)
			next.ServeHTTP(w, r)
			return
		}
		token := header[len(bearerPrefix):]

		subject, err := a.tokens.ExtractSubject(token)
		if err != nil {
			a.record(OutcomeMalformed)
			a.logger.Debug("bearer token rejected", slog.String("request_id", middleware.GetReqID(ctx)), slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}

		if shared.SessionFromContext(ctx) != nil {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := a.resolver.ResolveCredential(ctx, subject)
		if err != nil {
			if errors.Is(err, ErrStaleCredential) {
				a.record(OutcomeStale)
				a.logger.Info("token subject no longer exists", slog.String("subject", subject), slog.String("request_id", middleware.GetReqID(ctx)))
				httpx.Error(w, http.StatusUnauthorized, ErrStaleCredential.Message)
				return
			}
			a.logger.Error("resolve token subject", slog.String("subject", subject), slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		ok, err := a.tokens.Validate(token, principal.Subject)
		if errors.Is(err, ErrExpiredToken) {
			a.record(OutcomeExpired)
			httpx.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		if !ok {
			a.record(OutcomeInvalid)
			next.ServeHTTP(w, r)
			return
		}

		a.record(OutcomeAuthenticated)
		next.ServeHTTP(w, r.WithContext(shared.ContextWithSession(ctx, principal.Session())))
	})
}

func (a *Authenticator) record(outcome string) {
	if a.recorder != nil {
		a.recorder.RecordAuthOutcome(outcome)
	}
}
