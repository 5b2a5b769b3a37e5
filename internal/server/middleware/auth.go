// Package middleware provides the HTTP authentication middleware that
// bridges bearer tokens to resolved identities.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jobdeck/jobdeck/internal/common"
	"github.com/jobdeck/jobdeck/internal/logging"
	"github.com/jobdeck/jobdeck/internal/server/auth"
	"github.com/jobdeck/jobdeck/internal/server/models"
)

// TokenVerifier checks a bearer token and returns its claim set.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*auth.ClaimSet, error)
}

// IdentityResolver maps a claim set to a durable identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, claims *auth.ClaimSet) (*models.Identity, error)
}

// Auth verifies the Authorization header on every request and injects the
// resolved identity into the request context. Requests without a valid,
// resolvable bearer token are rejected before reaching the handler.
type Auth struct {
	verifier TokenVerifier
	resolver IdentityResolver
	logger   logging.Logger
}

func NewAuth(verifier TokenVerifier, resolver IdentityResolver, logger logging.Logger) *Auth {
	return &Auth{verifier: verifier, resolver: resolver, logger: logger}
}

// Handler is the chi-compatible middleware function.
func (a *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "missing bearer token")
			return
		}

		ctx := r.Context()

		claims, err := a.verifier.Verify(ctx, token)
		if err != nil {
			a.reject(w, r, err)
			return
		}

		ident, err := a.resolver.Resolve(ctx, claims)
		if err != nil {
			a.reject(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(ctx, ident)))
	})
}

// reject maps verification and resolution errors to HTTP statuses.
func (a *Auth) reject(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrEmailNotVerified):
		unauthorized(w, "email not verified")
	case errors.Is(err, common.ErrInvalidClient):
		unauthorized(w, "token issued for another client")
	case errors.Is(err, common.ErrUnsupportedTokenUse):
		unauthorized(w, "unsupported token use")
	case errors.Is(err, common.ErrInvalidToken):
		unauthorized(w, "invalid token")
	case errors.Is(err, common.ErrUnknownIdentity),
		errors.Is(err, common.ErrIdentityNotFound):
		unauthorized(w, "unknown identity")
	default:
		a.logger.Error(r.Context(), "authentication failed", "error", err.Error())
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
