package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token-use values the external issuer stamps into its tokens.
const (
	TokenUseID     = "id"
	TokenUseAccess = "access"
)

// ClaimSet is the decoded, policy-checked contents of a bearer token,
// normalized across verification modes. It is transient, produced per
// request, and never persisted.
type ClaimSet struct {
	// Subject identifies the token holder. In cognito mode this is the
	// issuer's sub; in local mode the HS256 sub claim; in dev mode the
	// raw token value.
	Subject string

	// Email is lower-cased, or empty when the token carries none.
	Email string

	// EmailVerified is only meaningful for cognito id tokens.
	EmailVerified bool

	// TokenUse is "id", "access", or empty for the non-cognito modes.
	TokenUse string

	// ClientID is the access token's client_id claim, when present.
	ClientID string

	// Audience is the token's aud claim, when present.
	Audience []string

	// ExpiresAt is the token expiry, when present.
	ExpiresAt time.Time
}

// issuerClaims is the raw claim layout of tokens minted by the external
// issuer. Only the verifier inspects it; downstream code sees ClaimSet.
type issuerClaims struct {
	jwt.RegisteredClaims

	TokenUse      string `json:"token_use,omitempty"`
	ClientID      string `json:"client_id,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}
