package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jobdeck/jobdeck/internal/common"
)

// Verifier checks bearer tokens and produces a normalized ClaimSet.
// The verification strategy is fixed by the Mode chosen at startup.
type Verifier struct {
	mode     Mode
	secret   []byte
	issuer   string
	clientID string
	keys     *KeySetCache
}

// VerifierParams carries the mode-dependent inputs for NewVerifier.
// Secret is required in local-symmetric mode; Issuer, ClientID, and Keys
// are required in cognito mode.
type VerifierParams struct {
	Secret   []byte
	Issuer   string
	ClientID string
	Keys     *KeySetCache
}

func NewVerifier(mode Mode, p VerifierParams) (*Verifier, error) {
	switch mode {
	case ModeLocalSymmetric:
		if len(p.Secret) == 0 {
			return nil, fmt.Errorf("%w: local auth mode requires a secret key", common.ErrConfiguration)
		}
	case ModeCognito:
		if p.Issuer == "" || p.ClientID == "" || p.Keys == nil {
			return nil, fmt.Errorf("%w: cognito auth mode requires issuer, client id and key set", common.ErrConfiguration)
		}
	}
	return &Verifier{
		mode:     mode,
		secret:   p.Secret,
		issuer:   p.Issuer,
		clientID: p.ClientID,
		keys:     p.Keys,
	}, nil
}

// Verify checks rawToken according to the configured mode and returns the
// normalized claim set. Policy rejections (unverified email, wrong client,
// unsupported token use) are distinct sentinels and are never retried;
// crypto and format failures in cognito mode are retried exactly once
// against a refreshed key set to absorb issuer key rotation.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*ClaimSet, error) {
	switch v.mode {
	case ModeDevPassthrough:
		// The raw token is the identity's primary key; existence is the
		// resolver's concern.
		if rawToken == "" {
			return nil, fmt.Errorf("%w: empty token", common.ErrInvalidToken)
		}
		return &ClaimSet{Subject: rawToken}, nil
	case ModeLocalSymmetric:
		return v.verifyLocal(rawToken)
	case ModeCognito:
		return v.verifyCognito(ctx, rawToken)
	}
	return nil, fmt.Errorf("%w: unknown auth mode %v", common.ErrConfiguration, v.mode)
}

func (v *Verifier) verifyLocal(rawToken string) (*ClaimSet, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	_, err := parser.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: no subject claim", common.ErrInvalidToken)
	}

	cs := &ClaimSet{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		cs.ExpiresAt = claims.ExpiresAt.Time
	}
	return cs, nil
}

func (v *Verifier) verifyCognito(ctx context.Context, rawToken string) (*ClaimSet, error) {
	// Peek at the unverified claims to decide which checks apply. A parse
	// failure here leaves tokenUse empty, which routes to the strict
	// id-token fallback below (and fails there if truly malformed).
	tokenUse := peekTokenUse(rawToken)

	cs, err := v.verifyIssuerToken(ctx, rawToken, tokenUse)
	if err != nil && errors.Is(err, common.ErrInvalidToken) {
		// The issuer rotates signing keys without notice; a stale cached
		// key set is the expected steady-state failure, so refresh the
		// set once and retry the same branch.
		v.keys.Invalidate()
		cs, err = v.verifyIssuerToken(ctx, rawToken, tokenUse)
	}
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// verifyIssuerToken runs one verification attempt against the current key
// set, branching on the token_use claim.
func (v *Verifier) verifyIssuerToken(ctx context.Context, rawToken, tokenUse string) (*ClaimSet, error) {
	switch tokenUse {
	case TokenUseID:
		claims, err := v.parseSigned(ctx, rawToken, true)
		if err != nil {
			return nil, err
		}
		if !claims.EmailVerified {
			return nil, common.ErrEmailNotVerified
		}
		return normalize(claims), nil

	case TokenUseAccess:
		// Access tokens carry no audience in this issuer's convention;
		// the client_id claim is compared manually instead.
		claims, err := v.parseSigned(ctx, rawToken, false)
		if err != nil {
			return nil, err
		}
		if claims.ClientID != v.clientID {
			return nil, common.ErrInvalidClient
		}
		return normalize(claims), nil

	default:
		// Unknown or missing token_use: attempt the strict id-token path
		// and require the verified claims to self-report token_use == id.
		claims, err := v.parseSigned(ctx, rawToken, true)
		if err != nil {
			return nil, err
		}
		if claims.TokenUse != TokenUseID {
			return nil, common.ErrUnsupportedTokenUse
		}
		if !claims.EmailVerified {
			return nil, common.ErrEmailNotVerified
		}
		return normalize(claims), nil
	}
}

// parseSigned verifies the signature and registered claims of rawToken
// against the current key set. withAudience additionally requires the aud
// claim to equal the configured client id.
func (v *Verifier) parseSigned(ctx context.Context, rawToken string, withAudience bool) (*issuerClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
	}
	if withAudience {
		opts = append(opts, jwt.WithAudience(v.clientID))
	}

	claims := &issuerClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(rawToken, claims, v.keyfunc(ctx))
	if err != nil {
		if errors.Is(err, common.ErrConfiguration) {
			// Key-set fetch failure, not a bad token.
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, nil
}

// keyfunc resolves the verification key for a token by its kid header.
func (v *Verifier) keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid header")
		}
		keys, err := v.keys.Get(ctx)
		if err != nil {
			return nil, err
		}
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("key %q not in current key set", kid)
		}
		return key, nil
	}
}

// peekTokenUse reads the token_use claim without verifying the signature.
func peekTokenUse(rawToken string) string {
	claims := &issuerClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return ""
	}
	return claims.TokenUse
}

// normalize converts verified issuer claims to the transport-independent
// ClaimSet handed to downstream code.
func normalize(c *issuerClaims) *ClaimSet {
	cs := &ClaimSet{
		Subject:       c.Subject,
		Email:         strings.ToLower(c.Email),
		EmailVerified: c.EmailVerified,
		TokenUse:      c.TokenUse,
		ClientID:      c.ClientID,
		Audience:      c.Audience,
	}
	if c.ExpiresAt != nil {
		cs.ExpiresAt = c.ExpiresAt.Time
	}
	return cs
}
