// Package auth implements the identity subsystem: bearer-token verification
// across three operating modes, the rotating key-set cache for the external
// issuer, and resolution of verified claims to durable identities.
package auth

import (
	"fmt"

	"github.com/jobdeck/jobdeck/internal/common"
)

// Mode selects how bearer tokens are verified. It is decided once at
// startup from configuration and passed explicitly; request handling never
// re-reads the mode selector.
type Mode int

const (
	// ModeDevPassthrough treats the token's literal value as an identity's
	// primary key. No cryptographic check. Local development only.
	ModeDevPassthrough Mode = iota

	// ModeLocalSymmetric verifies HS256 tokens signed with a process-held
	// secret. Identities must be pre-seeded.
	ModeLocalSymmetric

	// ModeCognito verifies RS256 tokens against the issuer's published,
	// rotating key set.
	ModeCognito
)

// Mode selector strings recognized in configuration.
const (
	modeNameDev     = "dev-noverify"
	modeNameLocal   = "local"
	modeNameCognito = "cognito"
)

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case modeNameDev:
		return ModeDevPassthrough, nil
	case modeNameLocal:
		return ModeLocalSymmetric, nil
	case modeNameCognito:
		return ModeCognito, nil
	}
	return 0, fmt.Errorf("%w: unknown auth mode %q", common.ErrConfiguration, s)
}

func (m Mode) String() string {
	switch m {
	case ModeDevPassthrough:
		return modeNameDev
	case ModeLocalSymmetric:
		return modeNameLocal
	case ModeCognito:
		return modeNameCognito
	}
	return fmt.Sprintf("mode(%d)", int(m))
}
