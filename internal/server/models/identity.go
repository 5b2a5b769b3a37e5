// Package models defines server-side data models persisted in the database.
package models

import "time"

// Identity is a durable user record. In cognito mode it is provisioned
// lazily on the first successful verification of an unseen subject; in the
// other auth modes identities are expected to be pre-seeded.
type Identity struct {
	// ID is the opaque stable identifier (uuid).
	ID string
	// CognitoSub is the external issuer's subject claim. Empty for
	// identities that never authenticated through the external issuer.
	CognitoSub string
	// Email is the lower-cased email address, if known.
	Email string
	// EmailVerified reflects the issuer's email_verified claim.
	EmailVerified bool
	// Premium marks paid accounts.
	Premium bool

	CreatedAt time.Time
}
