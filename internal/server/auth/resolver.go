package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jobdeck/jobdeck/internal/common"
	"github.com/jobdeck/jobdeck/internal/server/models"
)

// IdentityRepository is the persistence surface the resolver needs.
type IdentityRepository interface {
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	GetBySubject(ctx context.Context, sub string) (*models.Identity, error)
	Create(ctx context.Context, ident *models.Identity) (*models.Identity, error)
}

// Resolver maps a verified claim set to a durable identity. Cognito mode is
// the only path that mutates identity state: an unseen subject is
// provisioned lazily. The other modes require pre-seeded identities.
type Resolver struct {
	mode Mode
	repo IdentityRepository
}

func NewResolver(mode Mode, repo IdentityRepository) *Resolver {
	return &Resolver{mode: mode, repo: repo}
}

// Resolve returns the identity behind claims.
func (r *Resolver) Resolve(ctx context.Context, claims *ClaimSet) (*models.Identity, error) {
	switch r.mode {
	case ModeDevPassthrough:
		ident, err := r.repo.GetByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrUnknownIdentity
			}
			return nil, err
		}
		return ident, nil

	case ModeLocalSymmetric:
		ident, err := r.repo.GetBySubject(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrIdentityNotFound
			}
			return nil, err
		}
		return ident, nil

	case ModeCognito:
		return r.resolveOrProvision(ctx, claims)
	}
	return nil, fmt.Errorf("%w: unknown auth mode %v", common.ErrConfiguration, r.mode)
}

func (r *Resolver) resolveOrProvision(ctx context.Context, claims *ClaimSet) (*models.Identity, error) {
	ident, err := r.repo.GetBySubject(ctx, claims.Subject)
	if err == nil {
		return ident, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	created, err := r.repo.Create(ctx, &models.Identity{
		ID:            uuid.NewString(),
		CognitoSub:    claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	})
	if err != nil {
		// Concurrent first-sight requests can race on the subject's
		// uniqueness constraint; the loser re-fetches the winner's row.
		if errors.Is(err, common.ErrorAlreadyExists) {
			return r.repo.GetBySubject(ctx, claims.Subject)
		}
		return nil, err
	}
	return created, nil
}
