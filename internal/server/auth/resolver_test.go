package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/jobdeck/jobdeck/internal/common"
	"github.com/jobdeck/jobdeck/internal/server/models"
)

// fakeIdentityRepo is an in-memory IdentityRepository. createErr, when set,
// is returned by the first Create call to simulate a provisioning race.
type fakeIdentityRepo struct {
	byID      map[string]*models.Identity
	bySubject map[string]*models.Identity

	created   []*models.Identity
	createErr error
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{
		byID:      map[string]*models.Identity{},
		bySubject: map[string]*models.Identity{},
	}
}

func (f *fakeIdentityRepo) add(ident *models.Identity) {
	f.byID[ident.ID] = ident
	if ident.CognitoSub != "" {
		f.bySubject[ident.CognitoSub] = ident
	}
}

func (f *fakeIdentityRepo) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	if ident, ok := f.byID[id]; ok {
		return ident, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeIdentityRepo) GetBySubject(ctx context.Context, sub string) (*models.Identity, error) {
	if ident, ok := f.bySubject[sub]; ok {
		return ident, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeIdentityRepo) Create(ctx context.Context, ident *models.Identity) (*models.Identity, error) {
	f.created = append(f.created, ident)
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return nil, err
	}
	f.add(ident)
	return ident, nil
}

func TestResolve_DevPassthrough(t *testing.T) {
	repo := newFakeIdentityRepo()
	repo.add(&models.Identity{ID: "user-1"})
	r := NewResolver(ModeDevPassthrough, repo)

	ident, err := r.Resolve(context.Background(), &ClaimSet{Subject: "user-1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ident.ID != "user-1" {
		t.Errorf("id = %q, want user-1", ident.ID)
	}

	_, err = r.Resolve(context.Background(), &ClaimSet{Subject: "nobody"})
	if !errors.Is(err, common.ErrUnknownIdentity) {
		t.Errorf("expected ErrUnknownIdentity, got %v", err)
	}
}

func TestResolve_LocalSymmetric(t *testing.T) {
	repo := newFakeIdentityRepo()
	repo.add(&models.Identity{ID: "user-1", CognitoSub: "sub-1"})
	r := NewResolver(ModeLocalSymmetric, repo)

	ident, err := r.Resolve(context.Background(), &ClaimSet{Subject: "sub-1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ident.ID != "user-1" {
		t.Errorf("id = %q, want user-1", ident.ID)
	}

	// Local mode never provisions.
	_, err = r.Resolve(context.Background(), &ClaimSet{Subject: "sub-unseen"})
	if !errors.Is(err, common.ErrIdentityNotFound) {
		t.Errorf("expected ErrIdentityNotFound, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Errorf("local mode must not create identities, created %d", len(repo.created))
	}
}

func TestResolve_CognitoProvisionsFirstSight(t *testing.T) {
	repo := newFakeIdentityRepo()
	r := NewResolver(ModeCognito, repo)

	claims := &ClaimSet{Subject: "sub-new", Email: "new@example.com", EmailVerified: true}
	ident, err := r.Resolve(context.Background(), claims)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ident.CognitoSub != "sub-new" {
		t.Errorf("cognito sub = %q, want sub-new", ident.CognitoSub)
	}
	if ident.Email != "new@example.com" || !ident.EmailVerified {
		t.Errorf("claims not carried into provisioned identity: %+v", ident)
	}
	if ident.ID == "" {
		t.Errorf("provisioned identity must get a generated id")
	}

	// Second sight resolves the same row without another create.
	again, err := r.Resolve(context.Background(), claims)
	if err != nil {
		t.Fatalf("Resolve again: %v", err)
	}
	if again.ID != ident.ID {
		t.Errorf("expected the same identity, got %q and %q", ident.ID, again.ID)
	}
	if len(repo.created) != 1 {
		t.Errorf("expected exactly 1 create, got %d", len(repo.created))
	}
}

func TestResolve_CognitoProvisioningRace(t *testing.T) {
	repo := newFakeIdentityRepo()
	// A concurrent request wins the insert; ours hits the uniqueness
	// constraint and must fall back to reading the winner's row.
	winner := &models.Identity{ID: "winner-id", CognitoSub: "sub-raced"}
	repo.createErr = common.ErrorAlreadyExists
	repo.add(winner)

	r := NewResolver(ModeCognito, newRacedRepo(repo, winner))

	ident, err := r.Resolve(context.Background(), &ClaimSet{Subject: "sub-raced"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ident.ID != "winner-id" {
		t.Errorf("expected the winner's identity, got %q", ident.ID)
	}
}

// racedRepo reports the subject as missing on the first lookup so the
// resolver attempts to provision, then behaves like the wrapped repo.
type racedRepo struct {
	*fakeIdentityRepo
	winner     *models.Identity
	firstFetch bool
}

func newRacedRepo(repo *fakeIdentityRepo, winner *models.Identity) *racedRepo {
	return &racedRepo{fakeIdentityRepo: repo, winner: winner, firstFetch: true}
}

func (r *racedRepo) GetBySubject(ctx context.Context, sub string) (*models.Identity, error) {
	if r.firstFetch {
		r.firstFetch = false
		return nil, common.ErrorNotFound
	}
	return r.fakeIdentityRepo.GetBySubject(ctx, sub)
}
