package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobdeck/jobdeck/internal/server/models"
	"github.com/jobdeck/jobdeck/internal/server/repositories/repomanager"
)

// ErrValidation wraps input errors the HTTP layer maps to 400.
var ErrValidation = errors.New("validation failed")

// ApplicationService owns the job-application CRUD. All operations are
// scoped to the calling identity.
type ApplicationService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewApplicationService(db *sql.DB, repos repomanager.RepositoryManager) *ApplicationService {
	return &ApplicationService{db: db, repos: repos}
}

// ApplicationInput carries the writable fields of an application.
type ApplicationInput struct {
	Company        string
	JobTitle       string
	JobDescription string
	Status         string
	ResumeID       string
	CVID           string
	AppliedDate    *time.Time
}

func (s *ApplicationService) Create(ctx context.Context, ident *models.Identity, in ApplicationInput) (*models.Application, error) {
	company := strings.TrimSpace(in.Company)
	if company == "" {
		return nil, fmt.Errorf("%w: company is required", ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = models.StatusApplied
	}
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	app := &models.Application{
		ID:             uuid.NewString(),
		UserID:         ident.ID,
		Company:        company,
		JobTitle:       strings.TrimSpace(in.JobTitle),
		JobDescription: in.JobDescription,
		Status:         status,
		ResumeID:       in.ResumeID,
		CVID:           in.CVID,
		AppliedDate:    in.AppliedDate,
	}
	return s.repos.Applications(s.db).Create(ctx, app)
}

func (s *ApplicationService) List(ctx context.Context, ident *models.Identity) ([]*models.Application, error) {
	return s.repos.Applications(s.db).ListByUser(ctx, ident.ID)
}

func (s *ApplicationService) Get(ctx context.Context, ident *models.Identity, id string) (*models.Application, error) {
	return s.repos.Applications(s.db).GetByID(ctx, id, ident.ID)
}

// ApplicationPatch carries partial updates; nil fields are left unchanged.
type ApplicationPatch struct {
	Company        *string
	JobTitle       *string
	JobDescription *string
	Status         *string
	ResumeID       *string
	CVID           *string
	AppliedDate    *time.Time
}

func (s *ApplicationService) Update(ctx context.Context, ident *models.Identity, id string, patch ApplicationPatch) (*models.Application, error) {
	app, err := s.repos.Applications(s.db).GetByID(ctx, id, ident.ID)
	if err != nil {
		return nil, err
	}

	if patch.Company != nil {
		company := strings.TrimSpace(*patch.Company)
		if company == "" {
			return nil, fmt.Errorf("%w: company is required", ErrValidation)
		}
		app.Company = company
	}
	if patch.JobTitle != nil {
		app.JobTitle = strings.TrimSpace(*patch.JobTitle)
	}
	if patch.JobDescription != nil {
		app.JobDescription = *patch.JobDescription
	}
	if patch.Status != nil {
		if !models.ValidStatus(*patch.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *patch.Status)
		}
		app.Status = *patch.Status
	}
	if patch.ResumeID != nil {
		app.ResumeID = *patch.ResumeID
	}
	if patch.CVID != nil {
		app.CVID = *patch.CVID
	}
	if patch.AppliedDate != nil {
		app.AppliedDate = patch.AppliedDate
	}

	if err := s.repos.Applications(s.db).Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) Delete(ctx context.Context, ident *models.Identity, id string) error {
	return s.repos.Applications(s.db).Delete(ctx, id, ident.ID)
}
