package complaints

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/logger"
)

const maxDescriptionLength = 2000

// FileComplaintInput is the payload students submit.
type FileComplaintInput struct {
	UserID      uuid.UUID
	Category    enums.ComplaintCategory
	Description string
}

// Service handles complaint intake and admin triage.
type Service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService wires the complaints service.
func NewService(repo *Repository, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("complaints repository required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &Service{repo: repo, logg: logg}, nil
}

// File records a new complaint in the open state.
func (s *Service) File(ctx context.Context, input FileComplaintInput) (*models.Complaint, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid complaint category")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if len(description) > maxDescriptionLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is too long")
	}

	complaint := &models.Complaint{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Category:    input.Category,
		Description: description,
		Status:      enums.ComplaintStatusOpen,
	}
	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create complaint")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"complaint_id": complaint.ID.String(),
		"category":     string(complaint.Category),
	}), "complaint filed")
	return complaint, nil
}

// ListOwn returns the caller's complaints, newest first.
func (s *Service) ListOwn(ctx context.Context, userID uuid.UUID) ([]models.Complaint, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	complaints, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list complaints")
	}
	return complaints, nil
}

// ListAll returns every complaint for admin triage, optionally by status.
func (s *Service) ListAll(ctx context.Context, status *enums.ComplaintStatus) ([]models.Complaint, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid complaint status")
	}
	complaints, err := s.repo.ListAll(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list complaints")
	}
	return complaints, nil
}

// UpdateStatus moves a complaint between triage states.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ComplaintStatus) (*models.Complaint, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid complaint status")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update complaint status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "complaint not found")
	}

	complaint, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "complaint not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload complaint")
	}
	return complaint, nil
}
