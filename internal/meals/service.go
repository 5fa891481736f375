package meals

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/pkg/db"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/logger"
)

// SelectionReader is the read surface the catalog needs from the wallet's
// selection store.
type SelectionReader interface {
	GetSelection(ctx context.Context, studentID, mealID uuid.UUID) (*models.MealSelection, error)
	ListSelectionsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.MealSelection, error)
}

// Service manages the published meal catalog.
type Service struct {
	repo       *Repository
	selections SelectionReader
	logg       *logger.Logger
	now        func() time.Time
}

// NewService wires the meal catalog service.
func NewService(repo *Repository, selections SelectionReader, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("meals repository required")
	}
	if selections == nil {
		return nil, errors.New("selection reader required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &Service{
		repo:       repo,
		selections: selections,
		logg:       logg,
		now:        time.Now,
	}, nil
}

// CreateMealInput captures an admin publishing one catalog entry.
type CreateMealInput struct {
	Date       time.Time
	Type       enums.MealType
	Menu       string
	SkipCredit decimal.Decimal
}

// MealWithSelection pairs a catalog entry with the student's current choice.
type MealWithSelection struct {
	Meal   models.Meal
	Status enums.SelectionStatus
}

// CreateMeal publishes a catalog entry. One entry per (date, sitting).
func (s *Service) CreateMeal(ctx context.Context, input CreateMealInput) (*models.Meal, error) {
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "meal date is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid meal type")
	}
	if strings.TrimSpace(input.Menu) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu is required")
	}
	if !input.SkipCredit.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "skip credit must be positive")
	}

	meal := &models.Meal{
		ID:         uuid.New(),
		Date:       input.Date,
		Type:       input.Type,
		Menu:       strings.TrimSpace(input.Menu),
		SkipCredit: input.SkipCredit,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, meal); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a meal already exists for this date and sitting")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create meal")
	}
	return meal, nil
}

// GetMeal loads one catalog entry.
func (s *Service) GetMeal(ctx context.Context, id uuid.UUID) (*models.Meal, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "meal id is required")
	}
	meal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "meal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load meal")
	}
	return meal, nil
}

// ListMeals returns active meals between from and to inclusive.
func (s *Service) ListMeals(ctx context.Context, from, to time.Time) ([]models.Meal, error) {
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is inverted")
	}
	meals, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list meals")
	}
	return meals, nil
}

// ListForStudent returns the catalog window with the student's current
// selection status per meal. Meals with no recorded choice are pending.
func (s *Service) ListForStudent(ctx context.Context, studentID uuid.UUID, from, to time.Time) ([]MealWithSelection, error) {
	if studentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student id is required")
	}

	meals, err := s.ListMeals(ctx, from, to)
	if err != nil {
		return nil, err
	}

	selections, err := s.selections.ListSelectionsByStudent(ctx, studentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list selections")
	}
	byMeal := make(map[uuid.UUID]enums.SelectionStatus, len(selections))
	for _, selection := range selections {
		byMeal[selection.MealID] = selection.Status
	}

	out := make([]MealWithSelection, 0, len(meals))
	for _, meal := range meals {
		status, ok := byMeal[meal.ID]
		if !ok {
			status = enums.SelectionStatusPending
		}
		out = append(out, MealWithSelection{Meal: meal, Status: status})
	}
	return out, nil
}

// ListSelections returns every recorded choice for the student.
func (s *Service) ListSelections(ctx context.Context, studentID uuid.UUID) ([]models.MealSelection, error) {
	if studentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student id is required")
	}
	selections, err := s.selections.ListSelectionsByStudent(ctx, studentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list selections")
	}
	return selections, nil
}

// UpdateMeal edits the menu and skip credit of an existing entry.
func (s *Service) UpdateMeal(ctx context.Context, id uuid.UUID, menu string, skipCredit decimal.Decimal) (*models.Meal, error) {
	if strings.TrimSpace(menu) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu is required")
	}
	if !skipCredit.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "skip credit must be positive")
	}
	if _, err := s.GetMeal(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateMenu(ctx, id, strings.TrimSpace(menu), skipCredit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update meal")
	}
	return s.GetMeal(ctx, id)
}

// DeactivateMeal unpublishes a meal without touching existing selections.
func (s *Service) DeactivateMeal(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetMeal(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate meal")
	}
	return nil
}
