package meals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/internal/ledger"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/logger"
)

// walletEngine is the slice of the ledger the reconciler drives.
type walletEngine interface {
	CreditForSkip(ctx context.Context, input ledger.CreditForSkipInput) (*ledger.OperationResult, error)
	ReverseToAttend(ctx context.Context, input ledger.ReverseToAttendInput) (*ledger.OperationResult, error)
}

// Reconciler translates a student's attendance toggle into the matching
// wallet operation. It owns the date gate; the ledger itself never re-derives
// calendar rules.
type Reconciler struct {
	meals      *Repository
	selections SelectionReader
	engine     walletEngine
	logg       *logger.Logger
	now        func() time.Time
}

// NewReconciler wires the toggle entry point.
func NewReconciler(meals *Repository, selections SelectionReader, engine walletEngine, logg *logger.Logger) (*Reconciler, error) {
	if meals == nil {
		return nil, errors.New("meals repository required")
	}
	if selections == nil {
		return nil, errors.New("selection reader required")
	}
	if engine == nil {
		return nil, errors.New("wallet engine required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &Reconciler{
		meals:      meals,
		selections: selections,
		engine:     engine,
		logg:       logg,
		now:        time.Now,
	}, nil
}

// ToggleInput is one attendance choice from a student.
type ToggleInput struct {
	StudentID uuid.UUID
	MealID    uuid.UUID
	Desired   enums.SelectionStatus
}

// ToggleResult reports the selection state after the toggle. Balance and
// Transaction are set only when a wallet operation actually ran.
type ToggleResult struct {
	Status      enums.SelectionStatus
	Balance     *decimal.Decimal
	Transaction *models.WalletTransaction
}

// Toggle applies the desired status. Same-status toggles are no-ops; a switch
// into skipped earns the meal's credit, a switch from skipped back to
// attending reverses it. Every other combination is an invalid transition.
func (r *Reconciler) Toggle(ctx context.Context, input ToggleInput) (*ToggleResult, error) {
	if input.StudentID == uuid.Nil || input.MealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student id and meal id are required")
	}
	if input.Desired != enums.SelectionStatusAttending && input.Desired != enums.SelectionStatusSkipped {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition,
			fmt.Sprintf("cannot toggle a meal to %q", input.Desired))
	}

	meal, err := r.meals.FindByID(ctx, input.MealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "meal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load meal")
	}
	if !meal.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "meal is not open for selection")
	}
	if beforeToday(meal.Date, r.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "cannot toggle a meal dated in the past")
	}

	current := enums.SelectionStatusPending
	selection, err := r.selections.GetSelection(ctx, input.StudentID, input.MealID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load selection")
	}
	if selection != nil {
		current = selection.Status
	}

	if current == input.Desired {
		return &ToggleResult{Status: current}, nil
	}

	switch input.Desired {
	case enums.SelectionStatusSkipped:
		result, err := r.engine.CreditForSkip(ctx, ledger.CreditForSkipInput{
			StudentID:   input.StudentID,
			MealID:      input.MealID,
			Amount:      meal.SkipCredit,
			Description: fmt.Sprintf("skip credit for %s on %s", meal.Type, meal.Date.Format("2006-01-02")),
		})
		if err != nil {
			return nil, err
		}
		return &ToggleResult{
			Status:      enums.SelectionStatusSkipped,
			Balance:     &result.Balance,
			Transaction: result.Transaction,
		}, nil

	case enums.SelectionStatusAttending:
		if current != enums.SelectionStatusSkipped {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "nothing to reverse for this meal")
		}
		result, err := r.engine.ReverseToAttend(ctx, ledger.ReverseToAttendInput{
			StudentID: input.StudentID,
			MealID:    input.MealID,
		})
		if err != nil {
			return nil, err
		}
		return &ToggleResult{
			Status:      enums.SelectionStatusAttending,
			Balance:     &result.Balance,
			Transaction: result.Transaction,
		}, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "unsupported toggle")
}

func beforeToday(date time.Time, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}
