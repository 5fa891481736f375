package meals

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/internal/ledger"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/logger"
)

// fakeEngine records the wallet calls the reconciler makes.
type fakeEngine struct {
	creditCalls  []ledger.CreditForSkipInput
	reverseCalls []ledger.ReverseToAttendInput
	balance      decimal.Decimal
}

func (f *fakeEngine) CreditForSkip(ctx context.Context, input ledger.CreditForSkipInput) (*ledger.OperationResult, error) {
	f.creditCalls = append(f.creditCalls, input)
	f.balance = f.balance.Add(input.Amount)
	return &ledger.OperationResult{
		Balance: f.balance,
		Transaction: &models.WalletTransaction{
			ID:     uuid.New(),
			Type:   enums.TransactionTypeMealSkipCredit,
			Amount: input.Amount,
			Status: enums.TransactionStatusCompleted,
		},
	}, nil
}

func (f *fakeEngine) ReverseToAttend(ctx context.Context, input ledger.ReverseToAttendInput) (*ledger.OperationResult, error) {
	f.reverseCalls = append(f.reverseCalls, input)
	return &ledger.OperationResult{
		Balance: f.balance,
		Transaction: &models.WalletTransaction{
			ID:     uuid.New(),
			Type:   enums.TransactionTypeMealAttendDebit,
			Status: enums.TransactionStatusCompleted,
		},
	}, nil
}

func newTestReconciler(t *testing.T, db *gorm.DB, selections SelectionReader, engine walletEngine, now time.Time) *Reconciler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "reconciler-test", Output: io.Discard})
	reconciler, err := NewReconciler(NewRepository(db), selections, engine, logg)
	require.NoError(t, err)
	reconciler.now = func() time.Time { return now }
	return reconciler
}

func seedMeal(t *testing.T, db *gorm.DB, date time.Time, credit decimal.Decimal, active bool) *models.Meal {
	t.Helper()

	meal := &models.Meal{
		ID:         uuid.New(),
		Date:       date,
		Type:       enums.MealTypeLunch,
		Menu:       "test menu",
		SkipCredit: credit,
		IsActive:   active,
	}
	require.NoError(t, db.Create(meal).Error)
	if !active {
		// gorm skips zero-value fields with a default tag on Create, so the
		// column must be forced to false after insert.
		require.NoError(t, db.Model(meal).Update("is_active", false).Error)
	}
	return meal
}

func TestToggleSkipCreditsTheMealAmount(t *testing.T) {
	db := setupMealsTestDB(t)
	engine := &fakeEngine{}
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	reconciler := newTestReconciler(t, db, newFakeSelections(), engine, now)

	meal := seedMeal(t, db, now.AddDate(0, 0, 1), decimal.RequireFromString("45.00"), true)
	studentID := uuid.New()

	result, err := reconciler.Toggle(context.Background(), ToggleInput{
		StudentID: studentID,
		MealID:    meal.ID,
		Desired:   enums.SelectionStatusSkipped,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.SelectionStatusSkipped, result.Status)
	require.NotNil(t, result.Balance)
	assert.True(t, result.Balance.Equal(decimal.RequireFromString("45.00")))

	require.Len(t, engine.creditCalls, 1)
	assert.Equal(t, studentID, engine.creditCalls[0].StudentID)
	assert.True(t, engine.creditCalls[0].Amount.Equal(meal.SkipCredit))
}

func TestToggleBackToAttendingReverses(t *testing.T) {
	db := setupMealsTestDB(t)
	engine := &fakeEngine{}
	selections := newFakeSelections()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	reconciler := newTestReconciler(t, db, selections, engine, now)

	meal := seedMeal(t, db, now, decimal.NewFromInt(40), true)
	studentID := uuid.New()
	txID := uuid.New()
	selections.put(&models.MealSelection{
		ID:                  uuid.New(),
		StudentID:           studentID,
		MealID:              meal.ID,
		Status:              enums.SelectionStatusSkipped,
		LinkedTransactionID: &txID,
	})

	result, err := reconciler.Toggle(context.Background(), ToggleInput{
		StudentID: studentID,
		MealID:    meal.ID,
		Desired:   enums.SelectionStatusAttending,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.SelectionStatusAttending, result.Status)
	require.Len(t, engine.reverseCalls, 1)
	assert.Empty(t, engine.creditCalls)
}

func TestToggleSameStatusIsNoOp(t *testing.T) {
	db := setupMealsTestDB(t)
	engine := &fakeEngine{}
	selections := newFakeSelections()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	reconciler := newTestReconciler(t, db, selections, engine, now)

	meal := seedMeal(t, db, now, decimal.NewFromInt(40), true)
	studentID := uuid.New()
	txID := uuid.New()
	selections.put(&models.MealSelection{
		ID:                  uuid.New(),
		StudentID:           studentID,
		MealID:              meal.ID,
		Status:              enums.SelectionStatusSkipped,
		LinkedTransactionID: &txID,
	})

	result, err := reconciler.Toggle(context.Background(), ToggleInput{
		StudentID: studentID,
		MealID:    meal.ID,
		Desired:   enums.SelectionStatusSkipped,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.SelectionStatusSkipped, result.Status)
	assert.Nil(t, result.Balance)
	assert.Empty(t, engine.creditCalls)
	assert.Empty(t, engine.reverseCalls)
}

func TestToggleInvalidTransitions(t *testing.T) {
	db := setupMealsTestDB(t)
	engine := &fakeEngine{}
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	reconciler := newTestReconciler(t, db, newFakeSelections(), engine, now)
	ctx := context.Background()

	meal := seedMeal(t, db, now, decimal.NewFromInt(40), true)
	studentID := uuid.New()

	// Attending with no prior skip has nothing to reverse.
	_, err := reconciler.Toggle(ctx, ToggleInput{
		StudentID: studentID,
		MealID:    meal.ID,
		Desired:   enums.SelectionStatusAttending,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition))

	// Pending is never a valid target.
	_, err = reconciler.Toggle(ctx, ToggleInput{
		StudentID: studentID,
		MealID:    meal.ID,
		Desired:   enums.SelectionStatusPending,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition))

	// Past-dated meals are frozen.
	past := seedMeal(t, db, now.AddDate(0, 0, -1), decimal.NewFromInt(40), true)
	_, err = reconciler.Toggle(ctx, ToggleInput{
		StudentID: studentID,
		MealID:    past.ID,
		Desired:   enums.SelectionStatusSkipped,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition))

	// Unpublished meals cannot be toggled.
	inactive := seedMeal(t, db, now.AddDate(0, 0, 1), decimal.NewFromInt(40), false)
	_, err = reconciler.Toggle(ctx, ToggleInput{
		StudentID: studentID,
		MealID:    inactive.ID,
		Desired:   enums.SelectionStatusSkipped,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition))

	// Unknown meal.
	_, err = reconciler.Toggle(ctx, ToggleInput{
		StudentID: studentID,
		MealID:    uuid.New(),
		Desired:   enums.SelectionStatusSkipped,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	assert.Empty(t, engine.creditCalls)
	assert.Empty(t, engine.reverseCalls)
}
