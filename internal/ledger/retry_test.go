package ledger

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/internal/accounts"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/logger"
	"github.com/credeat/credeat-backend/pkg/pagination"
)

// fakeWorld backs the retry tests with in-memory state that supports
// rollback, so a failed commit leaves nothing behind just like a real
// transaction.
type fakeWorld struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]*models.WalletAccount
	transactions []models.WalletTransaction
	selections   map[string]*models.MealSelection

	// casConflicts counts down: while positive, every swap loses the race.
	casConflicts int
	casCalls     int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		accounts:   make(map[uuid.UUID]*models.WalletAccount),
		selections: make(map[string]*models.MealSelection),
	}
}

func (w *fakeWorld) addAccount(role enums.AccountRole, balance decimal.Decimal) *models.WalletAccount {
	account := &models.WalletAccount{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Role:    role,
		Balance: balance,
	}
	w.accounts[account.ID] = account
	return account
}

func selectionKey(studentID, mealID uuid.UUID) string {
	return studentID.String() + "|" + mealID.String()
}

// WithTx snapshots the world, runs fn, and restores the snapshot when fn
// fails.
func (w *fakeWorld) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapAccounts := make(map[uuid.UUID]*models.WalletAccount, len(w.accounts))
	for id, account := range w.accounts {
		copied := *account
		snapAccounts[id] = &copied
	}
	snapTransactions := append([]models.WalletTransaction(nil), w.transactions...)
	snapSelections := make(map[string]*models.MealSelection, len(w.selections))
	for key, selection := range w.selections {
		copied := *selection
		snapSelections[key] = &copied
	}

	if err := fn(nil); err != nil {
		w.accounts = snapAccounts
		w.transactions = snapTransactions
		w.selections = snapSelections
		return err
	}
	return nil
}

// fakeAccountStore implements accounts.Store over the shared world.
type fakeAccountStore struct {
	world *fakeWorld
}

func (s *fakeAccountStore) WithTx(tx *gorm.DB) accounts.Store { return s }

func (s *fakeAccountStore) Create(ctx context.Context, account *models.WalletAccount) error {
	s.world.accounts[account.ID] = account
	return nil
}

func (s *fakeAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*models.WalletAccount, error) {
	account, ok := s.world.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *fakeAccountStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error) {
	for _, account := range s.world.accounts {
		if account.UserID == userID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeAccountStore) GetByRole(ctx context.Context, role enums.AccountRole) ([]models.WalletAccount, error) {
	var out []models.WalletAccount
	for _, account := range s.world.accounts {
		if account.Role == role {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (s *fakeAccountStore) CompareAndSwapBalance(ctx context.Context, id uuid.UUID, expectedVersion int64, newBalance decimal.Decimal) (bool, error) {
	s.world.casCalls++
	if s.world.casConflicts > 0 {
		s.world.casConflicts--
		return false, nil
	}
	account, ok := s.world.accounts[id]
	if !ok || account.Version != expectedVersion {
		return false, nil
	}
	account.Balance = newBalance
	account.Version++
	return true, nil
}

// fakeLedgerRepo implements Repository over the shared world.
type fakeLedgerRepo struct {
	world *fakeWorld
}

func (r *fakeLedgerRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *fakeLedgerRepo) CreateTransaction(ctx context.Context, row *models.WalletTransaction) error {
	r.world.transactions = append(r.world.transactions, *row)
	return nil
}

func (r *fakeLedgerRepo) GetTransaction(ctx context.Context, id uuid.UUID) (*models.WalletTransaction, error) {
	for _, row := range r.world.transactions {
		if row.ID == id {
			copied := row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLedgerRepo) MarkReversed(ctx context.Context, id uuid.UUID) (bool, error) {
	for i := range r.world.transactions {
		if r.world.transactions[i].ID == id && r.world.transactions[i].Status == enums.TransactionStatusCompleted {
			r.world.transactions[i].Status = enums.TransactionStatusReversed
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLedgerRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error) {
	return r.ListAllByAccount(ctx, accountID)
}

func (r *fakeLedgerRepo) ListAllByAccount(ctx context.Context, accountID uuid.UUID) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	for _, row := range r.world.transactions {
		if row.AccountID == accountID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) SumCompletedByType(ctx context.Context, txType enums.TransactionType) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range r.world.transactions {
		if row.Type == txType && row.Status == enums.TransactionStatusCompleted {
			total = total.Add(row.Amount)
		}
	}
	return total, nil
}

func (r *fakeLedgerRepo) GetSelection(ctx context.Context, studentID, mealID uuid.UUID) (*models.MealSelection, error) {
	selection, ok := r.world.selections[selectionKey(studentID, mealID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *selection
	return &copied, nil
}

func (r *fakeLedgerRepo) UpsertSelection(ctx context.Context, selection *models.MealSelection) error {
	copied := *selection
	r.world.selections[selectionKey(selection.StudentID, selection.MealID)] = &copied
	return nil
}

func (r *fakeLedgerRepo) ListSelectionsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.MealSelection, error) {
	var out []models.MealSelection
	for _, selection := range r.world.selections {
		if selection.StudentID == studentID {
			out = append(out, *selection)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) ListSelectionsByMeal(ctx context.Context, mealID uuid.UUID) ([]models.MealSelection, error) {
	var out []models.MealSelection
	for _, selection := range r.world.selections {
		if selection.MealID == mealID {
			out = append(out, *selection)
		}
	}
	return out, nil
}

func newRetryService(t *testing.T, world *fakeWorld, maxAttempts int) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "ledger-retry-test", Output: io.Discard})
	svc, err := NewService(world, &fakeAccountStore{world: world}, &fakeLedgerRepo{world: world}, logg, nil, maxAttempts)
	require.NoError(t, err)
	return svc
}

func TestCommitRetriesAfterVersionConflicts(t *testing.T) {
	world := newFakeWorld()
	student := world.addAccount(enums.AccountRoleStudent, decimal.Zero)
	world.casConflicts = 2

	svc := newRetryService(t, world, 5)

	result, err := svc.CreditForSkip(context.Background(), CreditForSkipInput{
		StudentID: student.UserID,
		MealID:    uuid.New(),
		Amount:    decimal.RequireFromString("25.00"),
	})
	require.NoError(t, err)
	assert.True(t, result.Balance.Equal(decimal.RequireFromString("25.00")))

	// Two losing swaps plus the winning one.
	assert.Equal(t, 3, world.casCalls)
	assert.Len(t, world.transactions, 1)
}

func TestCommitReturnsBusyWhenRetryBudgetExhausted(t *testing.T) {
	world := newFakeWorld()
	student := world.addAccount(enums.AccountRoleStudent, decimal.Zero)
	world.casConflicts = 100

	svc := newRetryService(t, world, 3)

	_, err := svc.CreditForSkip(context.Background(), CreditForSkipInput{
		StudentID: student.UserID,
		MealID:    uuid.New(),
		Amount:    decimal.RequireFromString("25.00"),
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeBusy))
	assert.Equal(t, 3, world.casCalls)

	// Nothing may leak from the failed attempts.
	assert.Empty(t, world.transactions)
	assert.Empty(t, world.selections)
	account := world.accounts[student.ID]
	assert.True(t, account.Balance.IsZero())
	assert.EqualValues(t, 0, account.Version)
}

func TestConflictNeverSurfacesToCaller(t *testing.T) {
	world := newFakeWorld()
	student := world.addAccount(enums.AccountRoleStudent, decimal.Zero)
	world.casConflicts = 4

	svc := newRetryService(t, world, 5)

	_, err := svc.CreditForSkip(context.Background(), CreditForSkipInput{
		StudentID: student.UserID,
		MealID:    uuid.New(),
		Amount:    decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)
	assert.False(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}
