package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/internal/accounts"
	"github.com/credeat/credeat-backend/pkg/db"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/logger"
	"github.com/credeat/credeat-backend/pkg/metrics"
)

const (
	opCreditForSkip     = "credit_for_skip"
	opReverseToAttend   = "reverse_to_attend"
	opPayVendor         = "pay_vendor"
	opRequestWithdrawal = "request_withdrawal"

	defaultMaxCommitAttempts = 5
)

// Service executes the wallet's mutating operations. Every operation commits
// the balance swap and the log append as one transaction, retrying the whole
// validate-and-commit cycle on a lost version race up to the configured bound.
type Service interface {
	CreditForSkip(ctx context.Context, input CreditForSkipInput) (*OperationResult, error)
	ReverseToAttend(ctx context.Context, input ReverseToAttendInput) (*OperationResult, error)
	PayVendor(ctx context.Context, input PayVendorInput) (*TransferResult, error)
	RequestWithdrawal(ctx context.Context, input WithdrawalInput) (*OperationResult, error)
	RecomputeBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}

// CreditForSkipInput captures a skip toggle that earns a credit.
type CreditForSkipInput struct {
	StudentID   uuid.UUID
	MealID      uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// ReverseToAttendInput undoes the active skip credit for one (student, meal).
type ReverseToAttendInput struct {
	StudentID uuid.UUID
	MealID    uuid.UUID
}

// PayVendorInput moves credits from a student wallet to a vendor wallet.
type PayVendorInput struct {
	StudentID   uuid.UUID
	VendorID    uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// WithdrawalInput records a vendor cashing out accumulated credits.
type WithdrawalInput struct {
	VendorID    uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// OperationResult is the authoritative post-commit state for one account.
type OperationResult struct {
	Balance     decimal.Decimal
	Transaction *models.WalletTransaction
}

// TransferResult is the post-commit state of a two-account payment.
type TransferResult struct {
	StudentBalance decimal.Decimal
	VendorBalance  decimal.Decimal
	StudentEntry   *models.WalletTransaction
	VendorEntry    *models.WalletTransaction
}

type service struct {
	db          db.TxRunner
	accounts    accounts.Store
	repo        Repository
	logg        *logger.Logger
	metrics     *metrics.LedgerMetrics
	maxAttempts int
}

// NewService wires the ledger engine with its transactional collaborators.
func NewService(runner db.TxRunner, store accounts.Store, repo Repository, logg *logger.Logger, m *metrics.LedgerMetrics, maxAttempts int) (Service, error) {
	if runner == nil {
		return nil, errors.New("tx runner required")
	}
	if store == nil {
		return nil, errors.New("account store required")
	}
	if repo == nil {
		return nil, errors.New("ledger repository required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxCommitAttempts
	}
	return &service{
		db:          runner,
		accounts:    store,
		repo:        repo,
		logg:        logg,
		metrics:     m,
		maxAttempts: maxAttempts,
	}, nil
}

func (s *service) CreditForSkip(ctx context.Context, input CreditForSkipInput) (*OperationResult, error) {
	if input.StudentID == uuid.Nil || input.MealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student id and meal id are required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	var result *OperationResult
	err := s.commitWithRetry(ctx, opCreditForSkip, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		store := s.accounts.WithTx(tx)

		account, err := store.GetByUserID(ctx, input.StudentID)
		if err != nil {
			return mapLookupErr(err, "wallet account")
		}

		selection, err := repo.GetSelection(ctx, input.StudentID, input.MealID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "load meal selection")
		}
		if selection != nil && selection.LinkedTransactionID != nil {
			return pkgerrors.New(pkgerrors.CodeDuplicateOp, "an active skip credit already exists for this meal")
		}

		entry := &models.WalletTransaction{
			ID:          uuid.New(),
			AccountID:   account.ID,
			Type:        enums.TransactionTypeMealSkipCredit,
			Amount:      input.Amount,
			Description: input.Description,
			Status:      enums.TransactionStatusCompleted,
		}
		if err := repo.CreateTransaction(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "append skip credit")
		}

		newBalance := account.Balance.Add(input.Amount)
		if err := s.swapBalance(ctx, store, account, newBalance); err != nil {
			return err
		}

		if err := s.linkSelection(ctx, repo, selection, input.StudentID, input.MealID, enums.SelectionStatusSkipped, &entry.ID); err != nil {
			return err
		}

		result = &OperationResult{Balance: newBalance, Transaction: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ReverseToAttend(ctx context.Context, input ReverseToAttendInput) (*OperationResult, error) {
	if input.StudentID == uuid.Nil || input.MealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student id and meal id are required")
	}

	var result *OperationResult
	err := s.commitWithRetry(ctx, opReverseToAttend, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		store := s.accounts.WithTx(tx)

		account, err := store.GetByUserID(ctx, input.StudentID)
		if err != nil {
			return mapLookupErr(err, "wallet account")
		}

		selection, err := repo.GetSelection(ctx, input.StudentID, input.MealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNoActiveCredit, "no active skip credit for this meal")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "load meal selection")
		}
		if selection.LinkedTransactionID == nil {
			return pkgerrors.New(pkgerrors.CodeNoActiveCredit, "no active skip credit for this meal")
		}

		original, err := repo.GetTransaction(ctx, *selection.LinkedTransactionID)
		if err != nil {
			return mapLookupErr(err, "linked transaction")
		}
		if original.Type != enums.TransactionTypeMealSkipCredit || original.Status != enums.TransactionStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeNoActiveCredit, "linked transaction is not an active skip credit")
		}
		if account.Balance.LessThan(original.Amount) {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "credit already spent, balance too low to reverse")
		}

		reversed, err := repo.MarkReversed(ctx, original.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "mark credit reversed")
		}
		if !reversed {
			return pkgerrors.New(pkgerrors.CodeNoActiveCredit, "skip credit was already reversed")
		}

		debit := &models.WalletTransaction{
			ID:          uuid.New(),
			AccountID:   account.ID,
			Type:        enums.TransactionTypeMealAttendDebit,
			Amount:      original.Amount,
			Description: "reversal of skip credit",
			Status:      enums.TransactionStatusCompleted,
		}
		if err := repo.CreateTransaction(ctx, debit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "append attend debit")
		}

		newBalance := account.Balance.Sub(original.Amount)
		if err := s.swapBalance(ctx, store, account, newBalance); err != nil {
			return err
		}

		if err := s.linkSelection(ctx, repo, selection, input.StudentID, input.MealID, enums.SelectionStatusAttending, nil); err != nil {
			return err
		}

		result = &OperationResult{Balance: newBalance, Transaction: debit}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) PayVendor(ctx context.Context, input PayVendorInput) (*TransferResult, error) {
	if input.StudentID == uuid.Nil || input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student id and vendor id are required")
	}
	if input.StudentID == input.VendorID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot pay your own wallet")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	var result *TransferResult
	err := s.commitWithRetry(ctx, opPayVendor, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		store := s.accounts.WithTx(tx)

		student, err := store.GetByUserID(ctx, input.StudentID)
		if err != nil {
			return mapLookupErr(err, "student wallet")
		}
		vendor, err := store.GetByUserID(ctx, input.VendorID)
		if err != nil {
			return mapLookupErr(err, "vendor wallet")
		}
		if student.Role != enums.AccountRoleStudent || vendor.Role != enums.AccountRoleVendor {
			return pkgerrors.New(pkgerrors.CodeValidation, "payments flow from student wallets to vendor wallets")
		}
		if student.Balance.LessThan(input.Amount) {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "wallet balance too low for this payment")
		}

		studentBalance := student.Balance.Sub(input.Amount)
		vendorBalance := vendor.Balance.Add(input.Amount)

		// Both swaps run in account-ID order so concurrent transfers over
		// the same pair never deadlock.
		swaps := []struct {
			account *models.WalletAccount
			next    decimal.Decimal
		}{
			{student, studentBalance},
			{vendor, vendorBalance},
		}
		sort.Slice(swaps, func(i, j int) bool {
			return swaps[i].account.ID.String() < swaps[j].account.ID.String()
		})
		for _, swap := range swaps {
			if err := s.swapBalance(ctx, store, swap.account, swap.next); err != nil {
				return err
			}
		}

		studentEntry := &models.WalletTransaction{
			ID:             uuid.New(),
			AccountID:      student.ID,
			Type:           enums.TransactionTypeVendorPayment,
			Amount:         input.Amount,
			CounterpartyID: &vendor.ID,
			Description:    input.Description,
			Status:         enums.TransactionStatusCompleted,
		}
		vendorEntry := &models.WalletTransaction{
			ID:             uuid.New(),
			AccountID:      vendor.ID,
			Type:           enums.TransactionTypeVendorPayment,
			Amount:         input.Amount,
			CounterpartyID: &student.ID,
			Description:    input.Description,
			Status:         enums.TransactionStatusCompleted,
		}
		if err := repo.CreateTransaction(ctx, studentEntry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "append student payment entry")
		}
		if err := repo.CreateTransaction(ctx, vendorEntry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "append vendor payment entry")
		}

		result = &TransferResult{
			StudentBalance: studentBalance,
			VendorBalance:  vendorBalance,
			StudentEntry:   studentEntry,
			VendorEntry:    vendorEntry,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RequestWithdrawal(ctx context.Context, input WithdrawalInput) (*OperationResult, error) {
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	var result *OperationResult
	err := s.commitWithRetry(ctx, opRequestWithdrawal, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		store := s.accounts.WithTx(tx)

		vendor, err := store.GetByUserID(ctx, input.VendorID)
		if err != nil {
			return mapLookupErr(err, "vendor wallet")
		}
		if vendor.Role != enums.AccountRoleVendor {
			return pkgerrors.New(pkgerrors.CodeValidation, "only vendor wallets can withdraw")
		}
		if vendor.Balance.LessThan(input.Amount) {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "wallet balance too low for this withdrawal")
		}

		entry := &models.WalletTransaction{
			ID:          uuid.New(),
			AccountID:   vendor.ID,
			Type:        enums.TransactionTypeWithdrawal,
			Amount:      input.Amount,
			Description: input.Description,
			Status:      enums.TransactionStatusCompleted,
		}
		if err := repo.CreateTransaction(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "append withdrawal entry")
		}

		newBalance := vendor.Balance.Sub(input.Amount)
		if err := s.swapBalance(ctx, store, vendor, newBalance); err != nil {
			return err
		}

		result = &OperationResult{Balance: newBalance, Transaction: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecomputeBalance replays the full log for one account and returns the sum
// of signed amounts. Reversal pairs cancel through the compensating debit,
// so the replayed total must equal the stored balance after every operation.
// Used by audits and invariant tests.
func (s *service) RecomputeBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	if accountID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, mapLookupErr(err, "wallet account")
	}

	rows, err := s.repo.ListAllByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "replay wallet log")
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.SignedAmount(account.Role))
	}
	return total, nil
}

// commitWithRetry runs fn as one transaction, re-running the whole cycle on a
// version conflict until the attempt budget runs out.
func (s *service) commitWithRetry(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	start := time.Now()
	defer func() {
		s.metrics.ObserveCommit(op, time.Since(start))
	}()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.db.WithTx(ctx, fn)
		if err == nil {
			s.metrics.IncCommit(op, "committed")
			return nil
		}
		if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
			s.metrics.IncConflict(op)
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"operation": op,
				"attempt":   attempt,
			}), "wallet commit lost version race, retrying")
			continue
		}
		s.metrics.IncCommit(op, "failed")
		return err
	}

	s.metrics.IncRetriesExhausted(op)
	s.metrics.IncCommit(op, "busy")
	return pkgerrors.New(pkgerrors.CodeBusy, "wallet is busy, retry shortly")
}

func (s *service) swapBalance(ctx context.Context, store accounts.Store, account *models.WalletAccount, next decimal.Decimal) error {
	swapped, err := store.CompareAndSwapBalance(ctx, account.ID, account.Version, next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "swap balance")
	}
	if !swapped {
		return pkgerrors.New(pkgerrors.CodeConflict, "account version changed")
	}
	return nil
}

func (s *service) linkSelection(ctx context.Context, repo Repository, existing *models.MealSelection, studentID, mealID uuid.UUID, status enums.SelectionStatus, txID *uuid.UUID) error {
	next := &models.MealSelection{
		ID:                  uuid.New(),
		StudentID:           studentID,
		MealID:              mealID,
		Status:              status,
		LinkedTransactionID: txID,
	}
	if existing != nil {
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
	}
	if err := repo.UpsertSelection(ctx, next); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "upsert meal selection")
	}
	return nil
}

func mapLookupErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeStoreUnavailable, err, "load "+entity)
}
