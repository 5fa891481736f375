package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/internal/accounts"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
	"github.com/credeat/credeat-backend/pkg/pagination"
)

// EntryReader is the slice of the wallet log the facade reads.
type EntryReader interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error)
}

// Service is the read-only view over balances and history consumed by
// dashboards. It never mutates; writes go through the ledger engine.
type Service struct {
	accounts accounts.Store
	entries  EntryReader
}

// NewService wires the wallet query facade.
func NewService(store accounts.Store, entries EntryReader) (*Service, error) {
	if store == nil {
		return nil, errors.New("account store required")
	}
	if entries == nil {
		return nil, errors.New("entry reader required")
	}
	return &Service{accounts: store, entries: entries}, nil
}

// BalanceDTO is the balance snapshot returned to callers.
type BalanceDTO struct {
	AccountID uuid.UUID         `json:"account_id"`
	UserID    uuid.UUID         `json:"user_id"`
	Role      enums.AccountRole `json:"role"`
	Balance   decimal.Decimal   `json:"balance"`
}

// TransactionDTO is one log row shaped for the API.
type TransactionDTO struct {
	ID             uuid.UUID               `json:"id"`
	Type           enums.TransactionType   `json:"type"`
	Amount         decimal.Decimal         `json:"amount"`
	SignedAmount   decimal.Decimal         `json:"signed_amount"`
	CounterpartyID *uuid.UUID              `json:"counterparty_account_id,omitempty"`
	Description    string                  `json:"description"`
	Status         enums.TransactionStatus `json:"status"`
	CreatedAt      time.Time               `json:"created_at"`
}

// HistoryPage is one cursor page of the wallet log, newest first.
type HistoryPage struct {
	Items      []TransactionDTO `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// GetBalance returns the committed balance for the user's wallet.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (*BalanceDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	account, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wallet account")
	}
	return &BalanceDTO{
		AccountID: account.ID,
		UserID:    account.UserID,
		Role:      account.Role,
		Balance:   account.Balance,
	}, nil
}

// ListTransactions returns the user's log newest first with cursor paging.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*HistoryPage, error) {
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.entries.ListByAccount(ctx, balance.AccountID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wallet transactions")
	}

	page := &HistoryPage{Items: make([]TransactionDTO, 0, limit)}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		page.Items = append(page.Items, TransactionDTO{
			ID:             row.ID,
			Type:           row.Type,
			Amount:         row.Amount,
			SignedAmount:   row.SignedAmount(balance.Role),
			CounterpartyID: row.CounterpartyID,
			Description:    row.Description,
			Status:         row.Status,
			CreatedAt:      row.CreatedAt,
		})
	}
	if hasMore {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}
