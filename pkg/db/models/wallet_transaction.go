package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/credeat/credeat-backend/pkg/enums"
)

// WalletTransaction is one immutable row of the append-only wallet log.
// Amount is always positive; the balance effect is implied by Type. Rows are
// never rewritten except for the completed->reversed status flip applied by a
// compensating reversal.
type WalletTransaction struct {
	ID             uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID      uuid.UUID               `gorm:"column:account_id;type:uuid;not null;index:idx_wallet_tx_account_created,priority:1"`
	Type           enums.TransactionType   `gorm:"column:type;type:transaction_type_enum;not null"`
	Amount         decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	CounterpartyID *uuid.UUID              `gorm:"column:counterparty_account_id;type:uuid"`
	Description    string                  `gorm:"column:description;type:text;not null"`
	Status         enums.TransactionStatus `gorm:"column:status;type:transaction_status_enum;not null"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime;index:idx_wallet_tx_account_created,priority:2"`
}

// SignedAmount returns the row's contribution to the owning account's
// balance, given that account's role. Every row counts at full value,
// including reversed ones: a reversal cancels its credit through the
// compensating debit it appends, and the reversed status is audit metadata,
// not an arithmetic exclusion. Zeroing reversed rows here would cancel the
// credit twice and break the replayed sum.
func (t WalletTransaction) SignedAmount(role enums.AccountRole) decimal.Decimal {
	switch t.Type.Sign(role) {
	case 1:
		return t.Amount
	case -1:
		return t.Amount.Neg()
	}
	return decimal.Zero
}
