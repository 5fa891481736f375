package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/credeat/credeat-backend/pkg/enums"
)

// WalletAccount is the durable balance record for one student or vendor.
// Balance is mutated only through the compare-and-swap primitive in
// internal/accounts; Version increments on every successful swap.
type WalletAccount struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Role      enums.AccountRole `gorm:"column:role;type:account_role_enum;not null"`
	Balance   decimal.Decimal   `gorm:"column:balance;type:numeric(12,2);not null"`
	Version   int64             `gorm:"column:version;not null;default:0"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
