package accounts

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
)

// Store manages persistence for wallet accounts. Balance writes go through
// CompareAndSwapBalance exclusively so that every mutation is guarded by the
// account's version counter.
type Store interface {
	WithTx(tx *gorm.DB) Store
	Create(ctx context.Context, account *models.WalletAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WalletAccount, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error)
	GetByRole(ctx context.Context, role enums.AccountRole) ([]models.WalletAccount, error)
	CompareAndSwapBalance(ctx context.Context, id uuid.UUID, expectedVersion int64, newBalance decimal.Decimal) (bool, error)
}

type store struct {
	db *gorm.DB
}

// NewStore returns an account store bound to the provided database.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return s
	}
	return &store{db: tx}
}

func (s *store) Create(ctx context.Context, account *models.WalletAccount) error {
	return s.db.WithContext(ctx).Create(account).Error
}

func (s *store) GetByID(ctx context.Context, id uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	if err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *store) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *store) GetByRole(ctx context.Context, role enums.AccountRole) ([]models.WalletAccount, error) {
	var accounts []models.WalletAccount
	if err := s.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// CompareAndSwapBalance writes the new balance only when the stored version
// still matches expectedVersion, bumping the version on success. A false
// return with nil error means another writer won the race.
func (s *store) CompareAndSwapBalance(ctx context.Context, id uuid.UUID, expectedVersion int64, newBalance decimal.Decimal) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"balance": newBalance,
			"version": expectedVersion + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
