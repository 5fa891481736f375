package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	"github.com/credeat/credeat-backend/pkg/pagination"
)

// Repository manages persistence for the append-only wallet log and the
// meal selections linked to it. Selections live here because the skip/reverse
// operations mutate them inside the same transaction as the log append.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateTransaction(ctx context.Context, row *models.WalletTransaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.WalletTransaction, error)
	MarkReversed(ctx context.Context, id uuid.UUID) (bool, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error)
	ListAllByAccount(ctx context.Context, accountID uuid.UUID) ([]models.WalletTransaction, error)
	SumCompletedByType(ctx context.Context, txType enums.TransactionType) (decimal.Decimal, error)

	GetSelection(ctx context.Context, studentID, mealID uuid.UUID) (*models.MealSelection, error)
	UpsertSelection(ctx context.Context, selection *models.MealSelection) error
	ListSelectionsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.MealSelection, error)
	ListSelectionsByMeal(ctx context.Context, mealID uuid.UUID) ([]models.MealSelection, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransaction(ctx context.Context, row *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) GetTransaction(ctx context.Context, id uuid.UUID) (*models.WalletTransaction, error) {
	var row models.WalletTransaction
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkReversed flips a completed transaction to reversed. Returns false when
// the row is missing or already reversed; log rows are never deleted.
func (r *repository) MarkReversed(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("id = ? AND status = ?", id, enums.TransactionStatusCompleted).
		UpdateColumn("status", enums.TransactionStatusReversed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.WalletTransaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListAllByAccount(ctx context.Context, accountID uuid.UUID) ([]models.WalletTransaction, error) {
	var rows []models.WalletTransaction
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SumCompletedByType(ctx context.Context, txType enums.TransactionType) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Select("SUM(amount)").
		Where("type = ? AND status = ?", txType, enums.TransactionStatusCompleted).
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *repository) GetSelection(ctx context.Context, studentID, mealID uuid.UUID) (*models.MealSelection, error) {
	var selection models.MealSelection
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND meal_id = ?", studentID, mealID).
		First(&selection).Error; err != nil {
		return nil, err
	}
	return &selection, nil
}

// UpsertSelection inserts or overwrites the selection keyed by
// (student_id, meal_id).
func (r *repository) UpsertSelection(ctx context.Context, selection *models.MealSelection) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "meal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "linked_transaction_id", "updated_at",
			}),
		}).
		Create(selection).Error
}

func (r *repository) ListSelectionsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.MealSelection, error) {
	var selections []models.MealSelection
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&selections).Error; err != nil {
		return nil, err
	}
	return selections, nil
}

func (r *repository) ListSelectionsByMeal(ctx context.Context, mealID uuid.UUID) ([]models.MealSelection, error) {
	var selections []models.MealSelection
	if err := r.db.WithContext(ctx).
		Where("meal_id = ?", mealID).
		Order("created_at ASC").
		Find(&selections).Error; err != nil {
		return nil, err
	}
	return selections, nil
}
