package meals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/pkg/db/models"
)

// Repository exposes meal catalog persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a meals repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new catalog entry.
func (r *Repository) Create(ctx context.Context, meal *models.Meal) error {
	return r.db.WithContext(ctx).Create(meal).Error
}

// FindByID loads a meal by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Meal, error) {
	var meal models.Meal
	if err := r.db.WithContext(ctx).First(&meal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

// ListByDateRange returns active meals between from and to inclusive, ordered
// by date then sitting.
func (r *Repository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Meal, error) {
	var meals []models.Meal
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND date >= ? AND date <= ?", true, from, to).
		Order("date ASC, type ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

// UpdateMenu overwrites the menu text and skip credit of a catalog entry.
func (r *Repository) UpdateMenu(ctx context.Context, id uuid.UUID, menu string, skipCredit decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Meal{}).
		Where("id = ?", id).
		Updates(map[string]any{"menu": menu, "skip_credit": skipCredit}).Error
}

// Deactivate soft-removes a meal from the published catalog.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Meal{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false).Error
}
