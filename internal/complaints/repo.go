package complaints

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
)

// Repository exposes complaint persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a complaints repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new complaint.
func (r *Repository) Create(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

// FindByID loads a complaint by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.db.WithContext(ctx).First(&complaint, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

// ListByUser returns the user's complaints, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Complaint, error) {
	var complaints []models.Complaint
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}

// ListAll returns every complaint, optionally filtered by status, newest first.
func (r *Repository) ListAll(ctx context.Context, status *enums.ComplaintStatus) ([]models.Complaint, error) {
	query := r.db.WithContext(ctx).Model(&models.Complaint{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var complaints []models.Complaint
	if err := query.Order("created_at DESC").Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}

// UpdateStatus moves a complaint to the given triage state. Returns false
// when the complaint does not exist.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ComplaintStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Complaint{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
