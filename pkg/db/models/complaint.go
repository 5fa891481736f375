package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/credeat/credeat-backend/pkg/enums"
)

// Complaint is a mess complaint filed by a student.
type Complaint struct {
	ID          uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	Category    enums.ComplaintCategory `gorm:"column:category;type:complaint_category_enum;not null"`
	Description string                  `gorm:"column:description;type:text;not null"`
	Status      enums.ComplaintStatus   `gorm:"column:status;type:complaint_status_enum;not null"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
