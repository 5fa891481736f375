package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/credeat/credeat-backend/pkg/enums"
)

// MealSelection records a student's RSVP for one meal. At most one active
// linked transaction may exist per (student, meal): a skip links the credit
// row, a reversal clears the link. Re-toggling reverses the prior entry
// rather than stacking a new one.
type MealSelection struct {
	ID                  uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StudentID           uuid.UUID             `gorm:"column:student_id;type:uuid;not null;uniqueIndex:idx_meal_selection_student_meal,priority:1"`
	MealID              uuid.UUID             `gorm:"column:meal_id;type:uuid;not null;uniqueIndex:idx_meal_selection_student_meal,priority:2"`
	Status              enums.SelectionStatus `gorm:"column:status;type:selection_status_enum;not null"`
	LinkedTransactionID *uuid.UUID            `gorm:"column:linked_transaction_id;type:uuid"`
	CreatedAt           time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
