package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/credeat/credeat-backend/pkg/enums"
)

// Meal is one catalog entry published by the mess admin. SkipCredit is the
// amount a student earns for skipping this sitting.
type Meal struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Date       time.Time       `gorm:"column:date;type:date;not null;index"`
	Type       enums.MealType  `gorm:"column:type;type:meal_type_enum;not null"`
	Menu       string          `gorm:"column:menu;type:text;not null"`
	SkipCredit decimal.Decimal `gorm:"column:skip_credit;type:numeric(12,2);not null"`
	IsActive   bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
