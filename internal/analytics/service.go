package analytics

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
	pkgerrors "github.com/credeat/credeat-backend/pkg/errors"
)

// wastageKgPerSkippedMeal is the estimate used for the saved-food figure.
var wastageKgPerSkippedMeal = decimal.RequireFromString("0.3")

// creditSummer reads aggregate figures off the wallet log.
type creditSummer interface {
	SumCompletedByType(ctx context.Context, txType enums.TransactionType) (decimal.Decimal, error)
}

// WastageReport is the admin dashboard aggregate.
type WastageReport struct {
	TotalMealsServed   int64           `json:"total_meals_served"`
	MealsSkipped       int64           `json:"meals_skipped"`
	WastageSavedKg     decimal.Decimal `json:"wastage_saved_kg"`
	ParticipationRate  decimal.Decimal `json:"participation_rate"`
	TotalCreditsIssued decimal.Decimal `json:"total_credits_issued"`
}

// Service computes mess participation and wastage aggregates.
type Service struct {
	db      *gorm.DB
	credits creditSummer
}

// NewService wires the analytics service.
func NewService(db *gorm.DB, credits creditSummer) (*Service, error) {
	if db == nil {
		return nil, errors.New("database required")
	}
	if credits == nil {
		return nil, errors.New("credit summer required")
	}
	return &Service{db: db, credits: credits}, nil
}

// Wastage aggregates selections into the dashboard report. An empty mess
// yields honest zeros rather than placeholder figures.
func (s *Service) Wastage(ctx context.Context) (*WastageReport, error) {
	var totalSelections int64
	if err := s.db.WithContext(ctx).
		Model(&models.MealSelection{}).
		Count(&totalSelections).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count selections")
	}

	var skipped int64
	if err := s.db.WithContext(ctx).
		Model(&models.MealSelection{}).
		Where("status = ?", enums.SelectionStatusSkipped).
		Count(&skipped).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count skipped selections")
	}

	creditsIssued, err := s.credits.SumCompletedByType(ctx, enums.TransactionTypeMealSkipCredit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum skip credits")
	}

	report := &WastageReport{
		TotalMealsServed:   totalSelections,
		MealsSkipped:       skipped,
		WastageSavedKg:     wastageKgPerSkippedMeal.Mul(decimal.NewFromInt(skipped)),
		ParticipationRate:  decimal.Zero,
		TotalCreditsIssued: creditsIssued,
	}
	if totalSelections > 0 {
		attended := decimal.NewFromInt(totalSelections - skipped)
		report.ParticipationRate = attended.
			Div(decimal.NewFromInt(totalSelections)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return report, nil
}
