package analytics

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/credeat/credeat-backend/internal/ledger"
	"github.com/credeat/credeat-backend/pkg/db/models"
	"github.com/credeat/credeat-backend/pkg/enums"
)

func setupAnalyticsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:analytics_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.Exec(`
		CREATE TABLE meal_selections (
			id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL,
			meal_id TEXT NOT NULL,
			status TEXT NOT NULL,
			linked_transaction_id TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (student_id, meal_id)
		)`).Error)
	require.NoError(t, conn.Exec(`
		CREATE TABLE wallet_transactions (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			type TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			counterparty_account_id TEXT,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at DATETIME
		)`).Error)

	return conn
}

func seedSelection(t *testing.T, conn *gorm.DB, status enums.SelectionStatus) {
	t.Helper()
	require.NoError(t, conn.Create(&models.MealSelection{
		ID:        uuid.New(),
		StudentID: uuid.New(),
		MealID:    uuid.New(),
		Status:    status,
	}).Error)
}

func seedSkipCredit(t *testing.T, conn *gorm.DB, amount string, status enums.TransactionStatus) {
	t.Helper()
	require.NoError(t, conn.Create(&models.WalletTransaction{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Type:      enums.TransactionTypeMealSkipCredit,
		Amount:    decimal.RequireFromString(amount),
		Status:    status,
	}).Error)
}

func TestWastageAggregatesSelections(t *testing.T) {
	conn := setupAnalyticsTestDB(t)
	svc, err := NewService(conn, ledger.NewRepository(conn))
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		seedSelection(t, conn, enums.SelectionStatusAttending)
	}
	seedSelection(t, conn, enums.SelectionStatusSkipped)
	seedSelection(t, conn, enums.SelectionStatusSkipped)

	seedSkipCredit(t, conn, "40.00", enums.TransactionStatusCompleted)
	seedSkipCredit(t, conn, "80.00", enums.TransactionStatusCompleted)
	// Reversed credits never count toward the issued total.
	seedSkipCredit(t, conn, "60.00", enums.TransactionStatusReversed)

	report, err := svc.Wastage(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 8, report.TotalMealsServed)
	require.EqualValues(t, 2, report.MealsSkipped)
	require.True(t, report.WastageSavedKg.Equal(decimal.RequireFromString("0.6")), report.WastageSavedKg.String())
	require.True(t, report.ParticipationRate.Equal(decimal.RequireFromString("75")), report.ParticipationRate.String())
	require.True(t, report.TotalCreditsIssued.Equal(decimal.RequireFromString("120.00")), report.TotalCreditsIssued.String())
}

func TestWastageEmptyMessIsAllZeros(t *testing.T) {
	conn := setupAnalyticsTestDB(t)
	svc, err := NewService(conn, ledger.NewRepository(conn))
	require.NoError(t, err)

	report, err := svc.Wastage(context.Background())
	require.NoError(t, err)
	require.Zero(t, report.TotalMealsServed)
	require.Zero(t, report.MealsSkipped)
	require.True(t, report.WastageSavedKg.IsZero())
	require.True(t, report.ParticipationRate.IsZero())
	require.True(t, report.TotalCreditsIssued.IsZero())
}
