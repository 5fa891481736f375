package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/credeat/credeat-backend/pkg/migrate"
)

func TestWalletMigrationsContainConstraints(t *testing.T) {
	accounts := readMigration(t, "*_create_wallet_accounts.sql")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS wallet_accounts",
		"version BIGINT NOT NULL DEFAULT 0",
		"CHECK (balance >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_wallet_accounts_user_id",
		"DROP TABLE IF EXISTS wallet_accounts",
	} {
		if !strings.Contains(accounts, sub) {
			t.Errorf("wallet_accounts migration missing %q", sub)
		}
	}

	transactions := readMigration(t, "*_create_wallet_transactions.sql")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS wallet_transactions",
		"CHECK (amount > 0)",
		"FOREIGN KEY (account_id) REFERENCES wallet_accounts(id) ON DELETE CASCADE",
		"CREATE INDEX IF NOT EXISTS idx_wallet_tx_account_created",
	} {
		if !strings.Contains(transactions, sub) {
			t.Errorf("wallet_transactions migration missing %q", sub)
		}
	}
}

func TestSelectionMigrationEnforcesOnePerMeal(t *testing.T) {
	content := readMigration(t, "*_create_meal_selections.sql")
	if !strings.Contains(content, "CREATE UNIQUE INDEX IF NOT EXISTS idx_meal_selection_student_meal") {
		t.Error("selection migration missing unique (student_id, meal_id) index")
	}
}

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
