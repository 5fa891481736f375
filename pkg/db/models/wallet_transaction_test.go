package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/credeat/credeat-backend/pkg/enums"
)

func TestSignedAmountByRole(t *testing.T) {
	amount := decimal.RequireFromString("25.00")

	credit := WalletTransaction{Type: enums.TransactionTypeMealSkipCredit, Amount: amount, Status: enums.TransactionStatusCompleted}
	assert.True(t, credit.SignedAmount(enums.AccountRoleStudent).Equal(amount))

	payment := WalletTransaction{Type: enums.TransactionTypeVendorPayment, Amount: amount, Status: enums.TransactionStatusCompleted}
	assert.True(t, payment.SignedAmount(enums.AccountRoleStudent).Equal(amount.Neg()))
	assert.True(t, payment.SignedAmount(enums.AccountRoleVendor).Equal(amount))

	withdrawal := WalletTransaction{Type: enums.TransactionTypeWithdrawal, Amount: amount, Status: enums.TransactionStatusCompleted}
	assert.True(t, withdrawal.SignedAmount(enums.AccountRoleVendor).Equal(amount.Neg()))
}

func TestReversalPairSumsToZero(t *testing.T) {
	amount := decimal.RequireFromString("40.00")

	// A reversed credit keeps its full value; the compensating debit is what
	// cancels it. Zeroing the credit would cancel it twice.
	credit := WalletTransaction{Type: enums.TransactionTypeMealSkipCredit, Amount: amount, Status: enums.TransactionStatusReversed}
	debit := WalletTransaction{Type: enums.TransactionTypeMealAttendDebit, Amount: amount, Status: enums.TransactionStatusCompleted}

	assert.True(t, credit.SignedAmount(enums.AccountRoleStudent).Equal(amount))

	sum := credit.SignedAmount(enums.AccountRoleStudent).Add(debit.SignedAmount(enums.AccountRoleStudent))
	assert.True(t, sum.IsZero())
}
