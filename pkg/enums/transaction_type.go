package enums

import "fmt"

// TransactionType maps to the transaction_type_enum values in the wallet log.
// Amounts are stored positive; the sign of a row's balance effect is implied
// by its type (and, for vendor payments, by which side of the transfer owns
// the row).
type TransactionType string

const (
	TransactionTypeMealSkipCredit  TransactionType = "meal_skip_credit"
	TransactionTypeMealAttendDebit TransactionType = "meal_attend_debit"
	TransactionTypeVendorPayment   TransactionType = "vendor_payment"
	TransactionTypeWithdrawal      TransactionType = "withdrawal"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeMealSkipCredit,
	TransactionTypeMealAttendDebit,
	TransactionTypeVendorPayment,
	TransactionTypeWithdrawal,
}

// IsValid reports whether the value matches the canonical transaction enum.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Sign returns the balance effect of a row of this type for an account
// holding the given role: +1 credits the account, -1 debits it. Students only
// ever appear on the paying side of a vendor_payment and vendors on the
// receiving side, so the owner's role disambiguates the mirrored rows.
func (t TransactionType) Sign(role AccountRole) int {
	switch t {
	case TransactionTypeMealSkipCredit:
		return 1
	case TransactionTypeMealAttendDebit:
		return -1
	case TransactionTypeWithdrawal:
		return -1
	case TransactionTypeVendorPayment:
		if role == AccountRoleVendor {
			return 1
		}
		return -1
	}
	return 0
}

// ParseTransactionType converts raw input into TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
