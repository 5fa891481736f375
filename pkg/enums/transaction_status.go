package enums

import "fmt"

// TransactionStatus tracks whether a wallet log row still contributes to the
// balance. Rows are never mutated in place beyond this flag: a reversal flips
// the original to reversed and appends a compensating entry.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusReversed  TransactionStatus = "reversed"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusCompleted,
	TransactionStatusReversed,
}

// IsValid reports whether the value matches the canonical status enum.
func (s TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTransactionStatus converts raw input into TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}
