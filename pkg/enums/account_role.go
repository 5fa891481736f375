package enums

import "fmt"

// AccountRole distinguishes the two wallet-holding populations. Admins have
// no wallet account, so the ledger never sees them.
type AccountRole string

const (
	AccountRoleStudent AccountRole = "student"
	AccountRoleVendor  AccountRole = "vendor"
)

var validAccountRoles = []AccountRole{
	AccountRoleStudent,
	AccountRoleVendor,
}

// IsValid reports whether the value matches the canonical account role enum.
func (r AccountRole) IsValid() bool {
	for _, candidate := range validAccountRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseAccountRole converts raw input into AccountRole.
func ParseAccountRole(value string) (AccountRole, error) {
	for _, candidate := range validAccountRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account role %q", value)
}
