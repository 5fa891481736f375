package enums

import "fmt"

// UserRole maps to the user_role_enum values stored on users.
type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleVendor  UserRole = "vendor"
	UserRoleAdmin   UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleStudent,
	UserRoleVendor,
	UserRoleAdmin,
}

// IsValid reports whether the value matches the canonical user role enum.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// HasWallet reports whether accounts of this role carry a credit wallet.
func (r UserRole) HasWallet() bool {
	return r == UserRoleStudent || r == UserRoleVendor
}

// ParseUserRole converts raw input into UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
