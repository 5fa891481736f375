package enums

import "fmt"

// MealType identifies the mess sitting a meal belongs to.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
)

var validMealTypes = []MealType{
	MealTypeBreakfast,
	MealTypeLunch,
	MealTypeDinner,
}

// IsValid reports whether the value matches the canonical meal type enum.
func (m MealType) IsValid() bool {
	for _, candidate := range validMealTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMealType converts raw input into MealType.
func ParseMealType(value string) (MealType, error) {
	for _, candidate := range validMealTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid meal type %q", value)
}
