package enums

import "fmt"

// SelectionStatus tracks a student's RSVP for a single meal.
type SelectionStatus string

const (
	SelectionStatusPending   SelectionStatus = "pending"
	SelectionStatusAttending SelectionStatus = "attending"
	SelectionStatusSkipped   SelectionStatus = "skipped"
)

var validSelectionStatuses = []SelectionStatus{
	SelectionStatusPending,
	SelectionStatusAttending,
	SelectionStatusSkipped,
}

// IsValid reports whether the value matches the canonical selection enum.
func (s SelectionStatus) IsValid() bool {
	for _, candidate := range validSelectionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSelectionStatus converts raw input into SelectionStatus.
func ParseSelectionStatus(value string) (SelectionStatus, error) {
	for _, candidate := range validSelectionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid selection status %q", value)
}
