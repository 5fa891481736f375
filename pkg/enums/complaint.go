package enums

import "fmt"

// ComplaintCategory buckets mess complaints for the admin dashboard.
type ComplaintCategory string

const (
	ComplaintCategoryFood    ComplaintCategory = "food_quality"
	ComplaintCategoryHygiene ComplaintCategory = "hygiene"
	ComplaintCategoryService ComplaintCategory = "service"
	ComplaintCategoryBilling ComplaintCategory = "billing"
	ComplaintCategoryOther   ComplaintCategory = "other"
)

var validComplaintCategories = []ComplaintCategory{
	ComplaintCategoryFood,
	ComplaintCategoryHygiene,
	ComplaintCategoryService,
	ComplaintCategoryBilling,
	ComplaintCategoryOther,
}

// IsValid reports whether the value matches the canonical category enum.
func (c ComplaintCategory) IsValid() bool {
	for _, candidate := range validComplaintCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseComplaintCategory converts raw input into ComplaintCategory.
func ParseComplaintCategory(value string) (ComplaintCategory, error) {
	for _, candidate := range validComplaintCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid complaint category %q", value)
}

// ComplaintStatus tracks the admin triage state of a complaint.
type ComplaintStatus string

const (
	ComplaintStatusOpen     ComplaintStatus = "open"
	ComplaintStatusInReview ComplaintStatus = "in_review"
	ComplaintStatusResolved ComplaintStatus = "resolved"
)

var validComplaintStatuses = []ComplaintStatus{
	ComplaintStatusOpen,
	ComplaintStatusInReview,
	ComplaintStatusResolved,
}

// IsValid reports whether the value matches the canonical status enum.
func (s ComplaintStatus) IsValid() bool {
	for _, candidate := range validComplaintStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseComplaintStatus converts raw input into ComplaintStatus.
func ParseComplaintStatus(value string) (ComplaintStatus, error) {
	for _, candidate := range validComplaintStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid complaint status %q", value)
}
