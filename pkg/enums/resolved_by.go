package enums

import "fmt"

// ResolvedBy records which actor closed out an issue.
type ResolvedBy string

const (
	ResolvedByAdmin    ResolvedBy = "admin"
	ResolvedByCustomer ResolvedBy = "customer_confirmation"
)

var validResolvedBy = []ResolvedBy{
	ResolvedByAdmin,
	ResolvedByCustomer,
}

// String implements fmt.Stringer.
func (r ResolvedBy) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ResolvedBy.
func (r ResolvedBy) IsValid() bool {
	for _, candidate := range validResolvedBy {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseResolvedBy converts raw input into a ResolvedBy.
func ParseResolvedBy(value string) (ResolvedBy, error) {
	for _, candidate := range validResolvedBy {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid resolved_by %q", value)
}
