package enums

import "fmt"

// IssueType categorizes a reported problem. Food and drink streams carry
// distinct vocabularies; "other" is accepted everywhere.
type IssueType string

const (
	IssueTypeCold        IssueType = "cold"
	IssueTypeUndercooked IssueType = "undercooked"
	IssueTypeWrongItem   IssueType = "wrong_item"
	IssueTypeMissingItem IssueType = "missing_item"
	IssueTypeWrongDrink  IssueType = "wrong_drink"
	IssueTypeWarmDrink   IssueType = "warm_drink"
	IssueTypeSpilled     IssueType = "spilled"
	IssueTypeOther       IssueType = "other"
)

var foodIssueTypes = []IssueType{
	IssueTypeCold,
	IssueTypeUndercooked,
	IssueTypeWrongItem,
	IssueTypeMissingItem,
	IssueTypeOther,
}

var drinkIssueTypes = []IssueType{
	IssueTypeWrongDrink,
	IssueTypeWarmDrink,
	IssueTypeSpilled,
	IssueTypeMissingItem,
	IssueTypeOther,
}

var validIssueTypes = []IssueType{
	IssueTypeCold,
	IssueTypeUndercooked,
	IssueTypeWrongItem,
	IssueTypeMissingItem,
	IssueTypeWrongDrink,
	IssueTypeWarmDrink,
	IssueTypeSpilled,
	IssueTypeOther,
}

// String implements fmt.Stringer.
func (i IssueType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known IssueType.
func (i IssueType) IsValid() bool {
	for _, candidate := range validIssueTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// AllowedForStream reports whether the type belongs to the stream's vocabulary.
func (i IssueType) AllowedForStream(stream Stream) bool {
	var allowed []IssueType
	switch stream {
	case StreamFood:
		allowed = foodIssueTypes
	case StreamDrinks:
		allowed = drinkIssueTypes
	default:
		return i == IssueTypeOther
	}
	for _, candidate := range allowed {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseIssueType converts raw input into an IssueType.
func ParseIssueType(value string) (IssueType, error) {
	for _, candidate := range validIssueTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid issue type %q", value)
}
