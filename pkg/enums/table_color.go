package enums

// TableColor is the display color derived for a table from its orders.
type TableColor string

const (
	TableColorWhite  TableColor = "white"
	TableColorGreen  TableColor = "green"
	TableColorOrange TableColor = "orange"
	TableColorPurple TableColor = "purple"
	TableColorRed    TableColor = "red"
)

// String implements fmt.Stringer.
func (t TableColor) String() string {
	return string(t)
}

// Label returns the display text paired with each color.
func (t TableColor) Label() string {
	switch t {
	case TableColorWhite:
		return "No orders"
	case TableColorGreen:
		return "Orders solved"
	case TableColorOrange:
		return "Order present"
	case TableColorPurple:
		return "Multiple orders"
	case TableColorRed:
		return "Order issue"
	default:
		return ""
	}
}
