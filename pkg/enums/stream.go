package enums

import "fmt"

// Stream identifies an independent preparation line for an order.
type Stream string

const (
	StreamFood   Stream = "food"
	StreamDrinks Stream = "drinks"
)

var validStreams = []Stream{
	StreamFood,
	StreamDrinks,
}

// Streams returns every known preparation stream.
func Streams() []Stream {
	out := make([]Stream, len(validStreams))
	copy(out, validStreams)
	return out
}

// String implements fmt.Stringer.
func (s Stream) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Stream.
func (s Stream) IsValid() bool {
	for _, candidate := range validStreams {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStream converts raw input into a Stream.
func ParseStream(value string) (Stream, error) {
	for _, candidate := range validStreams {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stream %q", value)
}
