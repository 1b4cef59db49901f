package circuit

import "fmt"

// Kind classifies a circuit error per spec §7.
type Kind int

const (
	// InvalidInput: power factor outside [0,1]; phase index out of
	// range; feeder/return/power counts mismatched.
	InvalidInput Kind = iota
	// InvalidState: both port voltages became "set" without either
	// being "given" during a sweep.
	InvalidState
	// MissingBoundary: start() called with no entry elements or an
	// empty circuit.
	MissingBoundary
	// OutOfBounds: dataset sample/house index outside the ingested
	// matrix (pkg/dataset's collaborator interface).
	OutOfBounds
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case InvalidState:
		return "InvalidState"
	case MissingBoundary:
		return "MissingBoundary"
	case OutOfBounds:
		return "OutOfBounds"
	default:
		return "Unknown"
	}
}

// Error is a one-line diagnostic identifying the element (by name, when
// applicable) and the failed contract (spec §7).
type Error struct {
	Kind    Kind
	Element string
	Message string
}

func (e *Error) Error() string {
	if e.Element == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: element <%s>: %s", e.Kind, e.Element, e.Message)
}

func newError(kind Kind, element, message string) *Error {
	return &Error{Kind: kind, Element: element, Message: message}
}
