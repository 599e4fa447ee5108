package trading

import "fmt"

// ID is an opaque entity identifier.
type ID interface {
	fmt.Stringer
}

type IDService interface {
	NewID() ID

	NewIDFromString(id string) (ID, error)
}
