package hsm

import "github.com/google/uuid"

// NewRunID generates a fresh identifier suitable as a persistence key
// for one machine run, independent of the machine's own Name.
func NewRunID() string {
	return uuid.NewString()
}
