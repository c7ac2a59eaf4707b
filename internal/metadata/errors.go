package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContainer indicates the byte stream carries no recognized
	// metadata container. Not an error condition for a batch run.
	ErrNoContainer = errors.New("no metadata container")

	// ErrNoGPSGroup indicates a recognized container without a GPS
	// information group.
	ErrNoGPSGroup = errors.New("no GPS information group")
)

// CorruptedError indicates a recognized container whose structure or values
// cannot be trusted: invalid byte-order marker, truncated offsets, zero
// denominators and the like.
type CorruptedError struct {
	Reason string
}

func (e *CorruptedError) Error() string {
	return fmt.Sprintf("corrupted metadata: %s", e.Reason)
}

func newCorrupted(format string, v ...interface{}) error {
	return &CorruptedError{Reason: fmt.Sprintf(format, v...)}
}

// IsCorrupted reports whether err is a CorruptedError.
func IsCorrupted(err error) bool {
	var ce *CorruptedError
	return errors.As(err, &ce)
}
