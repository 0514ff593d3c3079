package snippets

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates no snippet exists for the requested challenge key.
var ErrNotFound = errors.New("code challenge not found")

// BrokenBoundaryError indicates a snippet start marker without a matching end
// marker for the same challenge key.
type BrokenBoundaryError struct {
	Key  string
	File string
}

func (e *BrokenBoundaryError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("Broken code snippet boundaries for: %s (%s)", e.Key, e.File)
	}
	return fmt.Sprintf("Broken code snippet boundaries for: %s", e.Key)
}

// IsBrokenBoundary reports whether err is or wraps a BrokenBoundaryError.
func IsBrokenBoundary(err error) bool {
	var bb *BrokenBoundaryError
	return errors.As(err, &bb)
}
