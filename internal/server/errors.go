package server

import (
	"encoding/json"
	"fmt"
)

// ErrInvalidRequest indicates a request body that is not JSON or does not
// conform to the endpoint's schema.
type ErrInvalidRequest struct {
	Body json.RawMessage
	Err  error
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *ErrInvalidRequest) Unwrap() error { return e.Err }
