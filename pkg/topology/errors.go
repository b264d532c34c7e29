package topology

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrInvalidNode     = errors.New("invalid node")
	ErrSelfLoop        = errors.New("self loop")
	ErrInvalidNodeSize = errors.New("invalid node count")
)

// GraphError provides structured error information for topology operations.
type GraphError struct {
	Op    string // Operation that failed (e.g., "AddEdge")
	Node  int    // Offending node id, -1 if not applicable
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.Node >= 0 {
		return fmt.Sprintf("%s node %d: %v", e.Op, e.Node, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}
