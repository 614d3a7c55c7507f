package engine

import (
	"fmt"
)

// InvalidCartError is returned when the request itself is structurally
// invalid (empty cart, non-positive quantity or price). It is the only error
// class that aborts an optimization.
type InvalidCartError struct {
	Reason string
}

func (e InvalidCartError) Error() string {
	return "invalid cart: " + e.Reason
}

// PartialDataError marks a failed or timed-out alternative lookup for a
// single line item. It is logged and swallowed: the affected item simply
// contributes no alternatives.
type PartialDataError struct {
	ProductID string
	Err       error
}

func (e PartialDataError) Error() string {
	return fmt.Sprintf("alternative lookup for %s failed: %v", e.ProductID, e.Err)
}

func (e PartialDataError) Unwrap() error {
	return e.Err
}
