package ik

import "fmt"

// DegenerateError reports that an IK chain could not be solved because its
// geometry collapsed to a degenerate configuration: coincident joints, a
// zero-length segment, or a target/pole producing a NaN in the solve
// (spec.md §7 IKDegenerate).
type DegenerateError struct {
	Reason string
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("ik: degenerate chain: %s", e.Reason)
}

func degenerate(reason string) error {
	return &DegenerateError{Reason: reason}
}
