package enums

import "fmt"

// AssignmentState maps to the assignment_state enum in Postgres.
type AssignmentState string

const (
	AssignmentStateActive   AssignmentState = "active"
	AssignmentStateReturned AssignmentState = "returned"
	AssignmentStateLost     AssignmentState = "lost"
	AssignmentStateDamaged  AssignmentState = "damaged"
)

var validAssignmentStates = []AssignmentState{
	AssignmentStateActive,
	AssignmentStateReturned,
	AssignmentStateLost,
	AssignmentStateDamaged,
}

// String implements fmt.Stringer.
func (s AssignmentState) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical assignment_state enum.
func (s AssignmentState) IsValid() bool {
	for _, candidate := range validAssignmentStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAssignmentState converts raw input into AssignmentState.
func ParseAssignmentState(value string) (AssignmentState, error) {
	for _, candidate := range validAssignmentStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment state %q", value)
}
