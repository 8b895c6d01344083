package enums

import "fmt"

// RequestType maps to the request_type enum in Postgres.
type RequestType string

const (
	RequestTypeNewAsset    RequestType = "new_asset"
	RequestTypeRepair      RequestType = "repair"
	RequestTypeReplacement RequestType = "replacement"
	RequestTypeReturn      RequestType = "return"
	RequestTypeUpgrade     RequestType = "upgrade"
)

var validRequestTypes = []RequestType{
	RequestTypeNewAsset,
	RequestTypeRepair,
	RequestTypeReplacement,
	RequestTypeReturn,
	RequestTypeUpgrade,
}

// String implements fmt.Stringer.
func (t RequestType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical request_type enum.
func (t RequestType) IsValid() bool {
	for _, candidate := range validRequestTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseRequestType converts raw input into RequestType.
func ParseRequestType(value string) (RequestType, error) {
	for _, candidate := range validRequestTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request type %q", value)
}

// RequestState maps to the request_state enum in Postgres.
type RequestState string

const (
	RequestStateDraft       RequestState = "draft"
	RequestStateSubmitted   RequestState = "submitted"
	RequestStateUnderReview RequestState = "under_review"
	RequestStateApproved    RequestState = "approved"
	RequestStateRejected    RequestState = "rejected"
	RequestStateInProgress  RequestState = "in_progress"
	RequestStateCompleted   RequestState = "completed"
	RequestStateCancelled   RequestState = "cancelled"
)

var validRequestStates = []RequestState{
	RequestStateDraft,
	RequestStateSubmitted,
	RequestStateUnderReview,
	RequestStateApproved,
	RequestStateRejected,
	RequestStateInProgress,
	RequestStateCompleted,
	RequestStateCancelled,
}

// String implements fmt.Stringer.
func (s RequestState) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical request_state enum.
func (s RequestState) IsValid() bool {
	for _, candidate := range validRequestStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state admits no further transitions.
func (s RequestState) IsTerminal() bool {
	return s == RequestStateRejected || s == RequestStateCompleted || s == RequestStateCancelled
}

// ParseRequestState converts raw input into RequestState.
func ParseRequestState(value string) (RequestState, error) {
	for _, candidate := range validRequestStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request state %q", value)
}

// RequestPriority maps to the request_priority enum in Postgres.
// Priority is set by staff during triage; urgency is the requester's view.
type RequestPriority string

const (
	RequestPriorityLow    RequestPriority = "low"
	RequestPriorityMedium RequestPriority = "medium"
	RequestPriorityHigh   RequestPriority = "high"
	RequestPriorityUrgent RequestPriority = "urgent"
)

var validRequestPriorities = []RequestPriority{
	RequestPriorityLow,
	RequestPriorityMedium,
	RequestPriorityHigh,
	RequestPriorityUrgent,
}

// String implements fmt.Stringer.
func (p RequestPriority) String() string {
	return string(p)
}

// IsValid reports whether the value matches the canonical request_priority enum.
func (p RequestPriority) IsValid() bool {
	for _, candidate := range validRequestPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseRequestPriority converts raw input into RequestPriority.
func ParseRequestPriority(value string) (RequestPriority, error) {
	for _, candidate := range validRequestPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request priority %q", value)
}

// RequestUrgency maps to the request_urgency enum in Postgres.
type RequestUrgency string

const (
	RequestUrgencyLow      RequestUrgency = "low"
	RequestUrgencyMedium   RequestUrgency = "medium"
	RequestUrgencyHigh     RequestUrgency = "high"
	RequestUrgencyCritical RequestUrgency = "critical"
)

var validRequestUrgencies = []RequestUrgency{
	RequestUrgencyLow,
	RequestUrgencyMedium,
	RequestUrgencyHigh,
	RequestUrgencyCritical,
}

// String implements fmt.Stringer.
func (u RequestUrgency) String() string {
	return string(u)
}

// IsValid reports whether the value matches the canonical request_urgency enum.
func (u RequestUrgency) IsValid() bool {
	for _, candidate := range validRequestUrgencies {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseRequestUrgency converts raw input into RequestUrgency.
func ParseRequestUrgency(value string) (RequestUrgency, error) {
	for _, candidate := range validRequestUrgencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request urgency %q", value)
}
