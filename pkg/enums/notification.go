package enums

import "fmt"

// NotificationKind maps to the notification_kind enum in Postgres.
type NotificationKind string

const (
	NotificationKindAssignmentCreated NotificationKind = "assignment_created"
	NotificationKindAssignmentClosed  NotificationKind = "assignment_closed"
	NotificationKindAssignmentOverdue NotificationKind = "assignment_overdue"
	NotificationKindRequestOverdue    NotificationKind = "request_overdue"
	NotificationKindWarrantyExpiring  NotificationKind = "warranty_expiring"
	NotificationKindRequestAssigned   NotificationKind = "request_assigned"
	NotificationKindRequestDecision   NotificationKind = "request_decision"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindAssignmentCreated,
	NotificationKindAssignmentClosed,
	NotificationKindAssignmentOverdue,
	NotificationKindRequestOverdue,
	NotificationKindWarrantyExpiring,
	NotificationKindRequestAssigned,
	NotificationKindRequestDecision,
}

// String implements fmt.Stringer.
func (k NotificationKind) String() string {
	return string(k)
}

// IsValid reports whether the value matches the canonical notification_kind enum.
func (k NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw input into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
