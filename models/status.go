// models/status.go
package models

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ActiveStatuses hold resources: they count toward overlap conflicts.
var ActiveStatuses = []string{StatusPending, StatusConfirmed, StatusInProgress}

// ReservingStatuses hold soft inventory reservations while inside the TTL.
var ReservingStatuses = []string{StatusPending, StatusConfirmed}

var transitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
// Completed and cancelled are terminal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

func IsKnownStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
