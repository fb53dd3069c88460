package booking

import "github.com/curlmap/curlmap-api/internal/domain/user"

var transitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusRejected},
	StatusAccepted:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusNoShow},
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusConfirmed,
		StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// terminalStatuses lists the statuses no transition leaves
func terminalStatuses() []string {
	var out []string
	for _, s := range []Status{StatusPending, StatusAccepted, StatusRejected, StatusConfirmed,
		StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow} {
		if s.IsTerminal() {
			out = append(out, string(s))
		}
	}
	return out
}

// CanTransitionTo reports whether from -> to is in the transition table
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// RequiresReason reports whether entering s needs a reason
func (s Status) RequiresReason() bool {
	return s == StatusRejected || s == StatusCancelled
}

// MayDrive reports whether role may move a booking into to.
// Providers run the appointment, customers confirm, both may cancel.
func MayDrive(role user.Role, to Status) bool {
	switch role {
	case user.RoleAdmin:
		return true
	case user.RoleProvider:
		switch to {
		case StatusAccepted, StatusRejected, StatusInProgress, StatusCompleted, StatusNoShow, StatusCancelled:
			return true
		}
	case user.RoleCustomer:
		return to == StatusConfirmed || to == StatusCancelled
	}
	return false
}
