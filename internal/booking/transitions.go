package booking

// This file holds the booking status state machine.  The raw graph is
// pending → {confirmed, cancelled} and confirmed → {cancelled,
// completed}; cancelled and completed are terminal with no outgoing
// edges.  Role authorization is layered on top as a single pure
// policy function consulted once per operation, so the owner/admin
// conditionals live in exactly one testable place.

import (
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// transitions maps each status to the set of statuses reachable from it.
var transitions = map[string]map[string]bool{
	model.StatusPending: {
		model.StatusConfirmed: true,
		model.StatusCancelled: true,
	},
	model.StatusConfirmed: {
		model.StatusCancelled: true,
		model.StatusCompleted: true,
	},
}

// canTransition reports whether the raw graph allows current → requested.
// Same-state requests are not edges of the graph; callers treat an
// unchanged status as a no-op before consulting the graph.
func canTransition(current, requested string) bool {
	return transitions[current][requested]
}

// authorizeTransition validates a requested status change for an
// actor.  Authorization failures are checked before graph
// reachability so a caller who may not act on the booking never
// learns which transitions exist:
//
//   - non-admins must own the booking;
//   - only admins may set a booking to confirmed;
//   - non-admins cannot touch a booking in a terminal state;
//   - everyone, admins included, is bound by the transition graph.
func authorizeTransition(role string, isOwner bool, current, requested string) error {
	if role != model.RoleAdmin {
		if !isOwner {
			return repository.ErrForbidden
		}
		if requested == model.StatusConfirmed {
			return repository.ErrForbidden
		}
		if model.IsTerminalStatus(current) {
			return repository.ErrInvalidState
		}
	}
	if !canTransition(current, requested) {
		return repository.ErrInvalidTransition
	}
	return nil
}
