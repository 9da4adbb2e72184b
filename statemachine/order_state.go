package statemachine

import (
	"errors"

	"github.com/hermione06/cafeteria-management-system/models"
)

// The order lifecycle:
//
//	pending -> confirmed -> preparing -> ready -> completed
//	(any non-terminal) -> cancelled
//
// Staff drive orders through the kitchen and may jump or move a
// non-terminal order to any other status, including backwards (a
// mis-click from "ready" back to "preparing" must be recoverable).
// completed and cancelled are terminal: once an order reaches either,
// no further transition is permitted, which also means completed_at is
// stamped exactly once and never cleared.

// terminalStatuses are the states with no outgoing transitions.
var terminalStatuses = map[models.OrderStatus]bool{
	models.StatusCompleted: true,
	models.StatusCancelled: true,
}

// IsTerminal reports whether status permits no further transitions.
func IsTerminal(status models.OrderStatus) bool {
	return terminalStatuses[status]
}

// ValidNextStatuses returns the statuses an order can move to from the given
// one, excluding trivial self-assignment. Terminal states return nil.
func ValidNextStatuses(from models.OrderStatus) []models.OrderStatus {
	if IsTerminal(from) {
		return nil
	}
	var nexts []models.OrderStatus
	for _, s := range models.AllStatuses() {
		if s != from {
			nexts = append(nexts, s)
		}
	}
	return nexts
}

// CanTransition checks whether an order may move from one status to another.
// The target must be a valid enum value and the source must not be terminal.
// Setting the current status again on a non-terminal order is a permitted
// no-op jump.
func CanTransition(from, to models.OrderStatus) error {
	if !models.ValidStatus(to) {
		return errors.New("unknown status '" + string(to) + "'. Valid statuses are: " + describeAll())
	}
	if IsTerminal(from) {
		return errors.New(
			"invalid transition: " + string(from) + " is a terminal status, no further transitions are allowed",
		)
	}
	return nil
}

func describeAll() string {
	result := ""
	for i, s := range models.AllStatuses() {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}
