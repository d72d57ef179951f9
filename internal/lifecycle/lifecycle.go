// Package lifecycle holds the order status transition table.
package lifecycle

import (
	"fmt"
	"strings"

	"mandi/internal/errs"
	"mandi/internal/models"
)

// transitions maps a current status to the statuses it may move to and the role allowed
// to trigger each move.
var transitions = map[models.OrderStatus]map[models.OrderStatus]models.Role{
	models.StatusPending: {
		models.StatusConfirmed: models.RoleSupplier,
		models.StatusCancelled: models.RoleSupplier,
	},
	models.StatusConfirmed: {
		models.StatusPreparing: models.RoleSupplier,
	},
	models.StatusPreparing: {
		models.StatusShipped: models.RoleSupplier,
	},
	models.StatusShipped: {
		models.StatusDelivered: models.RoleSupplier,
	},
}

// order lists every status in lifecycle order.
var order = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusShipped,
	models.StatusDelivered,
	models.StatusCancelled,
}

// InvalidTransitionError is returned for any move outside the table.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
	Role models.Role
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q by %s", e.From, e.To, e.Role)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == errs.ErrInvalidTransition }

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (models.OrderStatus, error) {
	st := models.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range order {
		if st == known {
			return st, nil
		}
	}
	return "", errs.Validation("unknown order status %q", s)
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered || s == models.StatusCancelled
}

// Check validates moving from current to target on behalf of role.
// Moving to the current status is not a transition and is rejected.
func Check(current, target models.OrderStatus, role models.Role) error {
	allowed, ok := transitions[current][target]
	if !ok || allowed != role {
		return &InvalidTransitionError{From: current, To: target, Role: role}
	}
	return nil
}

// Allowed lists the statuses role may move an order to from current, in lifecycle order.
func Allowed(current models.OrderStatus, role models.Role) []models.OrderStatus {
	next := make([]models.OrderStatus, 0, 2)
	for _, st := range order {
		if r, ok := transitions[current][st]; ok && r == role {
			next = append(next, st)
		}
	}
	return next
}
