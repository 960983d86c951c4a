package statemachine

import (
	"fmt"
	"strings"

	"restaurant-api/models"
)

// Transition defines a valid state change
type Transition struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Kitchen picks the order up
	{From: models.StatusPending, To: models.StatusPreparing},
	// Ready dishes go out to the table
	{From: models.StatusPreparing, To: models.StatusDelivering},
	{From: models.StatusDelivering, To: models.StatusDelivered},
	// Any non-terminal order can be canceled
	{From: models.StatusPending, To: models.StatusCanceled},
	{From: models.StatusPreparing, To: models.StatusCanceled},
	{From: models.StatusDelivering, To: models.StatusCanceled},
}

var transitionMap = func() map[Transition]bool {
	m := make(map[Transition]bool, len(validTransitions))
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition checks if an order may move from one state to another.
// Staying in the same state is always accepted.
func CanTransition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("unknown order status %q", to)
	}
	if from == to || transitionMap[Transition{From: from, To: to}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed. Valid transitions from %s are: %s",
		from, to, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
