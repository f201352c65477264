package orders

import "fournil/models"

// transitions is the full lifecycle graph. Terminal states map to an empty
// set; anything not listed for a state is illegal.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled, models.StatusRefunded},
	models.StatusConfirmed: {models.StatusPreparing, models.StatusCancelled, models.StatusRefunded},
	models.StatusPreparing: {models.StatusReady, models.StatusCancelled, models.StatusRefunded},
	models.StatusReady:     {models.StatusPickedUp, models.StatusCancelled, models.StatusRefunded},
	models.StatusPickedUp:  {},
	models.StatusCancelled: {},
	models.StatusRefunded:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from the status.
func Terminal(s models.OrderStatus) bool {
	return len(transitions[s]) == 0
}
