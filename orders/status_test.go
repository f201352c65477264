package orders

import (
	"testing"

	"fournil/models"
)

func TestHappyPathTransitions(t *testing.T) {
	path := []models.OrderStatus{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReady,
		models.StatusPickedUp,
	}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Errorf("%s -> %s should be allowed", path[i], path[i+1])
		}
	}
}

func TestNoSkippingAhead(t *testing.T) {
	if CanTransition(models.StatusPending, models.StatusReady) {
		t.Error("PENDING must not jump straight to READY")
	}
	if CanTransition(models.StatusConfirmed, models.StatusPickedUp) {
		t.Error("CONFIRMED must not jump straight to PICKED_UP")
	}
}

func TestNoGoingBackwards(t *testing.T) {
	if CanTransition(models.StatusPreparing, models.StatusConfirmed) {
		t.Error("lifecycle must not run backwards")
	}
	if CanTransition(models.StatusReady, models.StatusPending) {
		t.Error("lifecycle must not run backwards")
	}
}

func TestCancellationFromActiveStates(t *testing.T) {
	active := []models.OrderStatus{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReady,
	}
	for _, from := range active {
		if !CanTransition(from, models.StatusCancelled) {
			t.Errorf("%s should be cancellable", from)
		}
		if !CanTransition(from, models.StatusRefunded) {
			t.Errorf("%s should be refundable", from)
		}
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	terminal := []models.OrderStatus{
		models.StatusPickedUp,
		models.StatusCancelled,
		models.StatusRefunded,
	}
	all := []models.OrderStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusPreparing,
		models.StatusReady, models.StatusPickedUp, models.StatusCancelled,
		models.StatusRefunded,
	}
	for _, from := range terminal {
		if !Terminal(from) {
			t.Errorf("%s should be terminal", from)
		}
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("%s -> %s should be rejected", from, to)
			}
		}
	}
}

func TestSelfTransitionRejected(t *testing.T) {
	if CanTransition(models.StatusPending, models.StatusPending) {
		t.Error("no-op transitions are not in the table")
	}
}
