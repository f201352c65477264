package orders

import (
	"testing"

	"fournil/models"
)

func TestComputeTotals(t *testing.T) {
	items := []models.OrderItem{
		{PastryID: "p1", Name: "Croissant", Price: 4.50, Quantity: 2},
		{PastryID: "p2", Name: "Chausson", Price: 2.20, Quantity: 1},
	}

	subtotal, total := ComputeTotals(items, 5, 0)
	if subtotal != 11.20 {
		t.Errorf("subtotal = %v, want 11.20", subtotal)
	}
	if total != 16.20 {
		t.Errorf("total = %v, want 16.20", total)
	}
}

func TestComputeTotalsDiscount(t *testing.T) {
	items := []models.OrderItem{{Price: 10, Quantity: 1}}
	_, total := ComputeTotals(items, 0, 2.5)
	if total != 7.5 {
		t.Errorf("total = %v, want 7.5", total)
	}
}

func TestComputeTotalsRoundsToCents(t *testing.T) {
	// 0.1+0.2 style float noise must not leak into the stored totals.
	items := []models.OrderItem{
		{Price: 0.10, Quantity: 1},
		{Price: 0.20, Quantity: 1},
	}
	subtotal, total := ComputeTotals(items, 0, 0)
	if subtotal != 0.30 || total != 0.30 {
		t.Errorf("got subtotal=%v total=%v, want 0.30", subtotal, total)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	subtotal, total := ComputeTotals(nil, 0, 0)
	if subtotal != 0 || total != 0 {
		t.Errorf("empty order should total zero, got %v %v", subtotal, total)
	}
}

func TestValidOrderID(t *testing.T) {
	if !validOrderID("oabc123def456") {
		t.Error("well-formed id rejected")
	}
	for _, id := range []string{"", "abc", "xabc123def456", "oABC123DEF456", "oabc123", "oabc123def4567"} {
		if validOrderID(id) {
			t.Errorf("id %q should be rejected", id)
		}
	}
}
