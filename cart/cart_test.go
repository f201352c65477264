package cart

import (
	"testing"

	"fournil/models"
)

func TestComputeTotal(t *testing.T) {
	items := []models.CartItem{
		{PastryID: "p1", Price: 4.50, Quantity: 2},
		{PastryID: "p2", Price: 2.20, Quantity: 3},
	}

	got := ComputeTotal(items)
	if got.ItemCount != 2 {
		t.Errorf("itemCount = %d, want 2", got.ItemCount)
	}
	if got.TotalItems != 5 {
		t.Errorf("totalItems = %d, want 5", got.TotalItems)
	}
	want := 4.50*2 + 2.20*3
	if got.Total != want {
		t.Errorf("total = %v, want %v", got.Total, want)
	}
}

func TestComputeTotalEmpty(t *testing.T) {
	got := ComputeTotal(nil)
	if got.Total != 0 || got.ItemCount != 0 || got.TotalItems != 0 {
		t.Errorf("empty cart should be all zeroes, got %+v", got)
	}
}

func TestComputeTotalUsesSnapshotPrice(t *testing.T) {
	// The stored line price is authoritative, whatever the catalog says now.
	items := []models.CartItem{{PastryID: "p1", Price: 3.00, Quantity: 1}}
	if got := ComputeTotal(items); got.Total != 3.00 {
		t.Errorf("total = %v, want 3.00", got.Total)
	}
}
