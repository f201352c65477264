package refcache

import (
	"context"
	"errors"
	"testing"

	"fournil/models"
)

func fixedLoader(calls *int) LoadFunc {
	return func(ctx context.Context) ([]models.Category, []models.Diet, error) {
		*calls++
		return []models.Category{{CategoryID: "cat1", Name: "Tartes"}},
			[]models.Diet{{DietID: "diet1", Name: "Vegan"}}, nil
	}
}

func TestInitAndLookups(t *testing.T) {
	calls := 0
	c := NewWithLoader(fixedLoader(&calls))
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	if id, ok := c.CategoryID("Tartes"); !ok || id != "cat1" {
		t.Errorf("CategoryID = %q %v", id, ok)
	}
	if name, ok := c.CategoryName("cat1"); !ok || name != "Tartes" {
		t.Errorf("CategoryName = %q %v", name, ok)
	}
	if id, ok := c.DietID("Vegan"); !ok || id != "diet1" {
		t.Errorf("DietID = %q %v", id, ok)
	}
	if _, ok := c.CategoryID("Inconnue"); ok {
		t.Error("unknown name should miss")
	}
}

func TestInitIdempotent(t *testing.T) {
	calls := 0
	c := NewWithLoader(fixedLoader(&calls))

	for i := 0; i < 3; i++ {
		if err := c.Init(context.Background()); err != nil {
			t.Fatalf("init %d: %v", i, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader ran %d times, want 1", calls)
	}
}

func TestInitRetryAfterFailure(t *testing.T) {
	fail := true
	c := NewWithLoader(func(ctx context.Context) ([]models.Category, []models.Diet, error) {
		if fail {
			return nil, nil, errors.New("storage down")
		}
		return []models.Category{{CategoryID: "cat1", Name: "Tartes"}}, nil, nil
	})

	if err := c.Init(context.Background()); err == nil {
		t.Fatal("expected first init to fail")
	}
	if _, ok := c.CategoryID("Tartes"); ok {
		t.Error("failed init must not leave partial data")
	}

	fail = false
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if _, ok := c.CategoryID("Tartes"); !ok {
		t.Error("retry should have populated the cache")
	}
}

func TestRefreshReplacesContents(t *testing.T) {
	generation := 0
	c := NewWithLoader(func(ctx context.Context) ([]models.Category, []models.Diet, error) {
		generation++
		if generation == 1 {
			return []models.Category{{CategoryID: "cat1", Name: "Tartes"}}, nil, nil
		}
		return []models.Category{{CategoryID: "cat2", Name: "Viennoiseries"}}, nil, nil
	})

	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if _, ok := c.CategoryID("Tartes"); ok {
		t.Error("stale entry survived refresh")
	}
	if id, ok := c.CategoryID("Viennoiseries"); !ok || id != "cat2" {
		t.Errorf("refreshed entry missing, got %q %v", id, ok)
	}
}

func TestAddRemove(t *testing.T) {
	calls := 0
	c := NewWithLoader(fixedLoader(&calls))
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	c.AddCategory(models.Category{CategoryID: "cat9", Name: "Biscuits"})
	if id, ok := c.CategoryID("Biscuits"); !ok || id != "cat9" {
		t.Errorf("added category missing, got %q %v", id, ok)
	}

	c.RemoveCategory(models.Category{CategoryID: "cat9", Name: "Biscuits"})
	if _, ok := c.CategoryID("Biscuits"); ok {
		t.Error("removed category still resolvable")
	}

	c.AddDiet(models.Diet{DietID: "diet9", Name: "Halal"})
	if len(c.Diets()) != 2 {
		t.Errorf("expected 2 diets, got %d", len(c.Diets()))
	}
	c.RemoveDiet(models.Diet{DietID: "diet9", Name: "Halal"})
	if len(c.Diets()) != 1 {
		t.Errorf("expected 1 diet, got %d", len(c.Diets()))
	}
}
