package catalog

import (
	"context"
	"net/http/httptest"
	"testing"

	"fournil/models"
	"fournil/refcache"

	"go.mongodb.org/mongo-driver/bson"
)

func testCache(t *testing.T) *refcache.Cache {
	t.Helper()
	cache := refcache.NewWithLoader(func(ctx context.Context) ([]models.Category, []models.Diet, error) {
		return []models.Category{
				{CategoryID: "cat1", Name: "Viennoiseries"},
				{CategoryID: "cat2", Name: "Tartes"},
			}, []models.Diet{
				{DietID: "diet1", Name: "Vegan"},
				{DietID: "diet2", Name: "Sans Gluten"},
			}, nil
	})
	if err := cache.Init(context.Background()); err != nil {
		t.Fatalf("cache init: %v", err)
	}
	return cache
}

func TestParseListOptionsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/pastries", nil)
	opts := ParseListOptions(r)

	if opts.Page != 1 || opts.Limit != 12 {
		t.Errorf("expected page 1 limit 12, got %d %d", opts.Page, opts.Limit)
	}
	if opts.MinPrice != nil || opts.MaxPrice != nil {
		t.Error("absent price bounds should be nil")
	}
}

func TestParseListOptionsLenient(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/pastries?page=abc&limit=-4&minPrice=oops&limit=999", nil)
	opts := ParseListOptions(r)

	if opts.Page != 1 {
		t.Errorf("malformed page should fall back to 1, got %d", opts.Page)
	}
	if opts.MinPrice != nil {
		t.Error("malformed minPrice should be nil")
	}
}

func TestParseListOptionsNameFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/pastries?name=croissant", nil)
	if opts := ParseListOptions(r); opts.Query != "croissant" {
		t.Errorf("name param should feed the text query, got %q", opts.Query)
	}
}

func TestBuildFilterResolvesNames(t *testing.T) {
	cache := testCache(t)
	opts := ListOptions{
		Categories: []string{"Viennoiseries", "Inconnue"},
		Diets:      []string{"Vegan"},
	}

	filter := BuildFilter(opts, cache)

	catClause, ok := filter["categoryId"].(bson.M)
	if !ok {
		t.Fatal("expected categoryId clause")
	}
	ids := catClause["$in"].([]string)
	if len(ids) != 1 || ids[0] != "cat1" {
		t.Errorf("unknown category names should be dropped, got %v", ids)
	}

	dietClause := filter["dietIds"].(bson.M)
	if got := dietClause["$in"].([]string); len(got) != 1 || got[0] != "diet1" {
		t.Errorf("expected [diet1], got %v", got)
	}
}

func TestBuildFilterAllUnknownNamesWidens(t *testing.T) {
	cache := testCache(t)
	filter := BuildFilter(ListOptions{Categories: []string{"Inconnue"}}, cache)
	if _, present := filter["categoryId"]; present {
		t.Error("a filter of only unknown names should add no clause at all")
	}
}

func TestBuildFilterPriceAndAvailability(t *testing.T) {
	cache := testCache(t)
	min, max := 2.5, 10.0
	filter := BuildFilter(ListOptions{MinPrice: &min, MaxPrice: &max, Availability: true}, cache)

	price := filter["price"].(bson.M)
	if price["$gte"] != 2.5 || price["$lte"] != 10.0 {
		t.Errorf("unexpected price clause %v", price)
	}
	stock := filter["stockCount"].(bson.M)
	if stock["$gt"] != 0 {
		t.Errorf("unexpected stock clause %v", stock)
	}
}

func TestPartitionFiltersPreserveTagConstraint(t *testing.T) {
	cache := testCache(t)
	base := BuildFilter(ListOptions{Tag: "chocolat"}, cache)

	tagged, untagged := PartitionFilters(base, "Populaire")

	// Both partitions must keep the caller's tag filter ANDed with the
	// priority tag; replacing it would let page contents drift from the
	// counted total.
	taggedAnd, ok := tagged["$and"].([]bson.M)
	if !ok {
		t.Fatalf("tagged partition should carry an $and clause, got %v", tagged)
	}
	if taggedAnd[0]["tags"] != "chocolat" || taggedAnd[1]["tags"] != "Populaire" {
		t.Errorf("tagged partition lost a constraint: %v", taggedAnd)
	}
	if _, present := tagged["tags"]; present {
		t.Errorf("bare tags key should have moved into $and, got %v", tagged)
	}

	untaggedAnd, ok := untagged["$and"].([]bson.M)
	if !ok {
		t.Fatalf("untagged partition should carry an $and clause, got %v", untagged)
	}
	if untaggedAnd[0]["tags"] != "chocolat" {
		t.Errorf("untagged partition lost the caller's tag filter: %v", untaggedAnd)
	}
	neClause, ok := untaggedAnd[1]["tags"].(bson.M)
	if !ok || neClause["$ne"] != "Populaire" {
		t.Errorf("untagged partition should exclude the priority tag: %v", untaggedAnd)
	}

	if base["tags"] != "chocolat" {
		t.Errorf("base filter must not be mutated, got %v", base)
	}
}

func TestPartitionFiltersWithoutTagConstraint(t *testing.T) {
	base := bson.M{"stockCount": bson.M{"$gt": 0}}

	tagged, untagged := PartitionFilters(base, "Nouveau")

	if tagged["tags"] != "Nouveau" {
		t.Errorf("tagged partition should select the priority tag, got %v", tagged)
	}
	if ne := untagged["tags"].(bson.M); ne["$ne"] != "Nouveau" {
		t.Errorf("untagged partition should exclude the priority tag, got %v", untagged)
	}
	if _, present := tagged["stockCount"]; !present {
		t.Error("partitions must keep the rest of the base filter")
	}
}

func TestSortSpec(t *testing.T) {
	spec := SortSpec("price", "desc")
	if spec[0].Key != "price" || spec[0].Value != -1 {
		t.Errorf("unexpected spec %v", spec)
	}

	spec = SortSpec("name", "")
	if spec[0].Key != "name" || spec[0].Value != 1 {
		t.Errorf("default order should be ascending, got %v", spec)
	}

	spec = SortSpec("bogus", "")
	if spec[0].Key != "createdAt" || spec[0].Value != -1 {
		t.Errorf("unknown field with no order should fall back to createdAt desc, got %v", spec)
	}

	spec = SortSpec("bogus", "asc")
	if spec[0].Key != "createdAt" || spec[0].Value != 1 {
		t.Errorf("an explicit asc must survive the field fallback, got %v", spec)
	}
}

func TestSplitWindow(t *testing.T) {
	cases := []struct {
		name                           string
		taggedTotal, skip, limit       int64
		tSkip, tLimit, uSkip, uLimit   int64
	}{
		{"window inside tagged", 10, 0, 5, 0, 5, 0, 0},
		{"window straddles boundary", 3, 0, 5, 0, 3, 0, 2},
		{"window past tagged", 3, 5, 5, 0, 0, 2, 5},
		{"window starts at boundary", 4, 4, 4, 0, 0, 0, 4},
		{"no tagged items", 0, 0, 12, 0, 0, 0, 12},
	}

	for _, c := range cases {
		tSkip, tLimit, uSkip, uLimit := SplitWindow(c.taggedTotal, c.skip, c.limit)
		if tSkip != c.tSkip || tLimit != c.tLimit || uSkip != c.uSkip || uLimit != c.uLimit {
			t.Errorf("%s: got (%d,%d,%d,%d), want (%d,%d,%d,%d)", c.name,
				tSkip, tLimit, uSkip, uLimit, c.tSkip, c.tLimit, c.uSkip, c.uLimit)
		}
	}
}

func TestSplitWindowCoversWholeSequence(t *testing.T) {
	// Paging through tagged=7, untagged=8 with limit 5 must visit every
	// position exactly once.
	const taggedTotal, total, limit = 7, 15, 5
	seen := 0
	for page := 1; ; page++ {
		skip := int64(page-1) * limit
		if skip >= total {
			break
		}
		_, tLimit, _, uLimit := SplitWindow(taggedTotal, skip, limit)
		seen += int(tLimit + uLimit)
	}
	if seen != total {
		t.Errorf("windows covered %d positions, want %d", seen, total)
	}
}
