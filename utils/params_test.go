package utils

import (
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 35)
	if p.TotalPages != 4 {
		t.Errorf("expected 4 pages for 35 items at 10 per page, got %d", p.TotalPages)
	}
	if !p.HasNext || !p.HasPrev {
		t.Errorf("page 2 of 4 should have both neighbours: %+v", p)
	}

	p = NewPagination(4, 10, 35)
	if p.HasNext {
		t.Error("last page should not have a next page")
	}

	p = NewPagination(1, 10, 0)
	if p.TotalPages != 0 || p.HasNext || p.HasPrev {
		t.Errorf("empty result set should have no pages: %+v", p)
	}

	p = NewPagination(1, 10, 10)
	if p.TotalPages != 1 || p.HasNext {
		t.Errorf("exact fit should be a single page: %+v", p)
	}
}

func TestParsePage(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=3&limit=25", nil)
	page, limit := ParsePage(r, 12, 100)
	if page != 3 || limit != 25 {
		t.Errorf("got page=%d limit=%d", page, limit)
	}

	r = httptest.NewRequest("GET", "/?page=-1&limit=junk", nil)
	page, limit = ParsePage(r, 12, 100)
	if page != 1 || limit != 12 {
		t.Errorf("malformed params should fall back to defaults, got %d %d", page, limit)
	}

	r = httptest.NewRequest("GET", "/?limit=5000", nil)
	_, limit = ParsePage(r, 12, 100)
	if limit != 100 {
		t.Errorf("limit should be capped at 100, got %d", limit)
	}
}

func TestParseFloatParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/?minPrice=4.5&maxPrice=oops", nil)

	if v := ParseFloatParam(r, "minPrice"); v == nil || *v != 4.5 {
		t.Errorf("expected 4.5, got %v", v)
	}
	if v := ParseFloatParam(r, "maxPrice"); v != nil {
		t.Errorf("malformed value should be nil, got %v", *v)
	}
	if v := ParseFloatParam(r, "absent"); v != nil {
		t.Errorf("absent value should be nil, got %v", *v)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" Tartes , Viennoiseries ,, Tartes ")
	want := []string{"Tartes", "Viennoiseries"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := SplitList(""); got != nil {
		t.Errorf("empty input should be nil, got %v", got)
	}
}
