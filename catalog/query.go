package catalog

import (
	"net/http"
	"strings"

	"fournil/refcache"
	"fournil/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// PriorityTags are the sort keys that switch the listing into tag-priority
// mode: tagged items are promoted ahead of the rest of the result set.
var PriorityTags = map[string]bool{
	"Populaire": true,
	"Nouveau":   true,
}

// sortFields whitelists what a client may order by in normal mode.
var sortFields = map[string]string{
	"name":       "name",
	"price":      "price",
	"createdAt":  "createdAt",
	"stockCount": "stockCount",
}

// ListOptions carries the parsed catalog filter parameters. Every field is
// optional; malformed values have already been coerced away by parsing.
type ListOptions struct {
	Query        string
	Categories   []string
	Diets        []string
	Tag          string
	MinPrice     *float64
	MaxPrice     *float64
	Availability bool
	SortBy       string
	Order        string
	Page         int
	Limit        int
}

// ParseListOptions is lenient by design: a bad number or unknown flag value
// falls back to the default instead of erroring.
func ParseListOptions(r *http.Request) ListOptions {
	q := r.URL.Query()
	page, limit := utils.ParsePage(r, 12, 100)

	text := q.Get("query")
	if text == "" {
		text = q.Get("name")
	}

	return ListOptions{
		Query:        strings.TrimSpace(text),
		Categories:   utils.SplitList(q.Get("categories")),
		Diets:        utils.SplitList(q.Get("diets")),
		Tag:          strings.TrimSpace(q.Get("tags")),
		MinPrice:     utils.ParseFloatParam(r, "minPrice"),
		MaxPrice:     utils.ParseFloatParam(r, "maxPrice"),
		Availability: q.Get("availability") == "true",
		SortBy:       q.Get("sortBy"),
		Order:        q.Get("order"),
		Page:         page,
		Limit:        limit,
	}
}

// BuildFilter translates the options into a Mongo filter. Category and diet
// names resolve through the reference cache; names the cache does not know
// are dropped silently, so a typo'd filter widens the result set rather than
// emptying it.
func BuildFilter(opts ListOptions, cache *refcache.Cache) bson.M {
	filter := bson.M{}

	if opts.Query != "" {
		pattern := bson.M{"$regex": opts.Query, "$options": "i"}
		filter["$or"] = []bson.M{
			{"name": pattern},
			{"description": pattern},
			{"searchKeywords": pattern},
		}
	}

	if ids := resolveCategories(opts.Categories, cache); len(ids) > 0 {
		filter["categoryId"] = bson.M{"$in": ids}
	}
	if ids := resolveDiets(opts.Diets, cache); len(ids) > 0 {
		filter["dietIds"] = bson.M{"$in": ids}
	}

	if opts.Tag != "" {
		filter["tags"] = opts.Tag
	}

	if opts.MinPrice != nil || opts.MaxPrice != nil {
		price := bson.M{}
		if opts.MinPrice != nil {
			price["$gte"] = *opts.MinPrice
		}
		if opts.MaxPrice != nil {
			price["$lte"] = *opts.MaxPrice
		}
		filter["price"] = price
	}

	if opts.Availability {
		filter["stockCount"] = bson.M{"$gt": 0}
	}

	return filter
}

func resolveCategories(names []string, cache *refcache.Cache) []string {
	var ids []string
	for _, name := range names {
		if id, ok := cache.CategoryID(name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func resolveDiets(names []string, cache *refcache.Cache) []string {
	var ids []string
	for _, name := range names {
		if id, ok := cache.DietID(name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// PartitionFilters derives the two tag-priority partition filters from the
// base filter. The priority-tag condition is ANDed with whatever tag
// constraint the base filter already carries, never substituted for it, so
// both partitions stay subsets of the filtered result set.
func PartitionFilters(base bson.M, tag string) (tagged, untagged bson.M) {
	tagged = cloneFilter(base)
	untagged = cloneFilter(base)

	if existing, ok := base["tags"]; ok {
		delete(tagged, "tags")
		delete(untagged, "tags")
		tagged["$and"] = []bson.M{{"tags": existing}, {"tags": tag}}
		untagged["$and"] = []bson.M{{"tags": existing}, {"tags": bson.M{"$ne": tag}}}
	} else {
		tagged["tags"] = tag
		untagged["tags"] = bson.M{"$ne": tag}
	}
	return tagged, untagged
}

func cloneFilter(filter bson.M) bson.M {
	out := bson.M{}
	for k, v := range filter {
		out[k] = v
	}
	return out
}

// SortSpec maps the requested ordering onto a whitelisted field, ascending
// unless order=desc. An unknown field falls back to creation time, newest
// first unless the client explicitly asked for ascending.
func SortSpec(sortBy, order string) bson.D {
	field, ok := sortFields[sortBy]
	if !ok {
		field = "createdAt"
	}
	dir := 1
	switch {
	case order == "desc":
		dir = -1
	case order == "" && !ok:
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}}
}

// SplitWindow places a single pagination window of size limit starting at
// skip across two concatenated partitions, where the first partition holds
// taggedTotal documents. Tag-priority listings paginate over the tagged and
// untagged partitions as one sequence, so the window may straddle both.
func SplitWindow(taggedTotal, skip, limit int64) (tSkip, tLimit, uSkip, uLimit int64) {
	if skip < taggedTotal {
		tSkip = skip
		tLimit = min64(limit, taggedTotal-skip)
		uSkip = 0
		uLimit = limit - tLimit
	} else {
		tLimit = 0
		uSkip = skip - taggedTotal
		uLimit = limit
	}
	return tSkip, tLimit, uSkip, uLimit
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
