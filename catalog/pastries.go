package catalog

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"fournil/db"
	"fournil/models"
	"fournil/mq"
	"fournil/rdx"
	"fournil/refcache"
	"fournil/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const popularCacheTTL = 5 * time.Minute

// API carries the handlers' shared dependencies.
type API struct {
	Cache *refcache.Cache
}

func NewAPI(cache *refcache.Cache) *API {
	return &API{Cache: cache}
}

// decorate fills the fields derived from reference data before a pastry
// leaves the API.
func (api *API) decorate(p *models.Pastry) {
	if name, ok := api.Cache.CategoryName(p.CategoryID); ok {
		p.CategoryName = name
	}
	p.InStock = p.StockCount > 0
}

// GetPastries lists the catalog with optional filters, sorting and 1-indexed
// pagination. SortBy values naming a priority tag switch into the two-
// partition ordering handled by listTagPriority.
func (api *API) GetPastries(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := ParseListOptions(r)
	filter := BuildFilter(opts, api.Cache)

	if PriorityTags[opts.SortBy] {
		api.listTagPriority(ctx, w, filter, opts)
		return
	}

	total, err := db.PastryCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Println("GetPastries CountDocuments error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch pastries")
		return
	}

	skip := int64(opts.Page-1) * int64(opts.Limit)
	findOpts := options.Find().
		SetSort(SortSpec(opts.SortBy, opts.Order)).
		SetSkip(skip).
		SetLimit(int64(opts.Limit))

	pastries, err := utils.FindAndDecode[models.Pastry](ctx, db.PastryCollection, filter, findOpts)
	if err != nil {
		log.Println("GetPastries Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch pastries")
		return
	}

	api.respondPage(w, pastries, opts, total)
}

// listTagPriority runs the two-partition listing: documents carrying the
// priority tag first, then the rest, both newest-first, with the pagination
// window laid across the concatenated sequence.
func (api *API) listTagPriority(ctx context.Context, w http.ResponseWriter, filter bson.M, opts ListOptions) {
	tagged, untagged := PartitionFilters(filter, opts.SortBy)

	total, err := db.PastryCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Println("listTagPriority count error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch pastries")
		return
	}
	taggedTotal, err := db.PastryCollection.CountDocuments(ctx, tagged)
	if err != nil {
		log.Println("listTagPriority tagged count error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch pastries")
		return
	}

	skip := int64(opts.Page-1) * int64(opts.Limit)
	tSkip, tLimit, uSkip, uLimit := SplitWindow(taggedTotal, skip, int64(opts.Limit))
	newestFirst := bson.D{{Key: "createdAt", Value: -1}}

	pastries := make([]models.Pastry, 0, opts.Limit)
	if tLimit > 0 {
		part, err := utils.FindAndDecode[models.Pastry](ctx, db.PastryCollection, tagged,
			options.Find().SetSort(newestFirst).SetSkip(tSkip).SetLimit(tLimit))
		if err != nil {
			log.Println("listTagPriority tagged find error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch pastries")
			return
		}
		pastries = append(pastries, part...)
	}
	if uLimit > 0 {
		part, err := utils.FindAndDecode[models.Pastry](ctx, db.PastryCollection, untagged,
			options.Find().SetSort(newestFirst).SetSkip(uSkip).SetLimit(uLimit))
		if err != nil {
			log.Println("listTagPriority untagged find error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch pastries")
			return
		}
		pastries = append(pastries, part...)
	}

	api.respondPage(w, pastries, opts, total)
}

func (api *API) respondPage(w http.ResponseWriter, pastries []models.Pastry, opts ListOptions, total int64) {
	if pastries == nil {
		pastries = []models.Pastry{}
	}
	for i := range pastries {
		api.decorate(&pastries[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"data":       pastries,
		"pagination": utils.NewPagination(opts.Page, opts.Limit, total),
	})
}

// GetPopular serves the "Populaire"-tagged, in-stock pastries, newest first.
// The rendered response sits in Redis for a few minutes; catalog writes drop
// the key through the event worker.
func (api *API) GetPopular(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 50 {
		limit = 8
	}

	cacheKey := "popular:pastries:" + strconv.Itoa(limit)
	if cached, err := rdx.RdxGet(cacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(cached))
		return
	}

	filter := bson.M{"tags": "Populaire", "stockCount": bson.M{"$gt": 0}}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	pastries, err := utils.FindAndDecode[models.Pastry](ctx, db.PastryCollection, filter, findOpts)
	if err != nil {
		log.Println("GetPopular Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch popular pastries")
		return
	}
	if pastries == nil {
		pastries = []models.Pastry{}
	}
	for i := range pastries {
		api.decorate(&pastries[i])
	}

	if payload, err := json.Marshal(pastries); err == nil {
		if err := rdx.SetWithExpiry(cacheKey, string(payload), popularCacheTTL); err != nil {
			log.Println("GetPopular cache write failed:", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, pastries)
}

func (api *API) GetPastry(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	api.getOne(w, r, bson.M{"pastryid": ps.ByName("id")})
}

func (api *API) GetPastryBySlug(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	api.getOne(w, r, bson.M{"slug": ps.ByName("slug")})
}

func (api *API) getOne(w http.ResponseWriter, r *http.Request, filter bson.M) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var pastry models.Pastry
	if err := db.PastryCollection.FindOne(ctx, filter).Decode(&pastry); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Pastry not found")
			return
		}
		log.Println("getOne FindOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch pastry")
		return
	}

	api.decorate(&pastry)
	utils.RespondWithJSON(w, http.StatusOK, pastry)
}

// CreatePastry inserts a new catalog entry. The slug is derived from the
// name; a name slugging to an already-used value is a 409, backed by the
// unique index for the concurrent case.
func (api *API) CreatePastry(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var pastry models.Pastry
	if err := json.NewDecoder(r.Body).Decode(&pastry); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if pastry.Name == "" || pastry.Price < 0 || pastry.StockCount < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}
	if !api.resolveCategory(&pastry) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	pastry.PastryID = "p" + utils.GenerateName(12)
	pastry.Slug = Slugify(pastry.Name)
	pastry.InStock = pastry.StockCount > 0
	pastry.CreatedAt = time.Now()
	pastry.UpdatedAt = pastry.CreatedAt
	if pastry.Images == nil {
		pastry.Images = []string{}
	}
	if pastry.Tags == nil {
		pastry.Tags = []string{}
	}
	if pastry.DietIDs == nil {
		pastry.DietIDs = []string{}
	}
	if pastry.Ingredients == nil {
		pastry.Ingredients = []string{}
	}

	if taken, err := api.slugTaken(ctx, pastry.Slug, ""); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create pastry")
		return
	} else if taken {
		utils.RespondWithError(w, http.StatusConflict, "A pastry with this name already exists")
		return
	}

	if _, err := db.PastryCollection.InsertOne(ctx, pastry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "A pastry with this name already exists")
			return
		}
		log.Println("CreatePastry InsertOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create pastry")
		return
	}

	mq.Emit(ctx, "pastry-created", pastry.PastryID)
	api.decorate(&pastry)
	utils.RespondWithJSON(w, http.StatusCreated, pastry)
}

// updatePayload uses pointers so absent fields are left untouched.
type updatePayload struct {
	Name            *string           `json:"name"`
	Description     *string           `json:"description"`
	Price           *float64          `json:"price"`
	Images          []string          `json:"images"`
	CategoryID      *string           `json:"categoryId"`
	Category        *string           `json:"category"`
	SubCategory     *string           `json:"subCategory"`
	DietIDs         []string          `json:"dietIds"`
	Tags            []string          `json:"tags"`
	Ingredients     []string          `json:"ingredients"`
	Nutrition       *models.Nutrition `json:"nutrition"`
	StockCount      *int              `json:"stockCount"`
	OnSale          *bool             `json:"onSale"`
	AvailableDays   []string          `json:"availableDays"`
	PreparationTime *int              `json:"preparationTime"`
	SearchKeywords  []string          `json:"searchKeywords"`
}

func (api *API) UpdatePastry(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")

	var payload updatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	set := bson.M{"updatedAt": time.Now()}

	if payload.Name != nil {
		if *payload.Name == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Name cannot be empty")
			return
		}
		slug := Slugify(*payload.Name)
		if taken, err := api.slugTaken(ctx, slug, id); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update pastry")
			return
		} else if taken {
			utils.RespondWithError(w, http.StatusConflict, "A pastry with this name already exists")
			return
		}
		set["name"] = *payload.Name
		set["slug"] = slug
	}
	if payload.Description != nil {
		set["description"] = *payload.Description
	}
	if payload.Price != nil {
		if *payload.Price < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Price must not be negative")
			return
		}
		set["price"] = *payload.Price
	}
	if payload.Images != nil {
		set["images"] = payload.Images
	}
	if payload.CategoryID != nil || payload.Category != nil {
		var probe models.Pastry
		if payload.CategoryID != nil {
			probe.CategoryID = *payload.CategoryID
		}
		if payload.Category != nil {
			probe.CategoryName = *payload.Category
		}
		if !api.resolveCategory(&probe) {
			utils.RespondWithError(w, http.StatusBadRequest, "Unknown category")
			return
		}
		set["categoryId"] = probe.CategoryID
	}
	if payload.SubCategory != nil {
		set["subCategory"] = *payload.SubCategory
	}
	if payload.DietIDs != nil {
		set["dietIds"] = payload.DietIDs
	}
	if payload.Tags != nil {
		set["tags"] = payload.Tags
	}
	if payload.Ingredients != nil {
		set["ingredients"] = payload.Ingredients
	}
	if payload.Nutrition != nil {
		set["nutrition"] = *payload.Nutrition
	}
	if payload.StockCount != nil {
		if *payload.StockCount < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Stock count must not be negative")
			return
		}
		set["stockCount"] = *payload.StockCount
		set["inStock"] = *payload.StockCount > 0
	}
	if payload.OnSale != nil {
		set["onSale"] = *payload.OnSale
	}
	if payload.AvailableDays != nil {
		set["availableDays"] = payload.AvailableDays
	}
	if payload.PreparationTime != nil {
		set["preparationTime"] = *payload.PreparationTime
	}
	if payload.SearchKeywords != nil {
		set["searchKeywords"] = payload.SearchKeywords
	}

	var updated models.Pastry
	err := db.PastryCollection.FindOneAndUpdate(ctx,
		bson.M{"pastryid": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Pastry not found")
			return
		}
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "A pastry with this name already exists")
			return
		}
		log.Println("UpdatePastry error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update pastry")
		return
	}

	mq.Emit(ctx, "pastry-updated", id)
	api.decorate(&updated)
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func (api *API) DeletePastry(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	res, err := db.PastryCollection.DeleteOne(ctx, bson.M{"pastryid": id})
	if err != nil {
		log.Println("DeletePastry error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete pastry")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Pastry not found")
		return
	}

	mq.Emit(ctx, "pastry-deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// resolveCategory accepts either a known category id or a category name the
// cache can resolve; the id ends up in CategoryID either way.
func (api *API) resolveCategory(p *models.Pastry) bool {
	if p.CategoryID != "" {
		_, ok := api.Cache.CategoryName(p.CategoryID)
		return ok
	}
	if p.CategoryName != "" {
		id, ok := api.Cache.CategoryID(p.CategoryName)
		if ok {
			p.CategoryID = id
		}
		return ok
	}
	return false
}

// slugTaken reports whether another pastry already owns the slug. The unique
// index remains the authority under concurrency; this lookup exists for the
// friendly error message.
func (api *API) slugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	filter := bson.M{"slug": slug}
	if excludeID != "" {
		filter["pastryid"] = bson.M{"$ne": excludeID}
	}
	err := db.PastryCollection.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		log.Println("slugTaken FindOne error:", err)
		return false, err
	}
	return true, nil
}
