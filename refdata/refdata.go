package refdata

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"fournil/db"
	"fournil/models"
	"fournil/mq"
	"fournil/refcache"
	"fournil/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// API serves the category and diet reference data. Reads come straight from
// the cache; writes go to Mongo, patch the cache and publish an event so
// other processes refresh too.
type API struct {
	Cache *refcache.Cache
}

func NewAPI(cache *refcache.Cache) *API {
	return &API{Cache: cache}
}

func (api *API) GetCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, api.Cache.Categories())
}

func (api *API) GetDiets(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, api.Cache.Diets())
}

type nameRequest struct {
	Name string `json:"name"`
}

func decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "name is required")
		return "", false
	}
	return name, true
}

func (api *API) CreateCategory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	name, ok := decodeName(w, r)
	if !ok {
		return
	}

	cat := models.Category{CategoryID: "cat" + utils.GenerateName(10), Name: name}
	if _, err := db.CategoryCollection.InsertOne(ctx, cat); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "Category already exists")
			return
		}
		log.Println("CreateCategory error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	api.Cache.AddCategory(cat)
	mq.Emit(ctx, "category-created", cat.CategoryID)
	utils.RespondWithJSON(w, http.StatusCreated, cat)
}

// DeleteCategory removes a category that no pastry references. Deleting one
// still in use is a 409.
func (api *API) DeleteCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	name, ok := api.Cache.CategoryName(id)
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Category not found")
		return
	}

	inUse, err := db.PastryCollection.CountDocuments(ctx, bson.M{"categoryId": id})
	if err != nil {
		log.Println("DeleteCategory count error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	if inUse > 0 {
		utils.RespondWithError(w, http.StatusConflict, "Category is referenced by pastries")
		return
	}

	res, err := db.CategoryCollection.DeleteOne(ctx, bson.M{"categoryid": id})
	if err != nil {
		log.Println("DeleteCategory error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Category not found")
		return
	}

	api.Cache.RemoveCategory(models.Category{CategoryID: id, Name: name})
	mq.Emit(ctx, "category-deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) CreateDiet(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	name, ok := decodeName(w, r)
	if !ok {
		return
	}

	diet := models.Diet{DietID: "diet" + utils.GenerateName(10), Name: name}
	if _, err := db.DietCollection.InsertOne(ctx, diet); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "Diet already exists")
			return
		}
		log.Println("CreateDiet error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create diet")
		return
	}

	api.Cache.AddDiet(diet)
	mq.Emit(ctx, "diet-created", diet.DietID)
	utils.RespondWithJSON(w, http.StatusCreated, diet)
}

func (api *API) DeleteDiet(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	name, ok := api.Cache.DietName(id)
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Diet not found")
		return
	}

	res, err := db.DietCollection.DeleteOne(ctx, bson.M{"dietid": id})
	if err != nil {
		log.Println("DeleteDiet error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete diet")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Diet not found")
		return
	}

	api.Cache.RemoveDiet(models.Diet{DietID: id, Name: name})
	mq.Emit(ctx, "diet-deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// RefreshCache forces a reload from storage, for out-of-band edits.
func (api *API) RefreshCache(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := api.Cache.Refresh(ctx); err != nil {
		log.Println("RefreshCache error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to refresh reference data")
		return
	}
	utils.SendResponse(w, http.StatusOK, utils.M{
		"categories": len(api.Cache.Categories()),
		"diets":      len(api.Cache.Diets()),
	}, "reference data reloaded", nil)
}
