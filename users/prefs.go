package users

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"fournil/db"
	"fournil/models"
	"fournil/refcache"
	"fournil/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// API holds the dietary-preference handlers' dependencies.
type API struct {
	Cache *refcache.Cache
}

func NewAPI(cache *refcache.Cache) *API {
	return &API{Cache: cache}
}

// GetAvailableDiets lists every diet a preference may reference. Public, so
// the signup form can show the choices before an account exists.
func (api *API) GetAvailableDiets(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, api.Cache.Diets())
}

// dietView is a preference entry resolved to its display name.
type dietView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (api *API) resolve(ids []string) []dietView {
	out := make([]dietView, 0, len(ids))
	for _, id := range ids {
		if name, ok := api.Cache.DietName(id); ok {
			out = append(out, dietView{ID: id, Name: name})
		}
	}
	return out
}

// GetPreferences returns the caller's dietary preferences with names
// resolved. Preferences pointing at a deleted diet are dropped from the view.
func (api *API) GetPreferences(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Println("GetPreferences error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch preferences")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"diets": api.resolve(user.DietIDs)})
}

type prefsRequest struct {
	DietIDs []string `json:"dietIds"`
}

// SetPreferences replaces the caller's preference set. Every id must name a
// known diet.
func (api *API) SetPreferences(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)

	var req prefsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	ids := dedupe(req.DietIDs)
	for _, id := range ids {
		if _, ok := api.Cache.DietName(id); !ok {
			utils.RespondWithError(w, http.StatusBadRequest, "Unknown diet: "+id)
			return
		}
	}

	if err := api.writeDietIDs(ctx, userID, ids); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Println("SetPreferences error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"diets": api.resolve(ids)})
}

// AddPreference appends one diet to the set. Adding a diet already present is
// a no-op success.
func (api *API) AddPreference(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	dietID := ps.ByName("dietId")

	if _, ok := api.Cache.DietName(dietID); !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown diet: "+dietID)
		return
	}

	var user models.User
	err := db.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"userid": userID},
		bson.M{
			"$addToSet": bson.M{"dietIds": dietID},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Println("AddPreference error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"diets": api.resolve(user.DietIDs)})
}

// RemovePreference drops one diet from the set. Removing an absent diet is a
// no-op success.
func (api *API) RemovePreference(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	dietID := ps.ByName("dietId")

	var user models.User
	err := db.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"userid": userID},
		bson.M{
			"$pull": bson.M{"dietIds": dietID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Println("RemovePreference error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"diets": api.resolve(user.DietIDs)})
}

func (api *API) writeDietIDs(ctx context.Context, userID string, ids []string) error {
	return db.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"userid": userID},
		bson.M{"$set": bson.M{"dietIds": ids, "updatedAt": time.Now()}},
	).Err()
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool)
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		out = append(out, v)
		seen[v] = true
	}
	return out
}
