package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"fournil/db"
	"fournil/models"
	"fournil/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fetchItems loads a user's cart lines, oldest first.
func fetchItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	return utils.FindAndDecode[models.CartItem](ctx, db.CartItemCollection,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "addedAt", Value: 1}}))
}

// GetCart returns the caller's cart. A user who never added anything gets an
// empty cart, not a 404.
func GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	items, err := fetchItems(ctx, userID)
	if err != nil {
		log.Println("GetCart error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}
	if items == nil {
		items = []models.CartItem{}
	}

	var updatedAt time.Time
	for _, item := range items {
		if item.AddedAt.After(updatedAt) {
			updatedAt = item.AddedAt
		}
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	utils.RespondWithJSON(w, http.StatusOK, models.Cart{
		UserID:    userID,
		Items:     items,
		UpdatedAt: updatedAt,
	})
}

type addRequest struct {
	PastryID string `json:"pastryId"`
	Quantity int    `json:"quantity"`
}

// AddToCart adds a pastry to the caller's cart. Adding a pastry that is
// already present increments its quantity and refreshes the price snapshot to
// the pastry's current price.
func AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.PastryID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "pastryId is required")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var pastry models.Pastry
	if err := db.PastryCollection.FindOne(ctx, bson.M{"pastryid": req.PastryID}).Decode(&pastry); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Pastry not found")
			return
		}
		log.Println("AddToCart pastry lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add to cart")
		return
	}

	image := ""
	if len(pastry.Images) > 0 {
		image = pastry.Images[0]
	}

	// One row per (user, pastry), enforced by the unique index. The upsert
	// bumps the quantity and re-snapshots the price in a single write, so
	// concurrent adds never race a read-modify-write cycle.
	filter := bson.M{"userId": userID, "pastryId": req.PastryID}
	update := bson.M{
		"$inc": bson.M{"quantity": req.Quantity},
		"$set": bson.M{
			"name":       pastry.Name,
			"image":      image,
			"categoryId": pastry.CategoryID,
			"price":      pastry.Price,
			"addedAt":    time.Now(),
		},
		"$setOnInsert": bson.M{
			"itemid": "ci" + utils.GenerateName(12),
			"userId": userID,
		},
	}

	var item models.CartItem
	err := db.CartItemCollection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&item)
	if err != nil {
		log.Println("AddToCart upsert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add to cart")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, item)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItemQuantity sets the absolute quantity of a cart line. A quantity of
// zero or less removes the line.
func UpdateItemQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	itemID := ps.ByName("itemId")

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	// Ownership rides in the filter: another user's item id behaves exactly
	// like a missing one.
	filter := bson.M{"itemid": itemID, "userId": userID}

	if req.Quantity <= 0 {
		res, err := db.CartItemCollection.DeleteOne(ctx, filter)
		if err != nil {
			log.Println("UpdateItemQuantity delete error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update cart")
			return
		}
		if res.DeletedCount == 0 {
			utils.RespondWithError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"removed": true})
		return
	}

	var item models.CartItem
	err := db.CartItemCollection.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"quantity": req.Quantity}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		log.Println("UpdateItemQuantity error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, item)
}

func RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	itemID := ps.ByName("itemId")

	res, err := db.CartItemCollection.DeleteOne(ctx, bson.M{"itemid": itemID, "userId": userID})
	if err != nil {
		log.Println("RemoveItem error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"removed": true})
}

// ClearCart empties the caller's cart. Clearing an already-empty cart
// succeeds.
func ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if _, err := db.CartItemCollection.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		log.Println("ClearCart error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"cleared": true})
}

// ComputeTotal sums the snapshot prices of the given lines.
func ComputeTotal(items []models.CartItem) models.CartTotal {
	var t models.CartTotal
	t.ItemCount = len(items)
	for _, item := range items {
		t.Total += item.Price * float64(item.Quantity)
		t.TotalItems += item.Quantity
	}
	return t
}

// GetTotal recomputes the cart total from the stored lines on every call.
func GetTotal(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	items, err := fetchItems(ctx, userID)
	if err != nil {
		log.Println("GetTotal error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to compute cart total")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ComputeTotal(items))
}
