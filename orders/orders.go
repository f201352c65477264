package orders

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"fournil/db"
	"fournil/models"
	"fournil/mq"
	"fournil/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// API carries the order handlers' shared dependencies.
type API struct {
	Hub *Hub
}

func NewAPI(hub *Hub) *API {
	return &API{Hub: hub}
}

type checkoutRequest struct {
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone string  `json:"customerPhone"`
	PaymentMethod string  `json:"paymentMethod"`
	Notes         string  `json:"notes"`
	DeliveryFee   float64 `json:"deliveryFee"`
	Discount      float64 `json:"discount"`
}

// ComputeTotals derives the money fields from the frozen items. Rounded to
// cents so float noise never reaches the stored document.
func ComputeTotals(items []models.OrderItem, deliveryFee, discount float64) (subtotal, total float64) {
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	subtotal = roundCents(subtotal)
	total = roundCents(subtotal + deliveryFee - discount)
	return subtotal, total
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Checkout turns the caller's cart into a PENDING order. Item names and
// prices are copied out of the cart snapshot, so later catalog edits leave
// the order untouched. The cart is cleared on success.
func (api *API) Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.CustomerName == "" || req.CustomerEmail == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "customerName and customerEmail are required")
		return
	}
	if req.DeliveryFee < 0 || req.Discount < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "deliveryFee and discount must not be negative")
		return
	}

	cartItems, err := utils.FindAndDecode[models.CartItem](ctx, db.CartItemCollection, bson.M{"userId": userID})
	if err != nil {
		log.Println("Checkout cart fetch error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}
	if len(cartItems) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	items := make([]models.OrderItem, 0, len(cartItems))
	for _, ci := range cartItems {
		items = append(items, models.OrderItem{
			PastryID: ci.PastryID,
			Name:     ci.Name,
			Price:    ci.Price,
			Quantity: ci.Quantity,
		})
	}

	subtotal, total := ComputeTotals(items, req.DeliveryFee, req.Discount)
	now := time.Now()

	order := models.Order{
		OrderID:       "o" + utils.GenerateName(12),
		UserID:        userID,
		Items:         items,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Subtotal:      subtotal,
		DeliveryFee:   req.DeliveryFee,
		Discount:      req.Discount,
		Total:         total,
		Status:        models.StatusPending,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentPending,
		Notes:         req.Notes,
		PickupCode:    strings.ToUpper(utils.GenerateName(8)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := db.OrderCollection.InsertOne(ctx, order); err != nil {
		log.Println("Checkout insert error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	if _, err := db.CartItemCollection.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		// The order exists; an uncleaned cart is recoverable by the user.
		log.Println("Checkout cart clear error:", err)
	}

	mq.Emit(ctx, "order-created", order.OrderID)
	utils.RespondWithJSON(w, http.StatusCreated, order)
}

// GetMyOrders lists the caller's orders, newest first.
func (api *API) GetMyOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	api.listOrders(ctx, w, r, bson.M{"userId": userID})
}

// GetAllOrders is the staff view of every order, optionally filtered by
// status.
func (api *API) GetAllOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.OrderStatus(strings.ToUpper(raw))
		if !status.Valid() {
			utils.RespondWithError(w, http.StatusBadRequest, "Unknown order status")
			return
		}
		filter["status"] = status
	}

	api.listOrders(ctx, w, r, filter)
}

func (api *API) listOrders(ctx context.Context, w http.ResponseWriter, r *http.Request, filter bson.M) {
	page, limit := utils.ParsePage(r, 20, 100)

	total, err := db.OrderCollection.CountDocuments(ctx, filter)
	if err != nil {
		log.Println("listOrders count error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page-1) * int64(limit)).
		SetLimit(int64(limit))

	list, err := utils.FindAndDecode[models.Order](ctx, db.OrderCollection, filter, findOpts)
	if err != nil {
		log.Println("listOrders find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	if list == nil {
		list = []models.Order{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"data":       list,
		"pagination": utils.NewPagination(page, limit, total),
	})
}

// validOrderID guards the path parameter before it reaches the database.
func validOrderID(id string) bool {
	if len(id) != 13 || id[0] != 'o' {
		return false
	}
	for _, r := range id[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// GetOrder returns one order. Clients only see their own; an order belonging
// to someone else reads as not found. Staff see everything.
func (api *API) GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("orderId")
	if !validOrderID(id) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, ok := api.loadOrderFor(ctx, w, r, id)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// loadOrderFor fetches an order with the caller's visibility applied. On
// failure it writes the response and returns ok=false.
func (api *API) loadOrderFor(ctx context.Context, w http.ResponseWriter, r *http.Request, id string) (models.Order, bool) {
	filter := bson.M{"orderid": id}
	role := utils.GetRoleFromRequest(r)
	if role != models.RoleAdmin && role != models.RoleStorekeeper {
		filter["userId"] = utils.GetUserIDFromRequest(r)
	}

	var order models.Order
	if err := db.OrderCollection.FindOne(ctx, filter).Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
			return models.Order{}, false
		}
		log.Println("loadOrderFor error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch order")
		return models.Order{}, false
	}
	return order, true
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order along its lifecycle. Unknown target statuses
// are a 400; known ones the current state does not allow are a 422. The
// update is conditional on the status read, so two staff racing the same
// order cannot both win.
func (api *API) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("orderId")
	if !validOrderID(id) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	target := models.OrderStatus(strings.ToUpper(req.Status))
	if !target.Valid() {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown order status")
		return
	}

	var current models.Order
	if err := db.OrderCollection.FindOne(ctx, bson.M{"orderid": id}).Decode(&current); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Println("UpdateStatus fetch error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	if !CanTransition(current.Status, target) {
		utils.RespondWithError(w, http.StatusUnprocessableEntity,
			"Cannot move order from "+string(current.Status)+" to "+string(target))
		return
	}

	set := bson.M{"status": target, "updatedAt": time.Now()}
	if target == models.StatusPickedUp {
		set["paymentStatus"] = models.PaymentPaid
	}

	var updated models.Order
	err := db.OrderCollection.FindOneAndUpdate(ctx,
		bson.M{"orderid": id, "status": current.Status},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Lost the race to a concurrent transition.
			utils.RespondWithError(w, http.StatusConflict, "Order status changed concurrently")
			return
		}
		log.Println("UpdateStatus write error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	mq.Emit(ctx, "order-status-changed", id)
	if api.Hub != nil {
		api.Hub.BroadcastStatus(id, updated.Status)
	}
	utils.RespondWithJSON(w, http.StatusOK, updated)
}
