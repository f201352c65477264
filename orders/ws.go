package orders

import (
	"log"
	"net/http"
	"sync"

	"fournil/db"
	"fournil/middleware"
	"fournil/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type statusMessage struct {
	OrderID string             `json:"orderId"`
	Status  models.OrderStatus `json:"status"`
}

// Hub fans status changes out to the sockets watching each order.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]bool)}
}

func (h *Hub) join(orderID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[orderID] == nil {
		h.rooms[orderID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[orderID][conn] = true
}

func (h *Hub) leave(orderID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[orderID], conn)
	if len(h.rooms[orderID]) == 0 {
		delete(h.rooms, orderID)
	}
}

// BroadcastStatus pushes the new status to every socket in the order's room.
// Sockets that fail to write are dropped.
func (h *Hub) BroadcastStatus(orderID string, status models.OrderStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := statusMessage{OrderID: orderID, Status: status}
	for conn := range h.rooms[orderID] {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(h.rooms[orderID], conn)
		}
	}
}

// StatusFeed upgrades the connection and streams status changes for one
// order. Browsers cannot set headers on a websocket handshake, so the token
// rides in the query string.
func (api *API) StatusFeed(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, err := middleware.ValidateJWT(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	orderID := r.URL.Query().Get("orderId")
	if !validOrderID(orderID) {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	filter := bson.M{"orderid": orderID}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleStorekeeper {
		filter["userId"] = claims.UserID
	}
	var order models.Order
	if err := db.OrderCollection.FindOne(r.Context(), filter).Decode(&order); err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("StatusFeed upgrade error:", err)
		return
	}

	api.Hub.join(orderID, conn)
	defer func() {
		api.Hub.leave(orderID, conn)
		conn.Close()
	}()

	// Current state first, so the client never misses a change that landed
	// between the HTTP fetch and the subscribe.
	if err := conn.WriteJSON(statusMessage{OrderID: orderID, Status: order.Status}); err != nil {
		return
	}

	// Drain control frames; the feed is one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
