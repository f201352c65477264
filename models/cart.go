package models

import "time"

// CartItem is one line of a user's cart. The price is a snapshot taken when
// the item was added or last re-added, not a live reference to the pastry.
type CartItem struct {
	ItemID     string    `json:"id" bson:"itemid"`
	UserID     string    `json:"-" bson:"userId"`
	PastryID   string    `json:"pastryId" bson:"pastryId"`
	Name       string    `json:"name" bson:"name"`
	Image      string    `json:"image,omitempty" bson:"image,omitempty"`
	CategoryID string    `json:"categoryId" bson:"categoryId"`
	Quantity   int       `json:"quantity" bson:"quantity"`
	Price      float64   `json:"price" bson:"price"`
	AddedAt    time.Time `json:"addedAt" bson:"addedAt"`
}

// Cart is the response shape for GET /cart. A user with no stored items gets
// an empty cart, never a 404.
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartTotal is always recomputed from the current items.
type CartTotal struct {
	Total      float64 `json:"total"`
	ItemCount  int     `json:"itemCount"`
	TotalItems int     `json:"totalItems"`
}
