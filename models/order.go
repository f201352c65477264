package models

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusPickedUp  OrderStatus = "PICKED_UP"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusRefunded  OrderStatus = "REFUNDED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusPickedUp, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// OrderItem is a frozen snapshot. Editing or deleting the pastry later must
// not change historical orders.
type OrderItem struct {
	PastryID string  `json:"pastryId" bson:"pastryId"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

type Order struct {
	OrderID       string        `json:"id" bson:"orderid"`
	UserID        string        `json:"userId" bson:"userId"`
	Items         []OrderItem   `json:"items" bson:"items"`
	CustomerName  string        `json:"customerName" bson:"customerName"`
	CustomerEmail string        `json:"customerEmail" bson:"customerEmail"`
	CustomerPhone string        `json:"customerPhone" bson:"customerPhone"`
	Subtotal      float64       `json:"subtotal" bson:"subtotal"`
	DeliveryFee   float64       `json:"deliveryFee" bson:"deliveryFee"`
	Discount      float64       `json:"discount" bson:"discount"`
	Total         float64       `json:"total" bson:"total"`
	Status        OrderStatus   `json:"status" bson:"status"`
	PaymentMethod string        `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"paymentStatus"`
	Notes         string        `json:"notes,omitempty" bson:"notes,omitempty"`
	PickupCode    string        `json:"pickupCode,omitempty" bson:"pickupCode,omitempty"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
}
