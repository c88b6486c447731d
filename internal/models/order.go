package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is a frozen snapshot of a product line at order time. Later
// catalog changes never alter it.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Order is the persisted order document. Everything except Status and
// UpdatedAt is immutable once written.
type Order struct {
	ID              primitive.ObjectID     `bson:"_id,omitempty" json:"-"`
	OrderID         string                 `bson:"orderId" json:"orderId"`
	UserID          string                 `bson:"userId" json:"userId"`
	UserEmail       string                 `bson:"userEmail" json:"userEmail"`
	Items           []OrderItem            `bson:"items" json:"items"`
	TotalPrice      float64                `bson:"totalPrice" json:"totalPrice"`
	PaymentMethod   string                 `bson:"paymentMethod" json:"paymentMethod"`
	ShippingDetails map[string]interface{} `bson:"shippingDetails,omitempty" json:"shippingDetails,omitempty"`
	OrderSummary    map[string]interface{} `bson:"orderSummary,omitempty" json:"orderSummary,omitempty"`
	Status          string                 `bson:"status" json:"status"`
	CreatedAt       time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time              `bson:"updatedAt" json:"updatedAt"`
}
