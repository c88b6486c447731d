package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildCreateInput(t *testing.T) {
	productID := primitive.NewObjectID()

	input, err := buildCreateInput(createOrderRequest{
		UserID:        " uid-42 ",
		UserEmail:     "fan@example.com",
		PaymentMethod: "card",
		Items: []createOrderItemRequest{
			{ProductID: productID.Hex(), Quantity: 2},
		},
		ShippingDetails: map[string]interface{}{"city": "Tokyo"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if input.UserID != "uid-42" {
		t.Errorf("expected trimmed userId, got %q", input.UserID)
	}
	if len(input.Items) != 1 || input.Items[0].ProductID != productID || input.Items[0].Quantity != 2 {
		t.Errorf("unexpected items: %+v", input.Items)
	}
	if input.ShippingDetails["city"] != "Tokyo" {
		t.Errorf("shipping details not carried through: %+v", input.ShippingDetails)
	}
}

func TestBuildCreateInputRejectsMissingUser(t *testing.T) {
	_, err := buildCreateInput(createOrderRequest{
		UserEmail: "fan@example.com",
		Items:     []createOrderItemRequest{{ProductID: primitive.NewObjectID().Hex(), Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected error for missing userId")
	}
}

func TestBuildCreateInputRejectsEmptyItems(t *testing.T) {
	_, err := buildCreateInput(createOrderRequest{UserID: "uid-1", UserEmail: "fan@example.com"})
	if err == nil {
		t.Fatal("expected error for empty items")
	}
}

func TestBuildCreateInputRejectsBadProductID(t *testing.T) {
	_, err := buildCreateInput(createOrderRequest{
		UserID:    "uid-1",
		UserEmail: "fan@example.com",
		Items:     []createOrderItemRequest{{ProductID: "not-hex", Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected error for invalid productId")
	}
}

func TestBuildCreateInputRejectsZeroQuantity(t *testing.T) {
	_, err := buildCreateInput(createOrderRequest{
		UserID:    "uid-1",
		UserEmail: "fan@example.com",
		Items:     []createOrderItemRequest{{ProductID: primitive.NewObjectID().Hex(), Quantity: 0}},
	})
	if err == nil {
		t.Fatal("expected error for zero quantity")
	}
}
