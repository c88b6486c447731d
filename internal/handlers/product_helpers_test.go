package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestNormalizeProductDocumentSeedShapes(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":             "Nebula Print",
		"price":            45.0,
		"category":         "prints",
		"isLimitedEdition": true,
		"totalCopies":      int32(100),
		"soldCopies":       int64(40),
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}

	if len(product.Category) != 1 || product.Category[0] != "prints" {
		t.Errorf("expected string category lifted to list, got %v", product.Category)
	}
	if product.TotalCopies != 100 || product.SoldCopies != 40 {
		t.Errorf("expected coerced copy counts, got total=%d sold=%d", product.TotalCopies, product.SoldCopies)
	}
	if product.AvailableCopies() != 60 {
		t.Errorf("expected 60 available, got %d", product.AvailableCopies())
	}
}

func TestNormalizeProductDocumentMissingLedgerFields(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":  "Sticker",
		"price": 5.0,
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}

	if product.IsLimitedEdition || product.IsSoldOut {
		t.Errorf("expected ledger defaults false, got %+v", product)
	}
	if product.SoldCopies != 0 || product.SalesCount != 0 {
		t.Errorf("expected zeroed counters, got %+v", product)
	}
}

func TestProductJSONHidesWaitlistEmails(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":             "Limited Zine",
		"price":            20.0,
		"isLimitedEdition": true,
		"totalCopies":      int32(10),
		"soldCopies":       int32(10),
		"isSoldOut":        true,
		"waitlistEmails":   []string{"a@example.com"},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}

	body, err := json.Marshal(product)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	jsonBody := string(body)
	if strings.Contains(jsonBody, "a@example.com") {
		t.Fatalf("waitlist emails leaked into response json: %s", jsonBody)
	}
	if !strings.Contains(jsonBody, "\"isSoldOut\":true") {
		t.Fatalf("expected isSoldOut=true in response json, got %s", jsonBody)
	}
}
