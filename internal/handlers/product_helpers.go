package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fanpuri-backend/internal/models"
)

// normalizeProductDocument tolerates the loose typing of documents imported
// from the flat-file seed data: string categories, numeric fields stored as
// any BSON number, missing ledger fields.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	if cat, ok := raw["category"].(string); ok {
		raw["category"] = []string{cat}
	}

	for _, key := range []string{"totalCopies", "soldCopies", "salesCount"} {
		raw[key] = coerceInt(raw[key])
	}

	if _, ok := raw["isLimitedEdition"].(bool); !ok {
		raw["isLimitedEdition"] = false
	}
	if _, ok := raw["isSoldOut"].(bool); !ok {
		raw["isSoldOut"] = false
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}

	return p, nil
}

func coerceInt(value interface{}) int {
	switch typed := value.(type) {
	case int32:
		return int(typed)
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case int:
		return typed
	default:
		return 0
	}
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
