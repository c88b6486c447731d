package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	artistIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "artistId", Value: 1}},
		Options: options.Index().SetName("artistId_index"),
	}

	limitedIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "isLimitedEdition", Value: 1}, {Key: "isSoldOut", Value: 1}},
		Options: options.Index().
			SetName("limited_soldout_index").
			SetPartialFilterExpression(bson.M{"isLimitedEdition": true}),
	}

	log.Println("EnsureProductIndexes: creating product indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{artistIndex, limitedIndex})
	if err != nil {
		log.Println("EnsureProductIndexes: index error:", err)
		return err
	}
	log.Println("EnsureProductIndexes: product indexes created")
	return nil
}

func EnsureArtistIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("artists").Indexes()

	// Not unique: legacy imports contain duplicate names until the cleanup
	// endpoint merges them.
	nameIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("name_index"),
	}

	log.Println("EnsureArtistIndexes: creating name_index index")
	_, err := indexes.CreateOne(ctx, nameIndex)
	if err != nil {
		log.Println("EnsureArtistIndexes: name index error:", err)
		return err
	}
	log.Println("EnsureArtistIndexes: name_index index created")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	orderIDIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().
			SetName("orderId_unique").
			SetUnique(true),
	}

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("userId_createdAt_index"),
	}

	log.Println("EnsureOrderIndexes: creating order indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{orderIDIndex, userIndex})
	if err != nil {
		log.Println("EnsureOrderIndexes: order index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: order indexes created")
	return nil
}
