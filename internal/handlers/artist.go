package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fanpuri-backend/internal/models"
)

/*
GET /artists
- Aktif sanatçılar, isim sırasıyla
*/
func GetArtists(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /artists"
		defer handlePanic(c, route)

		filter := bson.M{"isActive": bson.M{"$ne": false}}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["name"] = bson.M{"$regex": search, "$options": "i"}
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "name", Value: 1}})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("artists").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		var artists []models.Artist
		if err := cursor.All(ctx, &artists); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": artists})
	}
}

func GetArtist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /artists/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var artist models.Artist
		err = db.Collection("artists").FindOne(ctx, bson.M{"_id": id}).Decode(&artist)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "artist not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, artist)
	}
}
