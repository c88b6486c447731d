package handlers

import (
	"context"
	"log"
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

type ArtistCreateRequest struct {
	Name      string `json:"name" binding:"required"`
	Bio       string `json:"bio"`
	ImagePath string `json:"imagePath"`
	IsActive  *bool  `json:"isActive"`
}

type ArtistUpdateRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	ImagePath *string `json:"imagePath"`
	IsActive  *bool   `json:"isActive"`
}

/*
POST /admin/api/artists
- Aynı isimli sanatçı eklenemez
*/
func CreateArtist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/artists"
		defer handlePanic(c, route)

		var req ArtistCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "name required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("artists").CountDocuments(
			ctx,
			bson.M{"name": bson.M{"$regex": "^" + escapeRegex(name) + "$", "$options": "i"}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "artist already exists")
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		artist := models.Artist{
			Name:      name,
			Bio:       strings.TrimSpace(req.Bio),
			ImagePath: strings.TrimSpace(req.ImagePath),
			IsActive:  isActive,
			CreatedAt: time.Now(),
		}

		result, err := db.Collection("artists").InsertOne(ctx, artist)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		artist.ID = result.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, artist)
	}
}

/*
PUT /admin/api/artists/:id
*/
func UpdateArtist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/artists/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req ArtistUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		update := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			update["name"] = name
		}
		if req.Bio != nil {
			update["bio"] = strings.TrimSpace(*req.Bio)
		}
		if req.ImagePath != nil {
			update["imagePath"] = strings.TrimSpace(*req.ImagePath)
		}
		if req.IsActive != nil {
			update["isActive"] = *req.IsActive
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Artist
		err = db.Collection("artists").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)

		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "artist not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Keep the denormalized artistName on products in step.
		if name, ok := update["name"]; ok {
			_, err := db.Collection("products").UpdateMany(
				ctx,
				bson.M{"artistId": id},
				bson.M{"$set": bson.M{"artistName": name, "updatedAt": time.Now()}},
			)
			if err != nil {
				log.Printf("[%s] artistName sync failed for %s: %v", route, id.Hex(), err)
			}
		}

		c.JSON(http.StatusOK, updated)
	}
}

/*
DELETE /admin/api/artists/:id
- Soft delete (pasife çekme)
*/
func DeleteArtist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/artists/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("artists").UpdateOne(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"isActive": false}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if result.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "artist not found")
			return
		}

		c.Status(http.StatusNoContent)
	}
}

/*
POST /admin/api/artists/cleanup-duplicates
- İsmi aynı olan sanatçıları birleştirir: en eski kayıt kalır, ürünler ona
  taşınır, kalanlar silinir.
*/
func CleanupDuplicateArtists(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/artists/cleanup-duplicates"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
		cursor, err := db.Collection("artists").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		var artists []models.Artist
		if err := cursor.All(ctx, &artists); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		keeperByName := make(map[string]models.Artist)
		merged := 0

		for _, artist := range artists {
			key := strings.ToLower(strings.TrimSpace(artist.Name))
			keeper, ok := keeperByName[key]
			if !ok {
				keeperByName[key] = artist
				continue
			}

			// Oldest record wins; repoint products, then drop the duplicate.
			_, err := db.Collection("products").UpdateMany(
				ctx,
				bson.M{"artistId": artist.ID},
				bson.M{"$set": bson.M{
					"artistId":   keeper.ID,
					"artistName": keeper.Name,
					"updatedAt":  time.Now(),
				}},
			)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			if _, err := db.Collection("artists").DeleteOne(ctx, bson.M{"_id": artist.ID}); err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			merged++
		}

		log.Printf("[%s] merged %d duplicate artists", route, merged)
		c.JSON(http.StatusOK, gin.H{
			"merged":    merged,
			"remaining": len(keeperByName),
		})
	}
}

func escapeRegex(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`, `.`, `\.`, `+`, `\+`, `*`, `\*`, `?`, `\?`,
		`(`, `\(`, `)`, `\)`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`,
		`^`, `\^`, `$`, `\$`, `|`, `\|`,
	)
	return replacer.Replace(value)
}
