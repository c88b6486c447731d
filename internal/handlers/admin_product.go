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

/* =======================
   REQUEST MODELLERİ
======================= */

type ProductCreateRequest struct {
	Name             string   `json:"name" binding:"required"`
	Price            float64  `json:"price" binding:"required"`
	ArtistID         string   `json:"artistId"`
	Series           string   `json:"series"`
	Category         []string `json:"category"`
	Description      string   `json:"description"`
	ImagePath        string   `json:"imagePath"`
	IsLimitedEdition bool     `json:"isLimitedEdition"`
	TotalCopies      int      `json:"totalCopies"`
	IsActive         *bool    `json:"isActive"`
}

// ProductUpdateRequest is a partial update; the ledger fields
// (isLimitedEdition, totalCopies, soldCopies, isSoldOut) are immutable after
// creation and deliberately absent here.
type ProductUpdateRequest struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price"`
	ArtistID    *string   `json:"artistId"`
	Series      *string   `json:"series"`
	Category    *[]string `json:"category"`
	Description *string   `json:"description"`
	ImagePath   *string   `json:"imagePath"`
	IsActive    *bool     `json:"isActive"`
}

/* =======================
   CREATE
======================= */

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "name required")
			return
		}
		if req.Price <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "price must be greater than 0")
			return
		}
		if req.IsLimitedEdition && req.TotalCopies <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "totalCopies must be greater than 0 for limited editions")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		product := models.Product{
			Name:             name,
			Price:            req.Price,
			Series:           strings.TrimSpace(req.Series),
			Category:         normalizeCategories(req.Category),
			Description:      strings.TrimSpace(req.Description),
			ImagePath:        strings.TrimSpace(req.ImagePath),
			IsLimitedEdition: req.IsLimitedEdition,
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if req.IsLimitedEdition {
			product.TotalCopies = req.TotalCopies
		}
		if req.IsActive != nil {
			product.IsActive = *req.IsActive
		}

		if artistRef := strings.TrimSpace(req.ArtistID); artistRef != "" {
			artistID, err := primitive.ObjectIDFromHex(artistRef)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid artistId")
				return
			}

			var artist models.Artist
			err = db.Collection("artists").FindOne(ctx, bson.M{"_id": artistID}).Decode(&artist)
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusBadRequest, route, "artist not found")
				return
			}
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			product.ArtistID = artistID
			product.ArtistName = artist.Name
		}

		result, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		product.ID = result.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE (PARTIAL)
======================= */

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		update := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			update["name"] = name
		}

		if req.Price != nil {
			if *req.Price <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "price must be greater than 0")
				return
			}
			update["price"] = *req.Price
		}

		if req.ArtistID != nil {
			artistID, err := primitive.ObjectIDFromHex(strings.TrimSpace(*req.ArtistID))
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid artistId")
				return
			}
			var artist models.Artist
			err = db.Collection("artists").FindOne(ctx, bson.M{"_id": artistID}).Decode(&artist)
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusBadRequest, route, "artist not found")
				return
			}
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			update["artistId"] = artistID
			update["artistName"] = artist.Name
		}

		if req.Series != nil {
			update["series"] = strings.TrimSpace(*req.Series)
		}
		if req.Category != nil {
			update["category"] = normalizeCategories(*req.Category)
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
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
		update["updatedAt"] = time.Now()

		var raw bson.M
		err = db.Collection("products").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&raw)

		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		updated, err := normalizeProductDocument(raw)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/* =======================
   DELETE (SOFT)
======================= */

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		result, err := db.Collection("products").UpdateOne(
			ctx,
			bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{
				"isDeleted": true,
				"isActive":  false,
				"deletedAt": now,
				"updatedAt": now,
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if result.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func normalizeCategories(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)

	for _, v := range values {
		name := strings.TrimSpace(v)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
