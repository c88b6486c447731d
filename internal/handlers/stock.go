package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"fanpuri-backend/internal/mail"
	"fanpuri-backend/internal/models"
	"fanpuri-backend/internal/stock"
)

type purchaseRequest struct {
	Quantity       int    `json:"quantity" binding:"required"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type waitlistRequest struct {
	Email string `json:"email" binding:"required"`
}

/*
POST /products/:id/purchase
- Limited-edition satın alma; soldCopies + isSoldOut tek atomik yazım.
- Opsiyonel idempotencyKey Redis üzerinden 24 saat pencere ile tekilleştirilir.
*/
func PurchaseProduct(db *mongo.Database, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products/:id/purchase"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req purchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "quantity must be a positive integer")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		key := req.IdempotencyKey
		if key == "" {
			key = c.GetHeader("X-Idempotency-Key")
		}
		if err := stock.ClaimIdempotencyKey(ctx, rdb, key); err != nil {
			if errors.Is(err, stock.ErrDuplicateRequest) {
				respondWithError(c, http.StatusConflict, route, "duplicate request")
				return
			}
			log.Printf("[%s] idempotency check unavailable: %v", route, err)
			respondWithError(c, http.StatusServiceUnavailable, route, "try again later")
			return
		}

		result, err := stock.Purchase(ctx, db, productID, req.Quantity)
		if err != nil {
			// The purchase did not commit; the key must not block a retry.
			stock.ReleaseIdempotencyKey(rdb, key)

			var insufficient stock.InsufficientStockError
			switch {
			case errors.Is(err, stock.ErrProductNotFound):
				respondWithError(c, http.StatusNotFound, route, "product not found")
			case errors.Is(err, stock.ErrNotLimitedEdition):
				respondWithError(c, http.StatusBadRequest, route, "not a limited-edition item")
			case errors.Is(err, stock.ErrSoldOut):
				respondWithError(c, http.StatusGone, route, "sold out")
			case errors.As(err, &insufficient):
				log.Printf("[%s] insufficient stock: %v", route, err)
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error":           "insufficient stock",
					"availableCopies": insufficient.Available,
				})
			default:
				respondWithError(c, http.StatusInternalServerError, route, "db error")
			}
			return
		}

		log.Printf("[%s] sold %d of %s, remaining %d", route, req.Quantity, productID.Hex(), result.RemainingCopies)
		c.JSON(http.StatusOK, result)
	}
}

/*
POST /products/:id/waitlist
- Aynı email ikinci kez eklenirse idempotent başarı döner.
*/
func JoinWaitlist(db *mongo.Database, mailer mail.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products/:id/waitlist"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req waitlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "email required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := stock.JoinWaitlist(ctx, db, productID, req.Email)
		if err != nil {
			switch {
			case errors.Is(err, stock.ErrInvalidEmail):
				respondWithError(c, http.StatusBadRequest, route, "invalid email")
			case errors.Is(err, stock.ErrProductNotFound):
				respondWithError(c, http.StatusNotFound, route, "product not found")
			case errors.Is(err, stock.ErrNotLimitedEdition):
				respondWithError(c, http.StatusBadRequest, route, "not a limited-edition item")
			default:
				respondWithError(c, http.StatusInternalServerError, route, "db error")
			}
			return
		}

		if !result.AlreadyRegistered && mailer != nil {
			go sendWaitlistMail(db, mailer, productID, stock.NormalizeEmail(req.Email))
		}

		c.JSON(http.StatusOK, result)
	}
}

func sendWaitlistMail(db *mongo.Database, mailer mail.Mailer, productID primitive.ObjectID, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var product models.Product
	if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
		log.Println("[WAITLIST] [WARN] product lookup for mail failed:", err)
		return
	}
	if err := mailer.SendWaitlistConfirmation(email, product.Name); err != nil {
		log.Println("[WAITLIST] [WARN] confirmation email failed:", err)
	}
}
