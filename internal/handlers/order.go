package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"fanpuri-backend/internal/mail"
	"fanpuri-backend/internal/middleware"
	"fanpuri-backend/internal/orders"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	UserID          string                   `json:"userId"`
	UserEmail       string                   `json:"userEmail" binding:"required"`
	Items           []createOrderItemRequest `json:"items" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required"`
	ShippingDetails map[string]interface{}   `json:"shippingDetails"`
	OrderSummary    map[string]interface{}   `json:"orderSummary"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(db *mongo.Database, mailer mail.Mailer, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		// A valid bearer token overrides whatever userId the body claims.
		tokenUserID, err := middleware.UserIDFromHeader(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			log.Println("[ORDER] [ERROR] token validation failed:", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if tokenUserID != "" {
			req.UserID = tokenUserID
		}

		input, err := buildCreateInput(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.Create(ctx, db, mailer, input)
		if err != nil {
			var stockErr orders.OutOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":           "insufficient stock",
					"productId":       stockErr.ProductID.Hex(),
					"availableCopies": stockErr.Available,
					"requested":       stockErr.Requested,
				})
				return
			}
			var notFoundErr orders.ProductNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "product not found",
					"productId": notFoundErr.ProductID.Hex(),
				})
				return
			}
			if errors.Is(err, orders.ErrMissingUser) || errors.Is(err, orders.ErrEmptyItems) {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "order could not be saved")
			return
		}

		log.Printf("[%s] order %s created for user %s", route, order.OrderID, order.UserID)
		c.JSON(http.StatusCreated, gin.H{
			"orderId": order.OrderID,
			"order":   order,
		})
	}
}

func buildCreateInput(req createOrderRequest) (orders.CreateInput, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return orders.CreateInput{}, errors.New("userId is required")
	}
	if len(req.Items) == 0 {
		return orders.CreateInput{}, errors.New("at least one item is required")
	}

	items := make([]orders.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return orders.CreateInput{}, errors.New("invalid productId")
		}
		if item.Quantity <= 0 {
			return orders.CreateInput{}, errors.New("quantity must be greater than zero")
		}
		items = append(items, orders.ItemInput{ProductID: productID, Quantity: item.Quantity})
	}

	return orders.CreateInput{
		UserID:          strings.TrimSpace(req.UserID),
		UserEmail:       req.UserEmail,
		Items:           items,
		PaymentMethod:   req.PaymentMethod,
		ShippingDetails: req.ShippingDetails,
		OrderSummary:    req.OrderSummary,
	}, nil
}

/* =========================
   READ ORDERS
========================= */

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:orderId"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.Get(ctx, db, c.Param("orderId"))
		if err != nil {
			if errors.Is(err, orders.ErrOrderNotFound) {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func GetUserOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/user/:userId"
		defer handlePanic(c, route)

		userID := strings.TrimSpace(c.Param("userId"))
		if userID == "" {
			respondWithError(c, http.StatusBadRequest, route, "userId required")
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := orders.ListByUser(ctx, db, userID, page, limit)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

/* =========================
   UPDATE STATUS
========================= */

func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:orderId/status"
		defer handlePanic(c, route)

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "status required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.UpdateStatus(ctx, db, c.Param("orderId"), req.Status)
		if err != nil {
			var transitionErr orders.InvalidTransitionError
			switch {
			case errors.Is(err, orders.ErrInvalidStatus):
				respondWithError(c, http.StatusBadRequest, route, "invalid status")
			case errors.Is(err, orders.ErrOrderNotFound):
				respondWithError(c, http.StatusNotFound, route, "order not found")
			case errors.As(err, &transitionErr):
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "invalid transition",
					"from":  transitionErr.From,
					"to":    transitionErr.To,
				})
			default:
				respondWithError(c, http.StatusInternalServerError, route, "db error")
			}
			return
		}

		log.Printf("[%s] order %s moved to %s", route, order.OrderID, order.Status)
		c.JSON(http.StatusOK, order)
	}
}
