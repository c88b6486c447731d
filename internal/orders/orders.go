package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fanpuri-backend/internal/models"
	"fanpuri-backend/internal/stock"
)

var (
	ErrMissingUser   = errors.New("userId and userEmail are required")
	ErrEmptyItems    = errors.New("at least one item is required")
	ErrInvalidStatus = errors.New("invalid status")
	ErrOrderNotFound = errors.New("order not found")
)

// OutOfStockError aborts order creation when a limited-edition line cannot
// be reserved.
type OutOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e OutOfStockError) Error() string {
	return fmt.Sprintf("product %s out of stock: %d requested, %d available", e.ProductID.Hex(), e.Requested, e.Available)
}

type ProductNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e ProductNotFoundError) Error() string {
	return "product not found: " + e.ProductID.Hex()
}

type InvalidTransitionError struct {
	From string
	To   string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %q to %q", e.From, e.To)
}

// ConfirmationSender delivers the post-checkout email. Failures are logged
// and never affect the order itself.
type ConfirmationSender interface {
	SendOrderConfirmation(to string, order models.Order) error
}

type ItemInput struct {
	ProductID primitive.ObjectID
	Quantity  int
}

type CreateInput struct {
	UserID          string
	UserEmail       string
	Items           []ItemInput
	PaymentMethod   string
	ShippingDetails map[string]interface{}
	OrderSummary    map[string]interface{}
}

type ListResult struct {
	Orders      []models.Order `json:"orders"`
	CurrentPage int64          `json:"currentPage"`
	TotalOrders int64          `json:"totalOrders"`
}

// Create records a checkout as an immutable order. The order insert and
// every limited-edition copy reservation happen in one transaction: a stock
// failure aborts the order, and an insert failure releases the copies. Price
// and name are frozen from the catalog as of this call. Sales counters and
// the confirmation email run after commit and are best-effort.
func Create(ctx context.Context, db *mongo.Database, mailer ConfirmationSender, in CreateInput) (models.Order, error) {
	if in.UserID == "" || !stock.ValidEmail(in.UserEmail) {
		return models.Order{}, ErrMissingUser
	}
	if len(in.Items) == 0 {
		return models.Order{}, ErrEmptyItems
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return models.Order{}, stock.ErrInvalidQuantity
		}
	}

	now := time.Now()
	order := models.Order{
		OrderID:         NewOrderID(),
		UserID:          in.UserID,
		UserEmail:       stock.NormalizeEmail(in.UserEmail),
		PaymentMethod:   in.PaymentMethod,
		ShippingDetails: in.ShippingDetails,
		OrderSummary:    in.OrderSummary,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	session, err := db.Client().StartSession()
	if err != nil {
		return models.Order{}, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		items := make([]models.OrderItem, 0, len(in.Items))
		total := 0.0

		for _, item := range in.Items {
			var product models.Product
			err := db.Collection("products").FindOne(
				sessCtx,
				bson.M{
					"_id":       item.ProductID,
					"isDeleted": bson.M{"$ne": true},
				},
			).Decode(&product)
			if err == mongo.ErrNoDocuments {
				return nil, ProductNotFoundError{ProductID: item.ProductID}
			}
			if err != nil {
				return nil, err
			}

			if product.IsLimitedEdition {
				if err := reserveCopies(sessCtx, db, product, item.Quantity); err != nil {
					return nil, err
				}
			}

			items = append(items, models.OrderItem{
				ProductID: item.ProductID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  item.Quantity,
			})
			total += product.Price * float64(item.Quantity)
		}

		order.Items = items
		order.TotalPrice = total

		res, err := db.Collection("orders").InsertOne(sessCtx, order)
		if err != nil {
			return nil, err
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}
		return nil, nil
	})
	if err != nil {
		return models.Order{}, err
	}

	bumpSalesCounts(db, order.Items)

	if mailer != nil {
		go func(o models.Order) {
			if err := mailer.SendOrderConfirmation(o.UserEmail, o); err != nil {
				log.Println("[ORDER] [WARN] confirmation email failed:", err)
			}
		}(order)
	}

	return order, nil
}

// reserveCopies applies the soldCopies increment and the derived isSoldOut
// flag in one guarded write. The filter re-checks availability so a racing
// checkout inside another transaction cannot oversell.
func reserveCopies(sessCtx mongo.SessionContext, db *mongo.Database, product models.Product, quantity int) error {
	available := product.AvailableCopies()
	if product.IsSoldOut || quantity > available {
		return OutOfStockError{ProductID: product.ID, Available: available, Requested: quantity}
	}

	sold := product.SoldCopies + quantity
	res, err := db.Collection("products").UpdateOne(sessCtx,
		bson.M{
			"_id":        product.ID,
			"soldCopies": product.SoldCopies,
			"isDeleted":  bson.M{"$ne": true},
		},
		bson.M{"$set": bson.M{
			"soldCopies": sold,
			"isSoldOut":  sold >= product.TotalCopies,
			"updatedAt":  time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return OutOfStockError{ProductID: product.ID, Available: available, Requested: quantity}
	}
	return nil
}

// bumpSalesCounts increments per-product sales counters once the order is
// durable. An order must never fail or roll back because a counter write
// did, so errors only get logged. Runs on its own context: the request may
// already be done.
func bumpSalesCounts(db *mongo.Database, items []models.OrderItem) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, item := range items {
		if err := stock.IncrementSalesCount(ctx, db, item.ProductID, item.Quantity); err != nil {
			log.Printf("[ORDER] [WARN] salesCount increment failed for %s: %v", item.ProductID.Hex(), err)
		}
	}
}

func Get(ctx context.Context, db *mongo.Database, orderID string) (models.Order, error) {
	var order models.Order
	err := db.Collection("orders").FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// ListByUser returns one page of a user's orders in creation order.
func ListByUser(ctx context.Context, db *mongo.Database, userID string, page, limit int64) (ListResult, error) {
	filter := bson.M{"userId": userID}

	total, err := db.Collection("orders").CountDocuments(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}

	opts := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := db.Collection("orders").Find(ctx, filter, opts)
	if err != nil {
		return ListResult{}, err
	}
	defer cursor.Close(ctx)

	ordersPage := make([]models.Order, 0)
	if err := cursor.All(ctx, &ordersPage); err != nil {
		return ListResult{}, err
	}

	return ListResult{Orders: ordersPage, CurrentPage: page, TotalOrders: total}, nil
}

// UpdateStatus moves an order along the fulfillment chain. The legal
// predecessor set is part of the update filter, so the transition check and
// the write are one atomic operation; items, shipping and summary are never
// touched.
func UpdateStatus(ctx context.Context, db *mongo.Database, orderID, next string) (models.Order, error) {
	if !ValidStatus(next) {
		return models.Order{}, ErrInvalidStatus
	}

	froms := allowedPredecessors(next)
	if len(froms) > 0 {
		var updated models.Order
		err := db.Collection("orders").FindOneAndUpdate(ctx,
			bson.M{"orderId": orderID, "status": bson.M{"$in": froms}},
			bson.M{"$set": bson.M{"status": next, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == nil {
			return updated, nil
		}
		if err != mongo.ErrNoDocuments {
			return models.Order{}, err
		}
	}

	// Nothing matched: either the order is missing or the edge is illegal.
	current, err := Get(ctx, db, orderID)
	if err != nil {
		return models.Order{}, err
	}
	return models.Order{}, InvalidTransitionError{From: current.Status, To: next}
}
