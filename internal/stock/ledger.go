package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fanpuri-backend/internal/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrNotLimitedEdition = errors.New("not a limited-edition item")
	ErrSoldOut           = errors.New("sold out")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidEmail      = errors.New("invalid email")
)

// InsufficientStockError carries the copies still available so the caller
// can offer a reduced quantity.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %d requested, %d available", e.Requested, e.Available)
}

type PurchaseResult struct {
	RemainingCopies int  `json:"remainingCopies"`
	IsSoldOut       bool `json:"isSoldOut"`
}

type WaitlistResult struct {
	WaitlistCount     int  `json:"waitlistCount"`
	AlreadyRegistered bool `json:"alreadyRegistered"`
}

// Purchase decrements the limited-edition copy count for a product. The
// availability check and the soldCopies/isSoldOut write are one guarded
// update: the filter admits the document only while the requested copies
// still fit, and the pipeline $set recomputes both fields server-side, so
// two racing purchases can never both consume the last copy and no amount
// of contention can reject a purchase that stock still covers.
func Purchase(ctx context.Context, db *mongo.Database, productID primitive.ObjectID, quantity int) (PurchaseResult, error) {
	if quantity <= 0 {
		return PurchaseResult{}, ErrInvalidQuantity
	}

	// Seed-data documents may lack soldCopies entirely.
	newSold := bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$soldCopies", 0}}, quantity}}

	var after models.Product
	err := db.Collection("products").FindOneAndUpdate(ctx,
		bson.M{
			"_id":              productID,
			"isLimitedEdition": true,
			"isDeleted":        bson.M{"$ne": true},
			"$expr":            bson.M{"$lte": bson.A{newSold, "$totalCopies"}},
		},
		bson.A{bson.M{"$set": bson.M{
			"soldCopies": newSold,
			"isSoldOut":  bson.M{"$gte": bson.A{newSold, "$totalCopies"}},
			"updatedAt":  "$$NOW",
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&after)
	if err == mongo.ErrNoDocuments {
		return PurchaseResult{}, classifyPurchaseMiss(ctx, db, productID, quantity)
	}
	if err != nil {
		return PurchaseResult{}, err
	}

	return PurchaseResult{
		RemainingCopies: after.TotalCopies - after.SoldCopies,
		IsSoldOut:       after.IsSoldOut,
	}, nil
}

// classifyPurchaseMiss explains a guarded update that matched nothing.
// soldCopies only ever grows, so the re-read cannot show more stock than
// the update saw; at worst the reported availability is lower.
func classifyPurchaseMiss(ctx context.Context, db *mongo.Database, productID primitive.ObjectID, quantity int) error {
	var product models.Product
	err := db.Collection("products").FindOne(ctx, bson.M{
		"_id":       productID,
		"isDeleted": bson.M{"$ne": true},
	}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}

	if !product.IsLimitedEdition {
		return ErrNotLimitedEdition
	}

	available := product.AvailableCopies()
	if product.IsSoldOut || available == 0 {
		return ErrSoldOut
	}
	return InsufficientStockError{Available: available, Requested: quantity}
}

// JoinWaitlist records an email for restock notification. Joining twice with
// the same address is an idempotent success: the set does not grow and the
// caller is told it was already registered.
func JoinWaitlist(ctx context.Context, db *mongo.Database, productID primitive.ObjectID, email string) (WaitlistResult, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return WaitlistResult{}, ErrInvalidEmail
	}

	var before models.Product
	err := db.Collection("products").FindOneAndUpdate(ctx,
		bson.M{
			"_id":              productID,
			"isLimitedEdition": true,
			"isDeleted":        bson.M{"$ne": true},
		},
		bson.M{
			"$addToSet": bson.M{"waitlistEmails": email},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err == mongo.ErrNoDocuments {
		return WaitlistResult{}, classifyWaitlistMiss(ctx, db, productID)
	}
	if err != nil {
		return WaitlistResult{}, err
	}

	already := false
	for _, existing := range before.WaitlistEmails {
		if existing == email {
			already = true
			break
		}
	}

	count := len(before.WaitlistEmails)
	if !already {
		count++
	}

	return WaitlistResult{WaitlistCount: count, AlreadyRegistered: already}, nil
}

// classifyWaitlistMiss distinguishes a missing product from a regular
// (non-limited) one after the guarded update matched nothing.
func classifyWaitlistMiss(ctx context.Context, db *mongo.Database, productID primitive.ObjectID) error {
	err := db.Collection("products").FindOne(ctx, bson.M{
		"_id":       productID,
		"isDeleted": bson.M{"$ne": true},
	}).Err()
	if err == mongo.ErrNoDocuments {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return ErrNotLimitedEdition
}

// IncrementSalesCount bumps the aggregate sales counter for a product. The
// $inc is atomic on its own, so it never coordinates with the ledger fields.
func IncrementSalesCount(ctx context.Context, db *mongo.Database, productID primitive.ObjectID, delta int) error {
	res, err := db.Collection("products").UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{
			"$inc": bson.M{"salesCount": delta},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail applies the minimal syntactic check the waitlist needs: a
// non-empty local part and domain around a single separator.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 &&
		strings.Count(email, "@") == 1 &&
		!strings.ContainsAny(email, " \t")
}
