package stock

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fanpuri-backend/internal/models"
)

// These tests need a real MongoDB (any standalone instance works). They skip
// when TEST_MONGO_URI is unset so the suite stays green in plain CI.

func ledgerTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect failed: %v", err)
	}

	db := client.Database("fanpuri_ledger_test_" + primitive.NewObjectID().Hex()[:8])
	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cleanupCancel()
		_ = db.Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})

	return db
}

func seedProduct(t *testing.T, db *mongo.Database, product models.Product) primitive.ObjectID {
	t.Helper()

	product.IsActive = true
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	res, err := db.Collection("products").InsertOne(context.Background(), product)
	if err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return res.InsertedID.(primitive.ObjectID)
}

func seedLimited(t *testing.T, db *mongo.Database, total, sold int) primitive.ObjectID {
	t.Helper()
	return seedProduct(t, db, models.Product{
		Name:             "Limited Print",
		Price:            45,
		IsLimitedEdition: true,
		TotalCopies:      total,
		SoldCopies:       sold,
		IsSoldOut:        sold >= total,
	})
}

func loadProduct(t *testing.T, db *mongo.Database, id primitive.ObjectID) models.Product {
	t.Helper()

	var product models.Product
	if err := db.Collection("products").FindOne(context.Background(), bson.M{"_id": id}).Decode(&product); err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	return product
}

func TestPurchaseScenario(t *testing.T) {
	db := ledgerTestDB(t)
	ctx := context.Background()

	id := seedLimited(t, db, 2, 0)

	result, err := Purchase(ctx, db, id, 2)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if result.RemainingCopies != 0 || !result.IsSoldOut {
		t.Errorf("expected remaining=0 soldOut=true, got %+v", result)
	}

	_, err = Purchase(ctx, db, id, 1)
	if !errors.Is(err, ErrSoldOut) {
		t.Errorf("expected ErrSoldOut, got %v", err)
	}

	product := loadProduct(t, db, id)
	if product.SoldCopies != 2 || !product.IsSoldOut {
		t.Errorf("ledger invariant violated: %+v", product)
	}
}

func TestPurchaseInsufficientStockCarriesAvailable(t *testing.T) {
	db := ledgerTestDB(t)

	id := seedLimited(t, db, 5, 3)

	_, err := Purchase(context.Background(), db, id, 4)

	var insufficient InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.Available != 2 {
		t.Errorf("expected available=2, got %d", insufficient.Available)
	}
}

func TestPurchaseRejectsRegularProduct(t *testing.T) {
	db := ledgerTestDB(t)

	id := seedProduct(t, db, models.Product{Name: "Sticker Pack", Price: 5})

	_, err := Purchase(context.Background(), db, id, 1)
	if !errors.Is(err, ErrNotLimitedEdition) {
		t.Errorf("expected ErrNotLimitedEdition, got %v", err)
	}
}

func TestPurchaseMissingProduct(t *testing.T) {
	db := ledgerTestDB(t)

	_, err := Purchase(context.Background(), db, primitive.NewObjectID(), 1)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestConcurrentPurchasesNeverOversell(t *testing.T) {
	db := ledgerTestDB(t)

	const (
		totalCopies   = 10
		totalRequests = 30
	)

	id := seedLimited(t, db, totalCopies, 0)

	var successCount, failCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Purchase(context.Background(), db, id, 1)
			if err == nil {
				successCount.Add(1)
				return
			}
			var insufficient InsufficientStockError
			if errors.Is(err, ErrSoldOut) || errors.As(err, &insufficient) {
				failCount.Add(1)
				return
			}
			t.Errorf("unexpected purchase error: %v", err)
		}()
	}
	wg.Wait()

	if successCount.Load() != totalCopies {
		t.Errorf("expected %d successes, got %d", totalCopies, successCount.Load())
	}
	if failCount.Load() != totalRequests-totalCopies {
		t.Errorf("expected %d failures, got %d", totalRequests-totalCopies, failCount.Load())
	}

	product := loadProduct(t, db, id)
	if product.SoldCopies != totalCopies {
		t.Errorf("expected soldCopies=%d, got %d", totalCopies, product.SoldCopies)
	}
	if !product.IsSoldOut {
		t.Error("expected isSoldOut=true after final copy sold")
	}
}

func TestConcurrentPurchasesAllSucceedWhenStockCovers(t *testing.T) {
	db := ledgerTestDB(t)

	// Demand equals supply: contention alone must never reject a purchase
	// that stock still covers.
	const totalCopies = 64

	id := seedLimited(t, db, totalCopies, 0)

	var wg sync.WaitGroup
	for i := 0; i < totalCopies; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Purchase(context.Background(), db, id, 1); err != nil {
				t.Errorf("purchase rejected under contention: %v", err)
			}
		}()
	}
	wg.Wait()

	product := loadProduct(t, db, id)
	if product.SoldCopies != totalCopies {
		t.Errorf("expected soldCopies=%d, got %d", totalCopies, product.SoldCopies)
	}
	if !product.IsSoldOut {
		t.Error("expected isSoldOut=true after final copy sold")
	}
}

func TestJoinWaitlistIdempotent(t *testing.T) {
	db := ledgerTestDB(t)
	ctx := context.Background()

	id := seedLimited(t, db, 1, 1)

	first, err := JoinWaitlist(ctx, db, id, "A@Example.com")
	if err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if first.WaitlistCount != 1 || first.AlreadyRegistered {
		t.Errorf("unexpected first join result: %+v", first)
	}

	second, err := JoinWaitlist(ctx, db, id, "a@example.com")
	if err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	if second.WaitlistCount != 1 || !second.AlreadyRegistered {
		t.Errorf("expected idempotent rejoin, got %+v", second)
	}

	product := loadProduct(t, db, id)
	if len(product.WaitlistEmails) != 1 {
		t.Errorf("expected 1 waitlist entry, got %v", product.WaitlistEmails)
	}
}

func TestJoinWaitlistRejectsRegularProduct(t *testing.T) {
	db := ledgerTestDB(t)

	id := seedProduct(t, db, models.Product{Name: "Tote Bag", Price: 15})

	_, err := JoinWaitlist(context.Background(), db, id, "a@example.com")
	if !errors.Is(err, ErrNotLimitedEdition) {
		t.Errorf("expected ErrNotLimitedEdition, got %v", err)
	}
}

func TestJoinWaitlistRejectsBadEmail(t *testing.T) {
	db := ledgerTestDB(t)

	id := seedLimited(t, db, 1, 0)

	_, err := JoinWaitlist(context.Background(), db, id, "not-an-email")
	if !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestIncrementSalesCount(t *testing.T) {
	db := ledgerTestDB(t)
	ctx := context.Background()

	id := seedProduct(t, db, models.Product{Name: "Art Book", Price: 30})

	if err := IncrementSalesCount(ctx, db, id, 3); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if err := IncrementSalesCount(ctx, db, id, 2); err != nil {
		t.Fatalf("increment failed: %v", err)
	}

	product := loadProduct(t, db, id)
	if product.SalesCount != 5 {
		t.Errorf("expected salesCount=5, got %d", product.SalesCount)
	}

	err := IncrementSalesCount(ctx, db, primitive.NewObjectID(), 1)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}
