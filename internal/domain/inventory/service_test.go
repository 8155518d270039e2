// internal/domain/inventory/service_test.go
package inventory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&store.Store{},
		&store.Address{},
		&product.Category{},
		&product.Product{},
		&Inventory{},
	))

	require.NoError(t, db.Create(&store.Store{
		OwnerID:   1,
		Name:      "Test Store",
		StoreCode: "TST-001",
	}).Error)

	return NewService(db, &config.Config{}), db
}

func seedProduct(t *testing.T, db *gorm.DB, sku string) *product.Product {
	t.Helper()
	p := &product.Product{Name: "Item " + sku, SKU: sku, Price: 1500}
	require.NoError(t, db.Create(p).Error)
	return p
}

// seedRecord creates an inventory record holding the given products.
// createdAt controls the listing order used by multi-record reservation.
func seedRecord(t *testing.T, db *gorm.DB, available int, createdAt time.Time, products ...*product.Product) *Inventory {
	t.Helper()
	inv := &Inventory{
		Name:              "Pool",
		StoreID:           1,
		AvailableQuantity: available,
		ReorderLevel:      2,
		MaxStockLevel:     100,
		CreatedAt:         createdAt,
	}
	for _, p := range products {
		inv.Products = append(inv.Products, *p)
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func TestReserveReleaseRoundtrip(t *testing.T) {
	svc, db := newTestService(t)
	inv := seedRecord(t, db, 10, time.Now())

	reserved, err := svc.Reserve(inv.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, reserved.AvailableQuantity)
	assert.Equal(t, 4, reserved.ReservedQuantity)
	assert.Equal(t, 10, reserved.TotalQuantity())

	// Releasing the same quantity restores the record exactly.
	restored, err := svc.Release(inv.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 10, restored.AvailableQuantity)
	assert.Equal(t, 0, restored.ReservedQuantity)
}

func TestReserveFailsWhenDrained(t *testing.T) {
	svc, db := newTestService(t)
	inv := seedRecord(t, db, 5, time.Now())

	reserved, err := svc.Reserve(inv.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, reserved.AvailableQuantity)
	assert.Equal(t, 5, reserved.ReservedQuantity)

	_, err = svc.Reserve(inv.ID, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "available 0, requested 1")

	// The failed attempt must not have touched the counters.
	current, err := svc.FindOne(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, current.AvailableQuantity)
	assert.Equal(t, 5, current.ReservedQuantity)
}

func TestReserveConcurrentSingleWinner(t *testing.T) {
	svc, db := newTestService(t)
	inv := seedRecord(t, db, 5, time.Now())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(inv.ID, 4)
		}(i)
	}
	wg.Wait()

	// The guard lives in the UPDATE's WHERE clause, so exactly one of
	// the two overlapping reservations can win the remaining stock.
	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, successes)

	current, err := svc.FindOne(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.AvailableQuantity)
	assert.Equal(t, 4, current.ReservedQuantity)
}

func TestReleaseMoreThanReserved(t *testing.T) {
	svc, db := newTestService(t)
	inv := seedRecord(t, db, 10, time.Now())

	_, err := svc.Reserve(inv.ID, 3)
	require.NoError(t, err)

	_, err = svc.Release(inv.ID, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRelease)

	current, err := svc.FindOne(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, current.AvailableQuantity)
	assert.Equal(t, 3, current.ReservedQuantity)
}

func TestConfirmSaleRemovesStock(t *testing.T) {
	svc, db := newTestService(t)
	inv := seedRecord(t, db, 10, time.Now())

	_, err := svc.Reserve(inv.ID, 3)
	require.NoError(t, err)

	confirmed, err := svc.ConfirmSale(inv.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, confirmed.AvailableQuantity)
	assert.Equal(t, 0, confirmed.ReservedQuantity)
	assert.Equal(t, 7, confirmed.TotalQuantity())
	assert.Equal(t, ActionSale, confirmed.LastAction)

	_, err = svc.ConfirmSale(inv.ID, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfirm)
}

func TestReserveForProductSpansRecords(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "SKU-A")
	base := time.Now().Add(-time.Hour)
	first := seedRecord(t, db, 3, base, p)
	second := seedRecord(t, db, 4, base.Add(time.Minute), p)

	require.NoError(t, svc.ReserveForProduct(p.ID, 5, 1))

	// Oldest record drains first, the remainder comes off the next one.
	got1, err := svc.FindOne(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got1.AvailableQuantity)
	assert.Equal(t, 3, got1.ReservedQuantity)

	got2, err := svc.FindOne(second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got2.AvailableQuantity)
	assert.Equal(t, 2, got2.ReservedQuantity)
}

func TestReserveForProductCompensatesOnShortfall(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "SKU-B")
	base := time.Now().Add(-time.Hour)
	first := seedRecord(t, db, 3, base, p)
	second := seedRecord(t, db, 2, base.Add(time.Minute), p)

	err := svc.ReserveForProduct(p.ID, 10, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "short 5 of 10 units")

	// Partial holds taken during the walk are handed back.
	for _, id := range []uint{first.ID, second.ID} {
		got, err := svc.FindOne(id)
		require.NoError(t, err)
		assert.Equal(t, 0, got.ReservedQuantity)
	}
	got1, err := svc.FindOne(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got1.AvailableQuantity)
	got2, err := svc.FindOne(second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got2.AvailableQuantity)
}

func TestReleaseForProductSpansRecords(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "SKU-C")
	base := time.Now().Add(-time.Hour)
	first := seedRecord(t, db, 3, base, p)
	second := seedRecord(t, db, 4, base.Add(time.Minute), p)

	require.NoError(t, svc.ReserveForProduct(p.ID, 5, 1))
	require.NoError(t, svc.ReleaseForProduct(p.ID, 5, 1))

	got1, err := svc.FindOne(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got1.AvailableQuantity)
	assert.Equal(t, 0, got1.ReservedQuantity)

	got2, err := svc.FindOne(second.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got2.AvailableQuantity)
	assert.Equal(t, 0, got2.ReservedQuantity)
}

func TestReleaseForProductNothingHeld(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "SKU-D")
	seedRecord(t, db, 5, time.Now(), p)

	err := svc.ReleaseForProduct(p.ID, 2, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRelease)
}

func TestAdjustStockGuards(t *testing.T) {
	svc, db := newTestService(t)
	inv := seedRecord(t, db, 5, time.Now())

	got, err := svc.AdjustStock(inv.ID, &AdjustStockRequest{Action: ActionRestock, QuantityChange: 10})
	require.NoError(t, err)
	assert.Equal(t, 15, got.AvailableQuantity)
	assert.Equal(t, ActionRestock, got.LastAction)

	got, err = svc.AdjustStock(inv.ID, &AdjustStockRequest{Action: ActionAdjustment, QuantityChange: -5})
	require.NoError(t, err)
	assert.Equal(t, 10, got.AvailableQuantity)

	_, err = svc.AdjustStock(inv.ID, &AdjustStockRequest{Action: ActionAdjustment, QuantityChange: -11})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.AdjustStock(inv.ID, &AdjustStockRequest{Action: ActionDamaged, QuantityChange: 99})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, err = svc.FindOne(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.AvailableQuantity)
}
