// internal/domain/payment/service_test.go
package payment

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/inventory"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
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
		&user.User{},
		&user.Profile{},
		&user.Address{},
		&store.Store{},
		&store.Address{},
		&product.Category{},
		&product.Product{},
		&inventory.Inventory{},
		&order.Order{},
		&order.OrderItem{},
		&order.Sequence{},
		&Payment{},
	))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{}
	orders := order.NewService(db, cfg, inventory.NewService(db, cfg), logger)
	return NewService(db, cfg, orders, logger), db
}

func seedConfirmedOrder(t *testing.T, db *gorm.DB, number string) *order.Order {
	t.Helper()

	require.NoError(t, db.Create(&user.User{
		Email:    "buyer-" + number + "@example.com",
		Password: "x",
		Role:     user.RoleCustomer,
	}).Error)

	o := &order.Order{
		OrderNumber:    number,
		UserID:         1,
		StoreID:        1,
		Status:         order.StatusConfirmed,
		DeliveryMethod: order.MethodPickup,
		SubtotalAmount: 20000,
		TaxAmount:      3200,
		TotalAmount:    23200,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func TestConfirmPaymentCompletesOnce(t *testing.T) {
	svc, db := newTestService(t)
	o := seedConfirmedOrder(t, db, "ORD2026080001")

	p := &Payment{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Amount:    o.TotalAmount,
		Status:    StatusPending,
		Reference: "ref-once",
	}
	require.NoError(t, db.Create(p).Error)

	fired := 0
	svc.OnCompleted(func(orderID uint) {
		fired++
		assert.Equal(t, o.ID, orderID)
	})

	result, err := svc.ConfirmPayment("ref-once")
	require.NoError(t, err)
	assert.Equal(t, "payment verified", result.Message)
	assert.Equal(t, StatusCompleted, result.Payment.Status)
	require.NotNil(t, result.Payment.PaidAt)
	// The order was already past PENDING, so the bridge leaves it alone.
	assert.False(t, result.OrderConfirmed)
	assert.Equal(t, 1, fired)

	// A repeated webhook is a no-op: no second completion, no second
	// listener fire.
	again, err := svc.ConfirmPayment("ref-once")
	require.NoError(t, err)
	assert.Equal(t, "payment already verified", again.Message)
	assert.Equal(t, StatusCompleted, again.Payment.Status)
	assert.Equal(t, 1, fired)
}

func TestConfirmPaymentRejectsNonPending(t *testing.T) {
	svc, db := newTestService(t)
	o := seedConfirmedOrder(t, db, "ORD2026080002")

	require.NoError(t, db.Create(&Payment{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Amount:    o.TotalAmount,
		Status:    StatusPending,
		Reference: "ref-failed",
	}).Error)

	_, err := svc.FailPayment("ref-failed", "card declined")
	require.NoError(t, err)

	_, err = svc.ConfirmPayment("ref-failed")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestConfirmPaymentUnknownReference(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ConfirmPayment("no-such-ref")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHasCompletedPayment(t *testing.T) {
	svc, db := newTestService(t)
	o := seedConfirmedOrder(t, db, "ORD2026080003")

	paid, err := svc.HasCompletedPayment(o.ID)
	require.NoError(t, err)
	assert.False(t, paid)

	require.NoError(t, db.Create(&Payment{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Amount:    o.TotalAmount,
		Status:    StatusPending,
		Reference: "ref-paid",
	}).Error)
	_, err = svc.ConfirmPayment("ref-paid")
	require.NoError(t, err)

	paid, err = svc.HasCompletedPayment(o.ID)
	require.NoError(t, err)
	assert.True(t, paid)
}
