// internal/domain/delivery/workflow_test.go
package delivery

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/inventory"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/domain/payment"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newWorkflowService(t *testing.T) (*Service, *gorm.DB) {
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
		&payment.Payment{},
		&Delivery{},
	))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{}
	orders := order.NewService(db, cfg, inventory.NewService(db, cfg), logger)
	users := user.NewService(db, cfg)
	stores := store.NewService(db, cfg)
	payments := payment.NewService(db, cfg, orders, logger)

	return NewService(db, cfg, orders, users, stores, payments, nil, nil, logger), db
}

func seedWorkflowOrder(t *testing.T, db *gorm.DB, number string, status order.Status) *order.Order {
	t.Helper()
	o := &order.Order{
		OrderNumber:    number,
		UserID:         1,
		StoreID:        1,
		Status:         status,
		DeliveryMethod: order.MethodDelivery,
		SubtotalAmount: 10000,
		TotalAmount:    11600,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func deliveryCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&Delivery{}).Count(&count).Error)
	return count
}

func TestCreateWorkflowReturnsExistingDelivery(t *testing.T) {
	svc, db := newWorkflowService(t)
	o := seedWorkflowOrder(t, db, "ORD2026080010", order.StatusReadyForPickup)

	eta := time.Now().UTC().Add(20 * time.Minute)
	seeded := &Delivery{
		OrderID:               o.ID,
		DriverID:              5,
		UserID:                o.UserID,
		StoreID:               o.StoreID,
		Status:                StatusAssigned,
		EstimatedDeliveryTime: &eta,
	}
	require.NoError(t, db.Create(seeded).Error)

	result, err := svc.CreateWorkflow(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, result.AlreadyExisted)
	assert.Equal(t, seeded.ID, result.Delivery.ID)
	require.NotNil(t, result.EstimatedAt)

	assert.Equal(t, int64(1), deliveryCount(t, db))
}

func TestCreateWorkflowRequiresVerifiedPayment(t *testing.T) {
	svc, db := newWorkflowService(t)
	o := seedWorkflowOrder(t, db, "ORD2026080011", order.StatusReadyForPickup)

	_, err := svc.CreateWorkflow(context.Background(), o.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentNotVerified)

	// A refused dispatch leaves no trace in the deliveries table.
	assert.Equal(t, int64(0), deliveryCount(t, db))
}

func TestCreateWorkflowRequiresReadyOrder(t *testing.T) {
	svc, db := newWorkflowService(t)
	o := seedWorkflowOrder(t, db, "ORD2026080012", order.StatusConfirmed)

	require.NoError(t, db.Create(&payment.Payment{
		OrderID:   o.ID,
		UserID:    o.UserID,
		Amount:    o.TotalAmount,
		Status:    payment.StatusCompleted,
		Reference: "ref-ready",
	}).Error)

	_, err := svc.CreateWorkflow(context.Background(), o.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrInvalidState)
	assert.Equal(t, int64(0), deliveryCount(t, db))
}

func TestPersistRunFallsBackToExisting(t *testing.T) {
	svc, db := newWorkflowService(t)

	seeded := &Delivery{OrderID: 7, DriverID: 2, UserID: 1, StoreID: 1, Status: StatusAssigned}
	require.NoError(t, db.Create(seeded).Error)

	// Losing the insert race against the unique order_id index must hand
	// back the winner's row instead of an error.
	got, existed, err := svc.persistRun(&Delivery{OrderID: 7, DriverID: 3, UserID: 1, StoreID: 1, Status: StatusAssigned})
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, seeded.ID, got.ID)
	assert.Equal(t, uint(2), got.DriverID)
	assert.Equal(t, int64(1), deliveryCount(t, db))

	fresh, existed, err := svc.persistRun(&Delivery{OrderID: 8, DriverID: 3, UserID: 1, StoreID: 1, Status: StatusAssigned})
	require.NoError(t, err)
	assert.False(t, existed)
	assert.NotZero(t, fresh.ID)
	assert.Equal(t, int64(2), deliveryCount(t, db))
}
