// internal/domain/inventory/service.go
package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"gorm.io/gorm"
)

// Sentinel errors for ledger operations
var (
	ErrNotFound          = errors.New("inventory not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidRelease    = errors.New("cannot release more than reserved")
	ErrInvalidConfirm    = errors.New("cannot confirm sale for more than reserved")
)

// Service handles inventory ledger business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateInventoryRequest represents inventory record creation data
type CreateInventoryRequest struct {
	Name              string `json:"name" binding:"required"`
	StoreID           uint   `json:"store_id" binding:"required"`
	AvailableQuantity int    `json:"available_quantity"`
	ReorderLevel      int    `json:"reorder_level"`
	MaxStockLevel     int    `json:"max_stock_level"`
	CostPrice         int64  `json:"cost_price"` // In cents
	ProductIDs        []uint `json:"product_ids"`
}

// AdjustStockRequest represents a stock level adjustment
type AdjustStockRequest struct {
	Action         Action `json:"action" binding:"required"`
	QuantityChange int    `json:"quantity_change" binding:"required"`
	CostPrice      int64  `json:"cost_price,omitempty"`
}

// Stats summarizes ledger state, optionally for one store
type Stats struct {
	TotalRecords    int64 `json:"total_records"`
	LowStockItems   int64 `json:"low_stock_items"`
	OutOfStockItems int64 `json:"out_of_stock_items"`
	InStockItems    int64 `json:"in_stock_items"`
	InventoryValue  int64 `json:"inventory_value"` // In cents
}

// Create creates a new inventory record for a store
func (s *Service) Create(req *CreateInventoryRequest) (*Inventory, error) {
	var st store.Store
	if err := s.db.First(&st, req.StoreID).Error; err != nil {
		return nil, fmt.Errorf("store %d: %w", req.StoreID, store.ErrNotFound)
	}

	if req.AvailableQuantity < 0 {
		return nil, fmt.Errorf("initial quantity cannot be negative")
	}

	now := time.Now().UTC()
	inv := &Inventory{
		Name:              req.Name,
		StoreID:           req.StoreID,
		AvailableQuantity: req.AvailableQuantity,
		ReorderLevel:      req.ReorderLevel,
		MaxStockLevel:     req.MaxStockLevel,
		CostPrice:         req.CostPrice,
		LastRestockedAt:   &now,
		LastAction:        ActionRestock,
	}

	if len(req.ProductIDs) > 0 {
		var products []product.Product
		if err := s.db.Find(&products, req.ProductIDs).Error; err != nil {
			return nil, fmt.Errorf("failed to resolve products: %w", err)
		}
		inv.Products = products
	}

	if err := s.db.Create(inv).Error; err != nil {
		return nil, fmt.Errorf("failed to create inventory: %w", err)
	}

	return inv, nil
}

// FindOne retrieves an inventory record with its products
func (s *Service) FindOne(id uint) (*Inventory, error) {
	return findOne(s.db, id)
}

func findOne(db *gorm.DB, id uint) (*Inventory, error) {
	var inv Inventory
	err := db.Preload("Products").First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("inventory %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve inventory: %w", err)
	}
	return &inv, nil
}

// FindAll retrieves inventory records, optionally scoped to a store
func (s *Service) FindAll(storeID *uint) ([]Inventory, error) {
	query := s.db.Preload("Products").Order("created_at DESC")
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}

	var records []Inventory
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve inventories: %w", err)
	}
	return records, nil
}

// FindLowStock lists records at or below their reorder level
func (s *Service) FindLowStock(storeID *uint) ([]Inventory, error) {
	query := s.db.Preload("Products").
		Where("available_quantity <= reorder_level").
		Order("available_quantity ASC")
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}

	var records []Inventory
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock records: %w", err)
	}
	return records, nil
}

// FindOutOfStock lists records with no available stock
func (s *Service) FindOutOfStock(storeID *uint) ([]Inventory, error) {
	query := s.db.Preload("Products").
		Where("available_quantity = 0").
		Order("created_at DESC")
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}

	var records []Inventory
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve out of stock records: %w", err)
	}
	return records, nil
}

// GetStats summarizes the ledger, optionally for one store
func (s *Service) GetStats(storeID *uint) (*Stats, error) {
	base := s.db.Model(&Inventory{})
	if storeID != nil {
		base = base.Where("store_id = ?", *storeID)
	}

	stats := &Stats{}
	if err := base.Session(&gorm.Session{}).Count(&stats.TotalRecords).Error; err != nil {
		return nil, fmt.Errorf("failed to count inventories: %w", err)
	}
	if err := base.Session(&gorm.Session{}).
		Where("available_quantity <= reorder_level").
		Count(&stats.LowStockItems).Error; err != nil {
		return nil, fmt.Errorf("failed to count low stock: %w", err)
	}
	if err := base.Session(&gorm.Session{}).
		Where("available_quantity = 0").
		Count(&stats.OutOfStockItems).Error; err != nil {
		return nil, fmt.Errorf("failed to count out of stock: %w", err)
	}
	stats.InStockItems = stats.TotalRecords - stats.OutOfStockItems

	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(available_quantity * cost_price), 0)").
		Scan(&stats.InventoryValue).Error; err != nil {
		return nil, fmt.Errorf("failed to compute inventory value: %w", err)
	}

	return stats, nil
}

// RESERVATION LEDGER
//
// Reserve, Release and ConfirmSale are single conditional UPDATEs: the
// guard lives in the WHERE clause and RowsAffected==0 is the failure
// signal, so two concurrent reservations can never both succeed on the
// same units.

// Reserve moves quantity from available to reserved
func (s *Service) Reserve(inventoryID uint, quantity int) (*Inventory, error) {
	return reserve(s.db, inventoryID, quantity)
}

// ReserveTx is Reserve running inside the caller's transaction
func (s *Service) ReserveTx(tx *gorm.DB, inventoryID uint, quantity int) (*Inventory, error) {
	return reserve(tx, inventoryID, quantity)
}

func reserve(db *gorm.DB, inventoryID uint, quantity int) (*Inventory, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("reserve quantity must be positive")
	}

	result := db.Model(&Inventory{}).
		Where("id = ? AND available_quantity >= ?", inventoryID, quantity).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity - ?", quantity),
			"reserved_quantity":  gorm.Expr("reserved_quantity + ?", quantity),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to reserve stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		inv, err := findOne(db, inventoryID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: available %d, requested %d",
			ErrInsufficientStock, inv.AvailableQuantity, quantity)
	}

	return findOne(db, inventoryID)
}

// Release moves quantity from reserved back to available
func (s *Service) Release(inventoryID uint, quantity int) (*Inventory, error) {
	return release(s.db, inventoryID, quantity)
}

// ReleaseTx is Release running inside the caller's transaction
func (s *Service) ReleaseTx(tx *gorm.DB, inventoryID uint, quantity int) (*Inventory, error) {
	return release(tx, inventoryID, quantity)
}

func release(db *gorm.DB, inventoryID uint, quantity int) (*Inventory, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("release quantity must be positive")
	}

	result := db.Model(&Inventory{}).
		Where("id = ? AND reserved_quantity >= ?", inventoryID, quantity).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity + ?", quantity),
			"reserved_quantity":  gorm.Expr("reserved_quantity - ?", quantity),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to release stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		inv, err := findOne(db, inventoryID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: reserved %d, requested %d",
			ErrInvalidRelease, inv.ReservedQuantity, quantity)
	}

	return findOne(db, inventoryID)
}

// ConfirmSale permanently removes reserved stock once goods are committed
func (s *Service) ConfirmSale(inventoryID uint, quantity int) (*Inventory, error) {
	return confirmSale(s.db, inventoryID, quantity)
}

// ConfirmSaleTx is ConfirmSale running inside the caller's transaction
func (s *Service) ConfirmSaleTx(tx *gorm.DB, inventoryID uint, quantity int) (*Inventory, error) {
	return confirmSale(tx, inventoryID, quantity)
}

func confirmSale(db *gorm.DB, inventoryID uint, quantity int) (*Inventory, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("confirm quantity must be positive")
	}

	result := db.Model(&Inventory{}).
		Where("id = ? AND reserved_quantity >= ?", inventoryID, quantity).
		Updates(map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", quantity),
			"last_action":       ActionSale,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to confirm sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		inv, err := findOne(db, inventoryID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: reserved %d, requested %d",
			ErrInvalidConfirm, inv.ReservedQuantity, quantity)
	}

	return findOne(db, inventoryID)
}

// MULTI-RECORD RESERVATION

// FindByProduct lists inventory records holding a product, optionally
// scoped to a store, in creation order.
func (s *Service) FindByProduct(productID uint, storeID *uint) ([]Inventory, error) {
	return findByProduct(s.db, productID, storeID)
}

func findByProduct(db *gorm.DB, productID uint, storeID *uint) ([]Inventory, error) {
	query := db.
		Joins("JOIN inventory_products ip ON ip.inventory_id = inventories.id").
		Where("ip.product_id = ?", productID).
		Order("inventories.created_at ASC")
	if storeID != nil {
		query = query.Where("inventories.store_id = ?", *storeID)
	}

	var records []Inventory
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find inventories for product %d: %w", productID, err)
	}
	return records, nil
}

// TotalProductStock sums available stock for a product across a store's records
func (s *Service) TotalProductStock(productID, storeID uint) (int, error) {
	return totalProductStock(s.db, productID, storeID)
}

// TotalProductStockTx is TotalProductStock inside the caller's transaction
func (s *Service) TotalProductStockTx(tx *gorm.DB, productID, storeID uint) (int, error) {
	return totalProductStock(tx, productID, storeID)
}

func totalProductStock(db *gorm.DB, productID, storeID uint) (int, error) {
	records, err := findByProduct(db, productID, &storeID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, inv := range records {
		total += inv.AvailableQuantity
	}
	return total, nil
}

// ReserveForProduct greedily reserves quantity for a product across the
// store's inventory records in listing order. There is no single atomic
// guard across records: if stock runs out part-way, every reservation
// made so far is released before the failure is surfaced.
func (s *Service) ReserveForProduct(productID uint, quantity int, storeID uint) error {
	return reserveForProduct(s.db, productID, quantity, storeID)
}

// ReserveForProductTx is ReserveForProduct inside the caller's transaction
func (s *Service) ReserveForProductTx(tx *gorm.DB, productID uint, quantity int, storeID uint) error {
	return reserveForProduct(tx, productID, quantity, storeID)
}

func reserveForProduct(db *gorm.DB, productID uint, quantity int, storeID uint) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve quantity must be positive")
	}

	records, err := findByProduct(db, productID, &storeID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("product %d not stocked in store %d: %w", productID, storeID, ErrNotFound)
	}

	type hold struct {
		inventoryID uint
		quantity    int
	}

	remaining := quantity
	var holds []hold
	for _, inv := range records {
		if remaining <= 0 {
			break
		}
		take := remaining
		if inv.AvailableQuantity < take {
			take = inv.AvailableQuantity
		}
		if take <= 0 {
			continue
		}

		if _, err := reserve(db, inv.ID, take); err != nil {
			// Another request may have drained this record since we
			// listed it; treat it as empty and move on.
			if errors.Is(err, ErrInsufficientStock) {
				continue
			}
			for _, h := range holds {
				release(db, h.inventoryID, h.quantity)
			}
			return err
		}
		holds = append(holds, hold{inventoryID: inv.ID, quantity: take})
		remaining -= take
	}

	if remaining > 0 {
		for _, h := range holds {
			if _, err := release(db, h.inventoryID, h.quantity); err != nil {
				// Compensation failed; the reservation leaks until an
				// operator adjusts the record.
				continue
			}
		}
		return fmt.Errorf("%w: short %d of %d units for product %d",
			ErrInsufficientStock, remaining, quantity, productID)
	}

	return nil
}

// ReleaseForProduct returns reserved quantity for a product back to the
// store's records in listing order. Used by order cancellation.
func (s *Service) ReleaseForProduct(productID uint, quantity int, storeID uint) error {
	if quantity <= 0 {
		return fmt.Errorf("release quantity must be positive")
	}

	records, err := findByProduct(s.db, productID, &storeID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("product %d not stocked in store %d: %w", productID, storeID, ErrNotFound)
	}

	remaining := quantity
	for _, inv := range records {
		if remaining <= 0 {
			break
		}
		give := remaining
		if inv.ReservedQuantity < give {
			give = inv.ReservedQuantity
		}
		if give <= 0 {
			continue
		}
		if _, err := release(s.db, inv.ID, give); err != nil {
			if errors.Is(err, ErrInvalidRelease) {
				continue
			}
			return err
		}
		remaining -= give
	}

	if remaining > 0 {
		return fmt.Errorf("%w: %d of %d units not held for product %d",
			ErrInvalidRelease, remaining, quantity, productID)
	}

	return nil
}

// ConfirmSaleForProduct converts reserved units of a product into
// confirmed sales across the store's records. Used by order confirmation.
func (s *Service) ConfirmSaleForProduct(productID uint, quantity int, storeID uint) error {
	return confirmSaleForProduct(s.db, productID, quantity, storeID)
}

// ConfirmSaleForProductTx is ConfirmSaleForProduct inside the caller's transaction
func (s *Service) ConfirmSaleForProductTx(tx *gorm.DB, productID uint, quantity int, storeID uint) error {
	return confirmSaleForProduct(tx, productID, quantity, storeID)
}

func confirmSaleForProduct(db *gorm.DB, productID uint, quantity int, storeID uint) error {
	if quantity <= 0 {
		return fmt.Errorf("confirm quantity must be positive")
	}

	records, err := findByProduct(db, productID, &storeID)
	if err != nil {
		return err
	}

	remaining := quantity
	for _, inv := range records {
		if remaining <= 0 {
			break
		}
		take := remaining
		if inv.ReservedQuantity < take {
			take = inv.ReservedQuantity
		}
		if take <= 0 {
			continue
		}
		if _, err := confirmSale(db, inv.ID, take); err != nil {
			if errors.Is(err, ErrInvalidConfirm) {
				continue
			}
			return err
		}
		remaining -= take
	}

	if remaining > 0 {
		return fmt.Errorf("%w: %d of %d units not held for product %d",
			ErrInvalidConfirm, remaining, quantity, productID)
	}

	return nil
}

// STOCK ADMINISTRATION

// AdjustStock applies a restock, adjustment, expiry or damage change to
// available stock. Decrements are guarded conditional updates so the
// available counter can never go negative.
func (s *Service) AdjustStock(id uint, req *AdjustStockRequest) (*Inventory, error) {
	change := req.QuantityChange

	switch req.Action {
	case ActionRestock:
		if change < 0 {
			change = -change
		}
		now := time.Now().UTC()
		updates := map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity + ?", change),
			"last_action":        ActionRestock,
			"last_restocked_at":  &now,
		}
		if req.CostPrice > 0 {
			updates["cost_price"] = req.CostPrice
		}
		result := s.db.Model(&Inventory{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to restock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, fmt.Errorf("inventory %d: %w", id, ErrNotFound)
		}

	case ActionAdjustment:
		// Adjustments can be positive or negative; negative adjustments
		// must not take available stock below zero.
		query := s.db.Model(&Inventory{}).Where("id = ?", id)
		if change < 0 {
			query = query.Where("available_quantity >= ?", -change)
		}
		result := query.Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity + ?", change),
			"last_action":        ActionAdjustment,
		})
		if result.Error != nil {
			return nil, fmt.Errorf("failed to adjust stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			if _, err := findOne(s.db, id); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: adjustment of %d would go negative", ErrInsufficientStock, change)
		}

	case ActionExpired, ActionDamaged:
		if change < 0 {
			change = -change
		}
		result := s.db.Model(&Inventory{}).
			Where("id = ? AND available_quantity >= ?", id, change).
			Updates(map[string]interface{}{
				"available_quantity": gorm.Expr("available_quantity - ?", change),
				"last_action":        req.Action,
			})
		if result.Error != nil {
			return nil, fmt.Errorf("failed to write off stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			if _, err := findOne(s.db, id); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: cannot remove %d units", ErrInsufficientStock, change)
		}

	default:
		return nil, fmt.Errorf("invalid stock action: %s", req.Action)
	}

	return findOne(s.db, id)
}

// AddProduct links a product to an inventory record
func (s *Service) AddProduct(inventoryID, productID uint) (*Inventory, error) {
	inv, err := findOne(s.db, inventoryID)
	if err != nil {
		return nil, err
	}

	for _, p := range inv.Products {
		if p.ID == productID {
			return nil, fmt.Errorf("product %d already in inventory %d", productID, inventoryID)
		}
	}

	var prod product.Product
	if err := s.db.First(&prod, productID).Error; err != nil {
		return nil, fmt.Errorf("product %d: %w", productID, product.ErrNotFound)
	}

	if err := s.db.Model(inv).Association("Products").Append(&prod); err != nil {
		return nil, fmt.Errorf("failed to add product to inventory: %w", err)
	}

	return findOne(s.db, inventoryID)
}

// RemoveProduct unlinks a product from an inventory record
func (s *Service) RemoveProduct(inventoryID, productID uint) (*Inventory, error) {
	inv, err := findOne(s.db, inventoryID)
	if err != nil {
		return nil, err
	}

	found := false
	for _, p := range inv.Products {
		if p.ID == productID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("product %d not in inventory %d: %w", productID, inventoryID, product.ErrNotFound)
	}

	if err := s.db.Model(inv).Association("Products").Delete(&product.Product{ID: productID}); err != nil {
		return nil, fmt.Errorf("failed to remove product from inventory: %w", err)
	}

	return findOne(s.db, inventoryID)
}

// Remove deletes an inventory record (explicit admin removal only)
func (s *Service) Remove(id uint) error {
	inv, err := findOne(s.db, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(inv).Error; err != nil {
		return fmt.Errorf("failed to delete inventory: %w", err)
	}
	return nil
}
