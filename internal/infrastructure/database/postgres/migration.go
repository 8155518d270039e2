// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/marketplace-backend/internal/domain/delivery"
	"github.com/your-org/marketplace-backend/internal/domain/inventory"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/domain/payment"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// User domain - base tables
		&user.User{},
		&user.Profile{},
		&user.Address{},

		// Store domain
		&store.Store{},
		&store.Address{},

		// Product catalog
		&product.Category{},
		&product.Product{},

		// Inventory ledger
		&inventory.Inventory{},

		// Order workflow
		&order.Order{},
		&order.OrderItem{},
		&order.Sequence{},

		// Payment bridge
		&payment.Payment{},

		// Delivery dispatch
		&delivery.Delivery{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_active ON users(role, is_active)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_profile_default ON addresses(profile_id, is_default)",

		// Store indexes
		"CREATE INDEX IF NOT EXISTS idx_stores_owner ON stores(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_stores_code ON stores(store_code)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku)",

		// Inventory indexes
		"CREATE INDEX IF NOT EXISTS idx_inventories_store ON inventories(store_id)",
		"CREATE INDEX IF NOT EXISTS idx_inventories_store_available ON inventories(store_id, available_quantity)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_products_product ON inventory_products(product_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_store_status ON orders(store_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_driver ON orders(driver_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Payment indexes
		"CREATE INDEX IF NOT EXISTS idx_payments_order_status ON payments(order_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_payments_reference ON payments(reference)",

		// Delivery indexes
		"CREATE INDEX IF NOT EXISTS idx_deliveries_driver_status ON deliveries(driver_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_deliveries_store ON deliveries(store_id)",
		"CREATE INDEX IF NOT EXISTS idx_deliveries_created_at ON deliveries(created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedTestDrivers(); err != nil {
		return fmt.Errorf("failed to seed test drivers: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedCategories creates default product categories
func (m *Migration) seedCategories() error {
	log.Println("🏷️ Seeding categories...")

	categories := []product.Category{
		{
			Name:        "Groceries",
			Slug:        "groceries",
			Description: "Everyday food and household staples",
			IsActive:    true,
		},
		{
			Name:        "Electronics",
			Slug:        "electronics",
			Description: "Electronic devices, gadgets, and accessories",
			IsActive:    true,
		},
		{
			Name:        "Pharmacy",
			Slug:        "pharmacy",
			Description: "Over-the-counter medicine and wellness products",
			IsActive:    true,
		},
	}

	for _, category := range categories {
		var existing product.Category
		result := m.db.Where("slug = ?", category.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			log.Printf("✅ Created category: %s", category.Name)
		} else {
			log.Printf("⏭️ Category already exists: %s", category.Name)
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error == nil {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:    "admin@example.com",
		Password: string(hashedPassword),
		Role:     user.RoleAdmin,
		IsActive: true,
		Profile: &user.Profile{
			FirstName: "Admin",
			LastName:  "User",
		},
	}

	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("✅ Created admin user: admin@example.com (ID: %d)", adminUser.ID)
	return nil
}

// seedTestDrivers creates driver accounts with positions for development
func (m *Migration) seedTestDrivers() error {
	log.Println("🚚 Seeding test drivers...")

	lat1, lon1 := -1.2921, 36.8219
	lat2, lon2 := -1.3032, 36.8440

	drivers := []user.User{
		{
			Email:    "driver1@example.com",
			Role:     user.RoleDriver,
			IsActive: true,
			Profile: &user.Profile{
				FirstName:   "Derek",
				LastName:    "Rider",
				PhoneNumber: "+254700000001",
				Addresses: []user.Address{
					{
						Area:      "CBD",
						Town:      "Nairobi",
						County:    "Nairobi",
						Country:   "Kenya",
						Latitude:  &lat1,
						Longitude: &lon1,
						IsDefault: true,
					},
				},
			},
		},
		{
			Email:    "driver2@example.com",
			Role:     user.RoleDriver,
			IsActive: true,
			Profile: &user.Profile{
				FirstName:   "Dana",
				LastName:    "Wheels",
				PhoneNumber: "+254700000002",
				Addresses: []user.Address{
					{
						Area:      "South B",
						Town:      "Nairobi",
						County:    "Nairobi",
						Country:   "Kenya",
						Latitude:  &lat2,
						Longitude: &lon2,
						IsDefault: true,
					},
				},
			},
		},
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Driver123!"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	for _, driver := range drivers {
		var existing user.User
		result := m.db.Where("email = ?", driver.Email).First(&existing)
		if result.Error != nil {
			driver.Password = string(hashedPassword)
			if err := m.db.Create(&driver).Error; err != nil {
				log.Printf("⚠️ Failed to create driver %s: %v", driver.Email, err)
			} else {
				log.Printf("✅ Created driver: %s", driver.Email)
			}
		} else {
			log.Printf("⏭️ Driver already exists: %s", driver.Email)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"deliveries",
		"payments",
		"order_items",
		"orders",
		"order_sequences",
		"inventory_products",
		"inventories",
		"products",
		"categories",
		"store_addresses",
		"stores",
		"addresses",
		"profiles",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count
		log.Printf("%-25s | %d records", table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)

	return nil
}
