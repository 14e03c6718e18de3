package database

import (
	"fmt"
	"time"

	"ledger-backend/internal/config"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the configured database into DB and migrates it. Any failure is fatal.
func Init(cfg *config.Config) {
	db, err := Open(cfg)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			log.Fatalf("AutoMigrate failed: %v", err)
		}
		log.Info("Database connected. Migration finished.")
	} else {
		log.Info("Database connected. Migration skipped.")
	}

	DB = db
}

// NowUTC stamps created_at/updated_at. Stored times are always UTC so that
// sqlite's text comparison agrees with the instant order.
func NowUTC() time.Time { return time.Now().UTC() }

func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        NowUTC,
	})
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseDriver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		// foreign keys are off by default in sqlite
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Older databases may have been created before the one-supply-per-purchase
	// rule; refuse to continue when duplicates exist since the unique index
	// below cannot be built over them.
	if db.Migrator().HasTable(&models.SupplyTransaction{}) {
		var dupes int64
		err := db.Raw(`
			SELECT COUNT(*) FROM (
				SELECT purchase_transaction_id FROM supply_transactions
				GROUP BY purchase_transaction_id HAVING COUNT(*) > 1
			) d
		`).Scan(&dupes).Error
		if err != nil {
			return err
		}
		if dupes > 0 {
			return fmt.Errorf("%d purchase transactions are supplied more than once", dupes)
		}
	}

	return db.AutoMigrate(models.All()...)
}
