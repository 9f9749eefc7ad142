package database

import (
	"fmt"
	"log"

	"mes-planner/internal/config"
	"mes-planner/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the configured database and runs migrations. Startup cannot
// continue without it, so failures are fatal.
func Init(cfg *config.Config) *gorm.DB {
	db, err := Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Printf("Veritabanı bağlantısı başarılı (%s). Migration tamamlandı.", cfg.DatabaseDriver)
	return db
}

func Open(driver, dsn string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	switch driver {
	case config.DriverPostgres:
		return gorm.Open(postgres.Open(dsn), gormCfg)

	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, err
		}
		// sqlite tek yazıcıya izin verir; bağlantıları serileştir
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil

	default:
		return nil, fmt.Errorf("bilinmeyen veritabanı sürücüsü: %s", driver)
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Forecast{},
		&models.AuditLog{},
	)
}
