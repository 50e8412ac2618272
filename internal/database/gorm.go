package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"property-backoffice/internal/config"
	"property-backoffice/internal/models"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	db  *gorm.DB
	now func() time.Time
}

// Open connects to the configured database and verifies the connection
func Open(cfg config.DatabaseConfig, logLevel string) (*GormDB, error) {
	dialector, err := dialectorFor(cfg.Type, cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Type == "sqlite" {
		// a single connection keeps :memory: databases shared and serializes writers
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Type, err)
	}

	return NewGormDBFromDB(db), nil
}

func dialectorFor(dbType, dsn string) (gorm.Dialector, error) {
	switch dbType {
	case "postgres":
		return postgresDialector(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
}

func newLogger(level string) logger.Interface {
	logLevel := logger.Warn
	switch level {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "info", "debug":
		logLevel = logger.Info
	}
	return logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db, now: time.Now}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

// SetClock replaces the time source used for date stamping
func (gdb *GormDB) SetClock(now func() time.Time) {
	gdb.now = now
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database is reachable
func (gdb *GormDB) Ping(ctx context.Context) error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Property{},
		&models.PurchaseDetails{},
		&models.LoanDetails{},
		&models.RentLog{},
		&models.PaymentLog{},
		&models.Transaction{},
		&models.Contact{},
		&models.Tenant{},
		&models.DeleteLog{},
	)
}

// today returns the current date at midnight UTC
func (gdb *GormDB) today() time.Time {
	now := gdb.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Stats returns row counts per table
func (gdb *GormDB) Stats(ctx context.Context) (map[string]int64, error) {
	tables := map[string]interface{}{
		"properties":       &models.Property{},
		"purchase_details": &models.PurchaseDetails{},
		"loan_details":     &models.LoanDetails{},
		"rent_logs":        &models.RentLog{},
		"payment_logs":     &models.PaymentLog{},
		"transactions":     &models.Transaction{},
		"contacts":         &models.Contact{},
		"tenants":          &models.Tenant{},
		"delete_logs":      &models.DeleteLog{},
	}

	stats := make(map[string]int64, len(tables)+1)
	for name, model := range tables {
		var count int64
		if err := gdb.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		stats[name] = count
	}

	var missing int64
	if err := gdb.db.WithContext(ctx).Model(&models.Property{}).
		Where("lat IS NULL OR lng IS NULL").Count(&missing).Error; err != nil {
		return nil, err
	}
	stats["properties_missing_coordinates"] = missing

	return stats, nil
}
