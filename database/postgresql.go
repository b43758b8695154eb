package database

import (
	"context"
	"time"

	"TeleClinic/config"
	"TeleClinic/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	activeSlotIndex = "uniq_appointments_active_slot"
	dayTokenIndex   = "uniq_appointments_doctor_day_token"
	patientIndex    = "idx_appointments_patient_created"
)

// indexStatements create the indexes AutoMigrate cannot express. The partial index
// lets a cancelled slot be booked again while keeping one live booking per slot.
var indexStatements = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + activeSlotIndex + ` ON appointments (doctor_id, slot_date, slot_time) WHERE cancelled = false`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + dayTokenIndex + ` ON appointments (doctor_id, slot_date, token_number)`,
	`CREATE INDEX IF NOT EXISTS ` + patientIndex + ` ON appointments (patient_id, created_at DESC)`,
}

// InitDB initializes the database connection and configures it.
func InitDB(ctx context.Context, cfg *config.AppConfig) (*gorm.DB, error) {
	// Configure logging level based on environment
	logMode := logger.Silent
	if cfg.IsDev() {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		Logger:         logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}
	if err := testDatabaseConnection(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

// configureConnectionPool sets up the connection pool settings for the database.
func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	sqlDB.SetMaxOpenConns(40)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return nil
}

// testDatabaseConnection verifies that the database connection is functional.
func testDatabaseConnection(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping database")
	}
	return nil
}

// Migrate performs schema migrations and creates the booking indexes.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Doctor{},
		&models.Patient{},
		&models.Appointment{},
		&models.Payment{},
	); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}
	return EnsureIndexes(ctx, db)
}

// EnsureIndexes creates missing booking indexes. It is safe to run repeatedly.
func EnsureIndexes(ctx context.Context, db *gorm.DB) error {
	for _, stmt := range indexStatements {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return errors.Wrapf(err, "failed to create index: %s", stmt)
		}
	}
	return nil
}

// FixIndexes drops unique indexes on (doctor_id, slot_date, slot_time) that ignore the
// cancelled flag, then rebuilds the booking indexes from scratch. It returns the names
// of the stale indexes it removed.
func FixIndexes(ctx context.Context, db *gorm.DB, log *zap.Logger) ([]string, error) {
	var stale []string
	err := db.WithContext(ctx).Raw(`SELECT indexname FROM pg_indexes
		WHERE tablename = 'appointments'
		AND indexdef ILIKE 'CREATE UNIQUE INDEX%'
		AND indexdef ILIKE '%slot_time%'
		AND indexdef NOT ILIKE '%WHERE%'`).Scan(&stale).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list appointment indexes")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range append(stale, activeSlotIndex, dayTokenIndex) {
			if err := tx.Exec(`DROP INDEX IF EXISTS "` + name + `"`).Error; err != nil {
				return errors.Wrapf(err, "failed to drop index %s", name)
			}
			log.Info("dropped index", zap.String("index", name))
		}
		for _, stmt := range indexStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return errors.Wrapf(err, "failed to create index: %s", stmt)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stale, nil
}
