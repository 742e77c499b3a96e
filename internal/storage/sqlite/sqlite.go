// internal/storage/sqlite/sqlite.go
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rovshanmuradov/vault-browser/internal/metrics"
	"github.com/rovshanmuradov/vault-browser/internal/storage"
	"github.com/rovshanmuradov/vault-browser/internal/storage/models"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

const batchSize = 200

// gormLogger routes GORM output through zap.
type gormLogger struct {
	zapLogger     *zap.Logger
	logLevel      logger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(zapLogger *zap.Logger) logger.Interface {
	return &gormLogger{
		zapLogger:     zapLogger,
		logLevel:      logger.Warn,
		slowThreshold: 200 * time.Millisecond,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.zapLogger.Sugar().Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.zapLogger.Sugar().Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.zapLogger.Sugar().Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.logLevel >= logger.Error:
		l.zapLogger.Error("Query failed", append(fields, zap.Error(err))...)
	case elapsed > l.slowThreshold && l.logLevel >= logger.Warn:
		l.zapLogger.Warn("Slow query", fields...)
	case l.logLevel >= logger.Info:
		l.zapLogger.Debug("Query", fields...)
	}
}

// sqliteStorage implements storage.Storage on a single SQLite file.
type sqliteStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStorage opens (creating if needed) the database at path and migrates it.
func NewStorage(path string, zapLogger *zap.Logger) (storage.Storage, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newGormLogger(zapLogger.Named("gorm")),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	// One writer at a time; a single connection also keeps :memory: shared.
	sqlDB.SetMaxOpenConns(1)

	s := &sqliteStorage{
		db:     db,
		logger: zapLogger.Named("storage"),
	}
	if err := s.RunMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStorage) RunMigrations() error {
	if err := s.db.AutoMigrate(&models.Snapshot{}, &models.VaultRecord{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *sqliteStorage) Save(ctx context.Context, vaults []vault.Vault, fetchedAt time.Time) error {
	snap := models.Snapshot{
		ID:        uuid.NewString(),
		FetchedAt: fetchedAt.UTC(),
		Count:     len(vaults),
	}
	records := make([]models.VaultRecord, len(vaults))
	for i, v := range vaults {
		records[i] = models.NewVaultRecord(snap.ID, i, v)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Delete(&models.VaultRecord{}).Error; err != nil {
			return err
		}
		if err := global.Delete(&models.Snapshot{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&snap).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, batchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	metrics.SnapshotSize.Set(float64(len(vaults)))
	s.logger.Debug("Snapshot stored", zap.String("id", snap.ID), zap.Int("count", snap.Count))
	return nil
}

func (s *sqliteStorage) Latest(ctx context.Context) ([]vault.Vault, time.Time, error) {
	var snap models.Snapshot
	err := s.db.WithContext(ctx).Order("fetched_at desc").First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, storage.ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var records []models.VaultRecord
	err = s.db.WithContext(ctx).
		Where("snapshot_id = ?", snap.ID).
		Order("position asc").
		Find(&records).Error
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load vaults: %w", err)
	}

	vaults := make([]vault.Vault, len(records))
	for i, r := range records {
		vaults[i] = r.Vault()
	}
	return vaults, snap.FetchedAt, nil
}

func (s *sqliteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
