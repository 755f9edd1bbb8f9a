package mysql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to MySQL and applies the pool settings from cfg
func Open(cfg *config.StorageConfig, dsn string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		Logger:         NewGormLogger(logger, gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns(cfg))
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.Info("Database connected",
		slog.String("driver", "mysql"),
		slog.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return db, nil
}

// maxIdleConns caps the idle pool at MaxOpenConns; zero MaxOpenConns means unlimited
func maxIdleConns(cfg *config.StorageConfig) int {
	if cfg.MaxOpenConns > 0 {
		return min(cfg.MaxIdleConns, cfg.MaxOpenConns)
	}
	return cfg.MaxIdleConns
}

// GormLogger forwards GORM logs to slog
type GormLogger struct {
	logger        *slog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger creates a GORM logger writing through logger
func NewGormLogger(logger *slog.Logger, level gormlogger.LogLevel) *GormLogger {
	return &GormLogger{logger: logger, level: level, slowThreshold: 200 * time.Millisecond}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	sql, rows := fc()
	elapsed := time.Since(begin)
	attrs := []any{
		slog.String("sql", sql),
		slog.Duration("elapsed", elapsed),
		slog.Int64("rows", rows),
	}

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		l.logger.ErrorContext(ctx, "Database operation failed", append(attrs, slog.String("error", err.Error()))...)
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		l.logger.WarnContext(ctx, "Slow SQL query", attrs...)
	case l.level >= gormlogger.Info:
		l.logger.DebugContext(ctx, "SQL query executed", attrs...)
	}
}
