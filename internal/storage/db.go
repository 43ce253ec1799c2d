package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("not found")

type Config struct {
	Driver string // sqlite | postgres
	Path   string // sqlite file
	DSN    string // postgres connection string
}

type Store struct {
	DB *gorm.DB
}

// Open connects to the application database and migrates its schema. An
// empty driver with a DSN selects postgres; otherwise an embedded sqlite
// file is used.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" && cfg.DSN != "" {
		driver = "postgres"
	}
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		path := cfg.Path
		if path == "" {
			path = "resource2code.db"
		}
		logger.Info("using embedded sqlite database", zap.String("path", path))
		dialector = sqlite.Open(path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	case "postgres", "postgresql":
		if cfg.DSN == "" {
			return nil, errors.New("postgres driver requires a DSN")
		}
		logger.Info("using postgres database")
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&dataSourceRecord{}, &codeSampleRecord{}, &sysConfigRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
