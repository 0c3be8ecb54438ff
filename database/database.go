package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/mycms/config"
	"github.com/rpupo63/mycms/models"
)

const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// ErrUnsupportedDBType is returned by Open for a Type it has no driver for
var ErrUnsupportedDBType = errors.New("unsupported database type")

// Settings describes how to reach the database
type Settings struct {
	Type       string
	DSN        string // postgres connection string
	ReplicaDSN string // optional read replica, postgres only
	SQLitePath string
	LogLevel   logger.LogLevel
}

// SettingsFromConfig reads DB_* variables. DATABASE_URL wins over the split
// DB_HOST/DB_USER/... variables when both are present.
func SettingsFromConfig(c config.Config) Settings {
	dbType := config.GetString(c, "DB_TYPE", TypePostgres)
	if dbType == "supa" {
		dbType = TypePostgres
	}

	dsn := config.GetString(c, "DATABASE_URL", "")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			config.GetString(c, "DB_HOST", "localhost"),
			config.GetString(c, "DB_USER", "postgres"),
			config.GetString(c, "DB_PASSWORD", ""),
			config.GetString(c, "DB_NAME", "mycms"),
			config.GetString(c, "DB_PORT", "5432"),
			config.GetString(c, "DB_SSLMODE", "disable"),
		)
	}

	level := logger.Warn
	if config.GetBool(c, "DB_DEBUG", false) {
		level = logger.Info
	}

	return Settings{
		Type:       dbType,
		DSN:        dsn,
		ReplicaDSN: config.GetString(c, "DB_REPLICA_DSN", ""),
		SQLitePath: config.GetString(c, "SQLITE_PATH", "mycms.db"),
		LogLevel:   level,
	}
}

// Open connects to the configured database and verifies the connection.
func Open(s Settings) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  s.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	gormConfig := &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		PrepareStmt:    false,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch s.Type {
	case TypePostgres:
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  s.DSN,
			PreferSimpleProtocol: true,
		}), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if s.ReplicaDSN != "" {
			err = db.Use(dbresolver.Register(dbresolver.Config{
				Replicas: []gorm.Dialector{postgres.New(postgres.Config{
					DSN:                  s.ReplicaDSN,
					PreferSimpleProtocol: true,
				})},
				Policy: dbresolver.RandomPolicy{},
			}))
			if err != nil {
				return nil, fmt.Errorf("register read replica: %w", err)
			}
		}
	case TypeSQLite:
		if dir := filepath.Dir(s.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		dsn := "file:" + s.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000"
		db, err = gorm.Open(sqlite.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDBType, s.Type)
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}
	return db, nil
}

type Database struct {
	db           *gorm.DB
	blogPostRepo *BlogPostRepo
	userRepo     *UserRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		blogPostRepo: NewBlogPostRepo(db),
		userRepo:     NewUserRepo(db),
	}
}

func (d Database) BlogPostRepo() *BlogPostRepo {
	return d.blogPostRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

// Migrate creates or alters tables, indexes and constraints for every model
func (d Database) Migrate(ctx context.Context) error {
	return d.db.WithContext(ctx).AutoMigrate(models.All()...)
}

// Ping checks that the primary database answers queries
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
