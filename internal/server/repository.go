package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"apptcal/config"
	"apptcal/internal/logging"
)

var (
	// ErrNotFound is returned when no schedule has the requested id
	ErrNotFound = errors.New("not found")
	// ErrUnknownClient is returned when a schedule references a missing client
	ErrUnknownClient = errors.New("client does not exist")
)

// Client is a row of the clients table
type Client struct {
	ID    int64  `gorm:"primaryKey"`
	Name  string `gorm:"not null"`
	Email string
	Phone string
}

// Schedule is a row of the schedules table.
// Times are stored without a zone as local wall-clock values.
type Schedule struct {
	ID              int64      `gorm:"primaryKey"`
	ClientID        int64      `gorm:"not null;index"`
	Client          *Client    `gorm:"constraint:OnDelete:CASCADE"`
	AppointmentTime time.Time  `gorm:"type:timestamp;not null"`
	EndTime         *time.Time `gorm:"type:timestamp"`
	Description     *string
}

// ScheduleRow is a schedule joined with its client's name
type ScheduleRow struct {
	Schedule
	ClientName string
}

// SchedulePatch is the set of columns PUT /schedules/:id rewrites.
// A nil ClientID keeps the current client; a nil Description keeps the current text.
type SchedulePatch struct {
	ClientID        *int64
	AppointmentTime time.Time
	EndTime         *time.Time
	Description     *string
}

// Repository persists clients and schedules
type Repository interface {
	ListClients(ctx context.Context) ([]Client, error)
	CreateClient(ctx context.Context, c *Client) error
	ListSchedules(ctx context.Context) ([]ScheduleRow, error)
	CreateSchedule(ctx context.Context, s *Schedule) error
	UpdateSchedule(ctx context.Context, id int64, patch SchedulePatch) (*Schedule, error)
	DeleteSchedule(ctx context.Context, id int64) (*Schedule, error)
}

// DSN returns the configured connection string, or one built from the
// DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and DB_NAME environment variables.
func DSN(cfg config.ServerConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getenv("DB_HOST", "localhost"),
		getenv("DB_PORT", "5432"),
		getenv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getenv("DB_NAME", "postgres"),
	)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GormRepository is the SQL-backed Repository (PostgreSQL or SQLite)
type GormRepository struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn and migrates the clients and schedules tables
func OpenPostgres(dsn string) (*GormRepository, error) {
	return open(postgres.Open(dsn))
}

// OpenSQLite opens the database file at path, creating it and its directory if needed
func OpenSQLite(path string) (*GormRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	// foreign keys are off by default in SQLite; the cascade needs them
	return open(sqlite.Open("file:" + path + "?_foreign_keys=on"))
}

func open(dialector gorm.Dialector) (*GormRepository, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logging.Log.Info("connected to database", zap.String("dialect", dialector.Name()))

	if err := db.AutoMigrate(&Client{}, &Schedule{}); err != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}
	return &GormRepository{db: db}, nil
}

// Close releases the connection pool
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *GormRepository) ListClients(ctx context.Context) ([]Client, error) {
	var clients []Client
	if err := r.db.WithContext(ctx).Order("id").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *GormRepository) CreateClient(ctx context.Context, c *Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *GormRepository) ListSchedules(ctx context.Context) ([]ScheduleRow, error) {
	var rows []ScheduleRow
	err := r.db.WithContext(ctx).
		Table("schedules").
		Select("schedules.*, clients.name AS client_name").
		Joins("JOIN clients ON clients.id = schedules.client_id").
		Order("schedules.appointment_time, schedules.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepository) CreateSchedule(ctx context.Context, s *Schedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireClient(tx, s.ClientID); err != nil {
			return err
		}
		return tx.Create(s).Error
	})
}

func (r *GormRepository) UpdateSchedule(ctx context.Context, id int64, patch SchedulePatch) (*Schedule, error) {
	var s Schedule
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&s, id).Error; err != nil {
			return notFound(err)
		}

		updates := map[string]any{
			"appointment_time": patch.AppointmentTime,
			"end_time":         patch.EndTime,
		}
		if patch.ClientID != nil {
			if err := requireClient(tx, *patch.ClientID); err != nil {
				return err
			}
			updates["client_id"] = *patch.ClientID
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if err := tx.Model(&s).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&s, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepository) DeleteSchedule(ctx context.Context, id int64) (*Schedule, error) {
	var s Schedule
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&s, id).Error; err != nil {
			return notFound(err)
		}
		return tx.Delete(&Schedule{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func requireClient(tx *gorm.DB, id int64) error {
	var count int64
	if err := tx.Model(&Client{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		logging.Log.Debug("schedule references a missing client", zap.Int64("client_id", id))
		return fmt.Errorf("%w: %d", ErrUnknownClient, id)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
