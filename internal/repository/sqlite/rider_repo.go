// Package sqlite persists rider records in a SQLite file through GORM.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"skihud/internal/domain/entities"
	"skihud/internal/repository"
)

// riderRow is the storage schema. Telemetry columns are nullable pointers so
// a never-reported field round-trips as NULL, not as zero.
type riderRow struct {
	ID         string    `gorm:"column:user_id;primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	Active     bool      `gorm:"column:active;not null"`
	LastUpdate time.Time `gorm:"column:last_update;not null;index"`

	Lat   *float64 `gorm:"column:lat"`
	Lon   *float64 `gorm:"column:lon"`
	Alt   *float64 `gorm:"column:alt"`
	Trail *string  `gorm:"column:trail;size:16"`

	Speed     *float64 `gorm:"column:speed"`
	GForce    *float64 `gorm:"column:g_force"`
	MaxSpeed  *float64 `gorm:"column:max_speed;index"`
	MaxGForce *float64 `gorm:"column:max_g_force"`
}

func (riderRow) TableName() string {
	return "riders"
}

type RiderRepository struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path and migrates
// the riders table.
func Open(path string) (*RiderRepository, error) {
	db, err := gorm.Open(gormsqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}
	if err := db.AutoMigrate(&riderRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate riders table: %w", err)
	}
	return &RiderRepository{db: db}, nil
}

// NewRiderRepository wraps an existing GORM connection. The riders table must
// already exist.
func NewRiderRepository(db *gorm.DB) *RiderRepository {
	return &RiderRepository{db: db}
}

func (r *RiderRepository) Create(ctx context.Context, rider *entities.Rider) error {
	if err := r.db.WithContext(ctx).Create(toRow(rider)).Error; err != nil {
		return fmt.Errorf("failed to insert rider: %w", err)
	}
	return nil
}

func (r *RiderRepository) GetByID(ctx context.Context, id string) (*entities.Rider, error) {
	var row riderRow
	err := r.db.WithContext(ctx).First(&row, "user_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrRiderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rider: %w", err)
	}
	return toEntity(&row), nil
}

// Mutate runs the read-modify-write inside one transaction. SQLite
// serializes writers, so the re-read inside the transaction observes the
// latest committed record.
func (r *RiderRepository) Mutate(ctx context.Context, id string, fn func(*entities.Rider) error) (*entities.Rider, error) {
	var merged *entities.Rider
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row riderRow
		if err := tx.First(&row, "user_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrRiderNotFound
			}
			return fmt.Errorf("failed to load rider: %w", err)
		}

		rider := toEntity(&row)
		if err := fn(rider); err != nil {
			return err
		}

		if err := tx.Save(toRow(rider)).Error; err != nil {
			return fmt.Errorf("failed to save rider: %w", err)
		}
		merged = rider
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (r *RiderRepository) List(ctx context.Context) ([]*entities.Rider, error) {
	var rows []riderRow
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list riders: %w", err)
	}
	riders := make([]*entities.Rider, 0, len(rows))
	for i := range rows {
		riders = append(riders, toEntity(&rows[i]))
	}
	return riders, nil
}

func (r *RiderRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&riderRow{}).Error; err != nil {
		return fmt.Errorf("failed to clear riders table: %w", err)
	}
	return nil
}

func toRow(rider *entities.Rider) *riderRow {
	return &riderRow{
		ID:         rider.ID,
		Name:       rider.Name,
		Active:     rider.Active,
		LastUpdate: rider.LastUpdate,
		Lat:        rider.Lat,
		Lon:        rider.Lon,
		Alt:        rider.Alt,
		Trail:      rider.Trail,
		Speed:      rider.Speed,
		GForce:     rider.GForce,
		MaxSpeed:   rider.MaxSpeed,
		MaxGForce:  rider.MaxGForce,
	}
}

func toEntity(row *riderRow) *entities.Rider {
	return &entities.Rider{
		ID:         row.ID,
		Name:       row.Name,
		Active:     row.Active,
		LastUpdate: row.LastUpdate,
		Lat:        row.Lat,
		Lon:        row.Lon,
		Alt:        row.Alt,
		Trail:      row.Trail,
		Speed:      row.Speed,
		GForce:     row.GForce,
		MaxSpeed:   row.MaxSpeed,
		MaxGForce:  row.MaxGForce,
	}
}
