package repository

import (
	"context"
	"errors"

	"skihud/internal/domain/entities"
)

// ErrRiderNotFound is returned by every backend when an id has no record.
// Shared here so callers can errors.Is against one sentinel regardless of
// which store is wired in.
var ErrRiderNotFound = errors.New("rider not found")

// RiderRepository is the durable store for rider records. Mutate is the only
// write path for existing records: implementations apply fn under per-record
// isolation and persist the result all-or-nothing, so a failed merge never
// leaves a half-updated record behind.
type RiderRepository interface {
	Create(ctx context.Context, rider *entities.Rider) error
	GetByID(ctx context.Context, id string) (*entities.Rider, error)
	Mutate(ctx context.Context, id string, fn func(*entities.Rider) error) (*entities.Rider, error)
	List(ctx context.Context) ([]*entities.Rider, error)
	DeleteAll(ctx context.Context) error
}
