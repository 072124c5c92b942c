package memory

import (
	"context"
	"sync"

	"skihud/internal/domain/entities"
	"skihud/internal/repository"
)

// RiderRepository is the in-memory store: a mutex-guarded map keyed by rider
// id. The write lock spans the whole of Mutate, which gives per-record
// atomicity for free — readers never see a partially merged record.
type RiderRepository struct {
	mu     sync.RWMutex
	riders map[string]*entities.Rider
}

func NewRiderRepository() *RiderRepository {
	return &RiderRepository{
		riders: make(map[string]*entities.Rider),
	}
}

func (r *RiderRepository) Create(ctx context.Context, rider *entities.Rider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.riders[rider.ID] = rider.Clone()
	return nil
}

func (r *RiderRepository) GetByID(ctx context.Context, id string) (*entities.Rider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rider, exists := r.riders[id]
	if !exists {
		return nil, repository.ErrRiderNotFound
	}
	return rider.Clone(), nil
}

// Mutate applies fn to a copy of the stored record and swaps the copy in only
// if fn succeeds. An error from fn leaves the stored record untouched.
func (r *RiderRepository) Mutate(ctx context.Context, id string, fn func(*entities.Rider) error) (*entities.Rider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rider, exists := r.riders[id]
	if !exists {
		return nil, repository.ErrRiderNotFound
	}

	merged := rider.Clone()
	if err := fn(merged); err != nil {
		return nil, err
	}

	r.riders[id] = merged
	return merged.Clone(), nil
}

func (r *RiderRepository) List(ctx context.Context) ([]*entities.Rider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	riders := make([]*entities.Rider, 0, len(r.riders))
	for _, rider := range r.riders {
		riders = append(riders, rider.Clone())
	}
	return riders, nil
}

func (r *RiderRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.riders = make(map[string]*entities.Rider)
	return nil
}
