// Package redisrepo persists rider records in Redis. Each record is stored
// as JSON under its own key, with a set of ids for listing.
package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"skihud/internal/domain/entities"
	"skihud/internal/repository"
)

const (
	riderKeyPrefix = "skihud:rider:"
	riderIndexKey  = "skihud:riders"

	// mutateRetries bounds the optimistic WATCH loop. Contention on a
	// single rider id is rare (one device per rider), so a handful of
	// retries is plenty.
	mutateRetries = 5
)

type RiderRepository struct {
	rdb *redis.Client
}

func NewRiderRepository(rdb *redis.Client) *RiderRepository {
	return &RiderRepository{rdb: rdb}
}

// Ping verifies connectivity. Used by the server at startup.
func (r *RiderRepository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func riderKey(id string) string {
	return riderKeyPrefix + id
}

func (r *RiderRepository) Create(ctx context.Context, rider *entities.Rider) error {
	data, err := json.Marshal(rider)
	if err != nil {
		return fmt.Errorf("failed to serialize rider: %w", err)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, riderKey(rider.ID), data, 0)
		pipe.SAdd(ctx, riderIndexKey, rider.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write rider to redis: %w", err)
	}
	return nil
}

func (r *RiderRepository) GetByID(ctx context.Context, id string) (*entities.Rider, error) {
	data, err := r.rdb.Get(ctx, riderKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrRiderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rider from redis: %w", err)
	}

	var rider entities.Rider
	if err := json.Unmarshal(data, &rider); err != nil {
		return nil, fmt.Errorf("failed to deserialize rider: %w", err)
	}
	return &rider, nil
}

// Mutate applies fn under an optimistic WATCH transaction: if another writer
// touches the record between read and write, the whole merge re-runs against
// the fresh value.
func (r *RiderRepository) Mutate(ctx context.Context, id string, fn func(*entities.Rider) error) (*entities.Rider, error) {
	key := riderKey(id)
	var merged *entities.Rider

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return repository.ErrRiderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read rider from redis: %w", err)
		}

		var rider entities.Rider
		if err := json.Unmarshal(data, &rider); err != nil {
			return fmt.Errorf("failed to deserialize rider: %w", err)
		}

		if err := fn(&rider); err != nil {
			return err
		}

		out, err := json.Marshal(&rider)
		if err != nil {
			return fmt.Errorf("failed to serialize rider: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}
		merged = &rider
		return nil
	}

	for i := 0; i < mutateRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return merged, nil
	}
	return nil, fmt.Errorf("rider %s update contended beyond %d retries", id, mutateRetries)
}

func (r *RiderRepository) List(ctx context.Context) ([]*entities.Rider, error) {
	ids, err := r.rdb.SMembers(ctx, riderIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rider ids: %w", err)
	}

	riders := make([]*entities.Rider, 0, len(ids))
	for _, id := range ids {
		rider, err := r.GetByID(ctx, id)
		if errors.Is(err, repository.ErrRiderNotFound) {
			// Index can briefly lead the data during a reset; skip.
			continue
		}
		if err != nil {
			return nil, err
		}
		riders = append(riders, rider)
	}
	return riders, nil
}

func (r *RiderRepository) DeleteAll(ctx context.Context) error {
	ids, err := r.rdb.SMembers(ctx, riderIndexKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list rider ids: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, riderKey(id))
	}
	keys = append(keys, riderIndexKey)

	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear riders from redis: %w", err)
	}
	return nil
}
