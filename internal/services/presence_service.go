package services

import (
	"context"
	"sort"
	"time"

	"skihud/internal/domain/entities"
	"skihud/internal/repository"
)

// LeaderboardEntry is one row of the lifetime records board.
type LeaderboardEntry struct {
	UserID    string   `json:"user_id"`
	Name      string   `json:"name"`
	MaxSpeed  *float64 `json:"max_speed"`
	MaxGForce *float64 `json:"max_g_force"`
}

// PresenceService answers the read-only queries: who is live right now, who
// exists at all, and who holds the records. It never mutates state.
type PresenceService struct {
	riderRepo    repository.RiderRepository
	window       time.Duration
	defaultLimit int
}

func NewPresenceService(riderRepo repository.RiderRepository, window time.Duration, defaultLimit int) *PresenceService {
	return &PresenceService{
		riderRepo:    riderRepo,
		window:       window,
		defaultLimit: defaultLimit,
	}
}

// ActiveRiders returns riders whose active flag is set AND whose last update
// falls inside the liveness window. Both conditions are required: a stale
// timestamp overrides a true flag, and a false flag overrides a fresh
// timestamp.
func (s *PresenceService) ActiveRiders(ctx context.Context) ([]*entities.Rider, error) {
	riders, err := s.riderRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-s.window)
	active := make([]*entities.Rider, 0, len(riders))
	for _, rider := range riders {
		if rider.Active && rider.LastUpdate.After(cutoff) {
			active = append(active, rider)
		}
	}
	return active, nil
}

// AllRiders returns every record, live or not.
func (s *PresenceService) AllRiders(ctx context.Context) ([]*entities.Rider, error) {
	riders, err := s.riderRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if riders == nil {
		riders = []*entities.Rider{}
	}
	return riders, nil
}

// Leaderboard returns up to limit entries ordered by max speed descending.
// There is deliberately no liveness filter — max speed is a lifetime record,
// so a rider who went home at noon still holds their morning run. Riders who
// never reported a speed sort after every rider who has; ties break by rider
// id so the ordering is deterministic.
func (s *PresenceService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	riders, err := s.riderRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(riders, func(i, j int) bool {
		a, b := riders[i].MaxSpeed, riders[j].MaxSpeed
		switch {
		case a == nil && b == nil:
			return riders[i].ID < riders[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		default:
			return riders[i].ID < riders[j].ID
		}
	})

	if len(riders) > limit {
		riders = riders[:limit]
	}

	entries := make([]LeaderboardEntry, 0, len(riders))
	for _, rider := range riders {
		entries = append(entries, LeaderboardEntry{
			UserID:    rider.ID,
			Name:      rider.Name,
			MaxSpeed:  rider.MaxSpeed,
			MaxGForce: rider.MaxGForce,
		})
	}
	return entries, nil
}
