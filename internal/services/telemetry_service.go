package services

import (
	"context"
	"errors"
	"time"

	"skihud/internal/domain/entities"
	"skihud/internal/repository"
)

// ErrMissingUserID marks a caller-input error: an update that never named
// the record it targets. Distinct from repository.ErrRiderNotFound, which
// means the id was supplied but matches nothing.
var ErrMissingUserID = errors.New("user_id required")

// TrailMaxLen caps the stored trail name. Longer inputs are clamped at write
// time, never rejected.
const TrailMaxLen = 16

// UpdateFields is one sparse telemetry update. A nil field means "not
// reported this time" and leaves the stored value untouched; the merge only
// touches fields that are set.
type UpdateFields struct {
	Active *bool
	Lat    *float64
	Lon    *float64
	Alt    *float64
	Speed  *float64
	GForce *float64
	Trail  *string
}

// TelemetryService merges sparse updates into rider records and maintains
// the running maxima.
type TelemetryService struct {
	riderRepo repository.RiderRepository
}

func NewTelemetryService(riderRepo repository.RiderRepository) *TelemetryService {
	return &TelemetryService{
		riderRepo: riderRepo,
	}
}

// ApplyUpdate merges fields into the record for id and returns the full
// post-merge record. The merge is atomic: it either applies completely or
// leaves the record exactly as it was. Even an update carrying no recognized
// fields refreshes the liveness timestamp.
func (s *TelemetryService) ApplyUpdate(ctx context.Context, id string, fields UpdateFields) (*entities.Rider, error) {
	if id == "" {
		return nil, ErrMissingUserID
	}

	return s.riderRepo.Mutate(ctx, id, func(rider *entities.Rider) error {
		merge(rider, fields)
		return nil
	})
}

func merge(rider *entities.Rider, f UpdateFields) {
	if f.Active != nil {
		rider.Active = *f.Active
	}
	// Lat and lon merge independently; clients that send only one produce a
	// half-updated position. Observed behavior of the device fleet, kept
	// as-is rather than inventing a pairing rule.
	if f.Lat != nil {
		rider.Lat = f.Lat
	}
	if f.Lon != nil {
		rider.Lon = f.Lon
	}
	if f.Alt != nil {
		rider.Alt = f.Alt
	}
	if f.Trail != nil {
		trail := truncateTrail(*f.Trail)
		rider.Trail = &trail
	}
	if f.Speed != nil {
		rider.Speed = f.Speed
		rider.MaxSpeed = foldMax(rider.MaxSpeed, *f.Speed)
	}
	if f.GForce != nil {
		rider.GForce = f.GForce
		rider.MaxGForce = foldMax(rider.MaxGForce, *f.GForce)
	}

	// Liveness refresh is unconditional, but the timestamp never moves
	// backward even if the wall clock does.
	if now := time.Now(); now.After(rider.LastUpdate) {
		rider.LastUpdate = now
	}
}

// foldMax returns the running maximum, seeded by the first observation.
func foldMax(current *float64, value float64) *float64 {
	if current == nil || value > *current {
		return &value
	}
	return current
}

// truncateTrail clamps to the first TrailMaxLen characters, counting runes
// so a multi-byte name is never cut mid-character.
func truncateTrail(trail string) string {
	runes := []rune(trail)
	if len(runes) > TrailMaxLen {
		return string(runes[:TrailMaxLen])
	}
	return trail
}
