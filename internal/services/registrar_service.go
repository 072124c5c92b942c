package services

import (
	"context"
	"strings"

	"skihud/internal/domain/entities"
	"skihud/internal/repository"
	"skihud/pkg/utils"
)

// DefaultRiderName is used when a client registers without a display name.
const DefaultRiderName = "anon"

// RegistrarService issues identities. Each registration creates one rider
// record with a fresh random id.
type RegistrarService struct {
	riderRepo repository.RiderRepository
}

func NewRegistrarService(riderRepo repository.RiderRepository) *RegistrarService {
	return &RegistrarService{
		riderRepo: riderRepo,
	}
}

// Register creates a new rider record. An empty or whitespace-only name
// falls back to the sentinel name.
func (s *RegistrarService) Register(ctx context.Context, name string) (*entities.Rider, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultRiderName
	}

	rider := entities.NewRider(utils.GenerateID(), name)
	if err := s.riderRepo.Create(ctx, rider); err != nil {
		return nil, err
	}
	return rider, nil
}
