package services

import (
	"context"

	"skihud/internal/repository"
)

// AdminService holds the destructive development operations. Exposure is
// gated at the API layer by a capability flag.
type AdminService struct {
	riderRepo repository.RiderRepository
}

func NewAdminService(riderRepo repository.RiderRepository) *AdminService {
	return &AdminService{
		riderRepo: riderRepo,
	}
}

// Reset empties the entire store.
func (s *AdminService) Reset(ctx context.Context) error {
	return s.riderRepo.DeleteAll(ctx)
}
