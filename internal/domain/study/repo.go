package study

import (
	"context"

	"github.com/google/uuid"
)

// Repository gives access to study records. User-scoped queries take the
// caller's email and role ("PI" or "SD") and match the study's principal
// investigator or site director email case-insensitively.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Study, error)
	ListByUser(ctx context.Context, email, userType string, f Filter) ([]*Study, error)
	DistinctSites(ctx context.Context, email, userType string) ([]string, error)
	DistinctSponsors(ctx context.Context, email, userType, site string) ([]string, error)
	DistinctProtocols(ctx context.Context, email, userType, site, sponsor string) ([]string, error)
	Upsert(ctx context.Context, s *Study) error
}
