package catalog

import (
	"context"
)

// Repository loads the questionnaire definition from the store.
type Repository interface {
	ListSections(ctx context.Context) ([]*Section, error)
	ListRiskFactors(ctx context.Context) ([]*RiskFactor, error)
}
