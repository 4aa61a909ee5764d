package catalog

import (
	"context"

	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Metadata returns the questionnaire definition. When the store is
// unavailable or empty the built-in catalog is served instead so clients
// can always render the form.
func (s *Service) Metadata(ctx context.Context) *Metadata {
	sections, err := s.repo.ListSections(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("catalog sections unavailable, serving built-in catalog")
		return Fallback()
	}
	if len(sections) == 0 {
		return Fallback()
	}
	factors, err := s.repo.ListRiskFactors(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("risk factors unavailable, serving built-in catalog")
		return Fallback()
	}
	return &Metadata{Sections: sections, RiskFactors: factors}
}
