package study

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flourish/riskassess/internal/platform/upstream"
)

var validUserTypes = map[string]bool{"PI": true, "SD": true}

type Service struct {
	repo   Repository
	source *upstream.Client
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SetSource attaches the optional study source client. When set, SyncFromSource
// mirrors the site management system's study records into the local store.
func (s *Service) SetSource(c *upstream.Client) {
	s.source = c
}

func (s *Service) GetStudy(ctx context.Context, id uuid.UUID) (*Study, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, email, userType string, f Filter) ([]*Study, error) {
	if email == "" {
		return nil, fmt.Errorf("user email is required")
	}
	if !validUserTypes[userType] {
		return nil, fmt.Errorf("invalid user type: %s", userType)
	}
	return s.repo.ListByUser(ctx, email, userType, f)
}

// DropdownValues returns the distinct sites, sponsors and protocols visible
// to the user. The built-in cascade is served when the store fails.
func (s *Service) DropdownValues(ctx context.Context, email, userType string) (DropdownValues, error) {
	if !validUserTypes[userType] {
		return DropdownValues{}, fmt.Errorf("invalid user type: %s", userType)
	}
	sites, err := s.repo.DistinctSites(ctx, email, userType)
	if err != nil {
		s.logger.Warn().Err(err).Msg("dropdown values unavailable, serving built-in cascade")
		return FallbackDropdownValues(), nil
	}
	sponsors, err := s.repo.DistinctSponsors(ctx, email, userType, "")
	if err != nil {
		return FallbackDropdownValues(), nil
	}
	protocols, err := s.repo.DistinctProtocols(ctx, email, userType, "", "")
	if err != nil {
		return FallbackDropdownValues(), nil
	}
	return DropdownValues{Sites: sites, Sponsors: sponsors, Protocols: protocols}, nil
}

// FilteredSponsors narrows sponsors to one site.
func (s *Service) FilteredSponsors(ctx context.Context, email, userType, site string) ([]string, error) {
	if !validUserTypes[userType] {
		return nil, fmt.Errorf("invalid user type: %s", userType)
	}
	sponsors, err := s.repo.DistinctSponsors(ctx, email, userType, site)
	if err != nil {
		s.logger.Warn().Err(err).Str("site", site).Msg("filtered sponsors unavailable, serving built-in cascade")
		return FallbackSponsors(site), nil
	}
	return sponsors, nil
}

// FilteredProtocols narrows protocols to one site and sponsor.
func (s *Service) FilteredProtocols(ctx context.Context, email, userType, site, sponsor string) ([]string, error) {
	if !validUserTypes[userType] {
		return nil, fmt.Errorf("invalid user type: %s", userType)
	}
	protocols, err := s.repo.DistinctProtocols(ctx, email, userType, site, sponsor)
	if err != nil {
		s.logger.Warn().Err(err).Str("site", site).Str("sponsor", sponsor).
			Msg("filtered protocols unavailable, serving built-in cascade")
		return FallbackProtocols(site, sponsor), nil
	}
	return protocols, nil
}

// SyncFromSource pulls the study roster from the configured source and
// upserts each record. A study that fails to upsert is logged and skipped.
func (s *Service) SyncFromSource(ctx context.Context) (int, error) {
	if s.source == nil || !s.source.Configured() {
		return 0, upstream.ErrNotConfigured
	}
	var studies []*Study
	if err := s.source.GetJSON(ctx, "/studies", nil, &studies); err != nil {
		return 0, fmt.Errorf("fetch studies: %w", err)
	}
	synced := 0
	for _, st := range studies {
		if st.StudyCode == "" {
			continue
		}
		if err := s.repo.Upsert(ctx, st); err != nil {
			s.logger.Error().Err(err).Str("study_code", st.StudyCode).Msg("study upsert failed")
			continue
		}
		synced++
	}
	s.logger.Info().Int("synced", synced).Int("received", len(studies)).Msg("study sync complete")
	return synced, nil
}
