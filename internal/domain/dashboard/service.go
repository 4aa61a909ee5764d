package dashboard

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/flourish/riskassess/pkg/pagination"
)

// topStudiesChartSize bounds the bar chart; the screen renders four bars.
const topStudiesChartSize = 4

// highestRiskListSize bounds the highest-risk table.
const highestRiskListSize = 10

var validUserTypes = map[string]bool{"PI": true, "SD": true}

// Service backs the dashboard screens. Every query degrades to the demo
// fallback when the database fails, so the dashboard always renders.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Stats(ctx context.Context, email, userType string) (*Stats, error) {
	if email == "" {
		return nil, fmt.Errorf("user email is required")
	}
	if !validUserTypes[userType] {
		return nil, fmt.Errorf("invalid user type: %s", userType)
	}
	st, err := s.repo.Stats(ctx, email, userType)
	if err != nil {
		s.logger.Warn().Err(err).Msg("dashboard stats query failed, serving fallback")
		return FallbackStats(userType, email), nil
	}
	return st, nil
}

func (s *Service) TopStudiesRiskChart(ctx context.Context) *BarChart {
	rows, err := s.repo.TopStudiesByRisk(ctx, Filter{}, topStudiesChartSize)
	if err != nil || len(rows) == 0 {
		if err != nil {
			s.logger.Warn().Err(err).Msg("top studies query failed, serving fallback")
		}
		return FallbackBarChart()
	}
	chart := &BarChart{TotalStudies: len(rows)}
	for i, row := range rows {
		chart.BarChartData = append(chart.BarChartData, BarDatum{
			Name:  row.Sponsor + " " + row.Protocol,
			Value: row.Risks,
			Color: barColors[i%len(barColors)],
		})
	}
	return chart
}

func (s *Service) HighestRiskStudies(ctx context.Context, f Filter) []*RiskTableRow {
	rows, err := s.repo.TopStudiesByRisk(ctx, f, highestRiskListSize)
	if err != nil || (len(rows) == 0 && f.Empty()) {
		if err != nil {
			s.logger.Warn().Err(err).Msg("highest risk query failed, serving fallback")
		}
		return FallbackRiskTable()
	}
	if rows == nil {
		rows = []*RiskTableRow{}
	}
	return rows
}

func (s *Service) AllAssessedStudies(ctx context.Context, f Filter, page, pageSize int) *RiskTablePage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	rows, total, err := s.repo.AssessedStudies(ctx, f, pageSize, (page-1)*pageSize)
	if err != nil {
		s.logger.Warn().Err(err).Msg("assessed studies query failed, serving fallback")
		return FallbackRiskTablePage(pageSize)
	}
	if rows == nil {
		rows = []*RiskTableRow{}
	}
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	return &RiskTablePage{
		RiskTableData: rows,
		TotalStudies:  total,
		TotalPages:    totalPages,
		CurrentPage:   page,
		PageSize:      pageSize,
	}
}

func (s *Service) FilterValues(ctx context.Context) *FilterValues {
	fv, err := s.repo.FilterValues(ctx)
	if err != nil || (len(fv.Sites) == 0 && len(fv.Sponsors) == 0) {
		if err != nil {
			s.logger.Warn().Err(err).Msg("filter values query failed, serving fallback")
		}
		return FallbackFilterValues()
	}
	return fv
}
