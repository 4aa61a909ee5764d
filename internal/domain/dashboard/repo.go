package dashboard

import "context"

// Filter narrows risk-table queries to one site, sponsor, or protocol.
// Empty fields match everything.
type Filter struct {
	Site     string
	Sponsor  string
	Protocol string
}

// Empty reports whether no filter field is set.
func (f Filter) Empty() bool {
	return f.Site == "" && f.Sponsor == "" && f.Protocol == ""
}

// Matches reports whether a row satisfies the filter.
func (f Filter) Matches(row *RiskTableRow) bool {
	if f.Site != "" && row.Site != f.Site {
		return false
	}
	if f.Sponsor != "" && row.Sponsor != f.Sponsor {
		return false
	}
	if f.Protocol != "" && row.Protocol != f.Protocol {
		return false
	}
	return true
}

// Repository aggregates study and assessment rows for the dashboard
// screens. User-scoped queries match the caller's email against the
// study's PI or SD depending on the role.
type Repository interface {
	Stats(ctx context.Context, email, userType string) (*Stats, error)
	TopStudiesByRisk(ctx context.Context, f Filter, limit int) ([]*RiskTableRow, error)
	AssessedStudies(ctx context.Context, f Filter, limit, offset int) ([]*RiskTableRow, int, error)
	FilterValues(ctx context.Context) (*FilterValues, error)
}
