package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flourish/riskassess/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// latestAssessment picks the newest assessment per study; the dashboard
// never shows superseded snapshots.
const latestAssessment = `
	SELECT DISTINCT ON (study_id) id, study_id, status, overall_risk_score, overall_risk_level
	FROM assessment
	ORDER BY study_id, created_at DESC`

func userClause(userType string, idx int) string {
	if userType == "SD" {
		return fmt.Sprintf(`LOWER(s.site_director_email) = LOWER($%d)`, idx)
	}
	return fmt.Sprintf(`LOWER(s.principal_investigator_email) = LOWER($%d)`, idx)
}

// filterClause renders the WHERE clause for a risk-table filter, appending
// its values to args so the caller keeps positional numbering intact.
func filterClause(f Filter, args *[]interface{}) string {
	var conds []string
	add := func(col, v string) {
		if v == "" {
			return
		}
		*args = append(*args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(*args)))
	}
	add("s.site", f.Site)
	add("s.sponsor", f.Sponsor)
	add("s.protocol", f.Protocol)
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (r *repoPG) Stats(ctx context.Context, email, userType string) (*Stats, error) {
	st := &Stats{UserType: userType, UserEmail: email}
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT s.site),
			COUNT(DISTINCT s.id) FILTER (WHERE s.active),
			COUNT(DISTINCT a.study_id),
			COUNT(*) FILTER (WHERE a.status = 'Approved'),
			COUNT(*) FILTER (WHERE a.status = 'Rejected'),
			COUNT(*) FILTER (WHERE a.status = 'Pending Review')
		FROM study s
		LEFT JOIN (`+latestAssessment+`) a ON a.study_id = s.id
		WHERE `+userClause(userType, 1), email).
		Scan(&st.TotalActiveSites, &st.TotalActiveStudies, &st.TotalAssessedStudies,
			&st.TotalApprovedAssessments, &st.TotalRejectedAssessments, &st.TotalReviewsPending)
	if err != nil {
		return nil, err
	}
	return st, nil
}

const riskRowCols = `s.site, s.sponsor, s.protocol, a.id::text,
	s.principal_investigator, COALESCE(s.site_director, ''),
	COALESCE(a.overall_risk_score, 0), COALESCE(a.overall_risk_level, '-')`

func (r *repoPG) scanRiskRow(row pgx.Row) (*RiskTableRow, error) {
	var rr RiskTableRow
	err := row.Scan(&rr.Site, &rr.Sponsor, &rr.Protocol, &rr.AssessmentID,
		&rr.PrincipalInvestigator, &rr.SiteDirector, &rr.Risks, &rr.RiskLevel)
	return &rr, err
}

func (r *repoPG) TopStudiesByRisk(ctx context.Context, f Filter, limit int) ([]*RiskTableRow, error) {
	var args []interface{}
	where := filterClause(f, &args)
	args = append(args, limit)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+riskRowCols+`
		FROM study s
		JOIN (`+latestAssessment+`) a ON a.study_id = s.id`+where+fmt.Sprintf(`
		ORDER BY a.overall_risk_score DESC NULLS LAST
		LIMIT $%d`, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectRiskRows(rows)
}

func (r *repoPG) AssessedStudies(ctx context.Context, f Filter, limit, offset int) ([]*RiskTableRow, int, error) {
	var args []interface{}
	where := filterClause(f, &args)

	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM study s JOIN (`+latestAssessment+`) a ON a.study_id = s.id`+where, args...).
		Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+riskRowCols+`
		FROM study s
		JOIN (`+latestAssessment+`) a ON a.study_id = s.id`+where+fmt.Sprintf(`
		ORDER BY a.overall_risk_score DESC NULLS LAST, s.protocol
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collectRiskRows(rows)
	return items, total, err
}

func (r *repoPG) collectRiskRows(rows pgx.Rows) ([]*RiskTableRow, error) {
	var items []*RiskTableRow
	for rows.Next() {
		rr, err := r.scanRiskRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rr)
	}
	return items, rows.Err()
}

func (r *repoPG) FilterValues(ctx context.Context) (*FilterValues, error) {
	fv := &FilterValues{}
	queries := []struct {
		sql string
		dst *[]string
	}{
		{`SELECT DISTINCT s.site FROM study s JOIN assessment a ON a.study_id = s.id ORDER BY s.site`, &fv.Sites},
		{`SELECT DISTINCT s.sponsor FROM study s JOIN assessment a ON a.study_id = s.id ORDER BY s.sponsor`, &fv.Sponsors},
		{`SELECT DISTINCT s.protocol FROM study s JOIN assessment a ON a.study_id = s.id ORDER BY s.protocol`, &fv.Protocols},
	}
	for _, q := range queries {
		rows, err := r.conn(ctx).Query(ctx, q.sql)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return nil, err
			}
			*q.dst = append(*q.dst, v)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return fv, nil
}
