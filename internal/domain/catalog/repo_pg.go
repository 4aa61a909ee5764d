package catalog

import (
	"context"

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

const sectionCols = `id, section_key, section_title, sort_order, created_at`

func (r *repoPG) ListSections(ctx context.Context) ([]*Section, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+sectionCols+` FROM assessment_section ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.SectionKey, &s.SectionTitle, &s.SortOrder, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}

const factorCols = `id, assessment_section_id, risk_factor_text, risk_factor_code,
	description, is_active, sort_order, created_at`

func (r *repoPG) ListRiskFactors(ctx context.Context) ([]*RiskFactor, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+factorCols+` FROM risk_factor
		ORDER BY risk_factor_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*RiskFactor
	for rows.Next() {
		var f RiskFactor
		if err := rows.Scan(&f.ID, &f.SectionID, &f.Text, &f.Code,
			&f.Description, &f.IsActive, &f.SortOrder, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &f)
	}
	return items, rows.Err()
}
