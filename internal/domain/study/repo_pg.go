package study

import (
	"context"
	"fmt"

	"github.com/google/uuid"
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

const studyCols = `id, site_id, site, sponsor, sponsor_code, study_code, protocol,
	study_type, study_type_text, status, description, phase, active,
	principal_investigator, principal_investigator_email,
	site_director, site_director_email,
	monitoring_schedule, assessment_status, created_at, updated_at`

func (r *repoPG) scanStudy(row pgx.Row) (*Study, error) {
	var s Study
	err := row.Scan(&s.ID, &s.SiteID, &s.Site, &s.Sponsor, &s.SponsorCode, &s.StudyCode, &s.Protocol,
		&s.StudyType, &s.StudyTypeText, &s.Status, &s.Description, &s.Phase, &s.Active,
		&s.PrincipalInvestigator, &s.PrincipalInvestigatorEmail,
		&s.SiteDirector, &s.SiteDirectorEmail,
		&s.MonitoringSchedule, &s.AssessmentStatus, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

// userClause returns the role-scoped WHERE fragment for the given positional
// parameter index.
func userClause(userType string, idx int) string {
	if userType == "SD" {
		return fmt.Sprintf(`LOWER(site_director_email) = LOWER($%d)`, idx)
	}
	return fmt.Sprintf(`LOWER(principal_investigator_email) = LOWER($%d)`, idx)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Study, error) {
	return r.scanStudy(r.conn(ctx).QueryRow(ctx, `SELECT `+studyCols+` FROM study WHERE id = $1`, id))
}

func (r *repoPG) ListByUser(ctx context.Context, email, userType string, f Filter) ([]*Study, error) {
	f = f.Normalize()
	query := `SELECT ` + studyCols + ` FROM study WHERE ` + userClause(userType, 1)
	args := []interface{}{email}
	idx := 2
	if f.Site != "" {
		query += fmt.Sprintf(` AND site = $%d`, idx)
		args = append(args, f.Site)
		idx++
	}
	if f.Sponsor != "" {
		query += fmt.Sprintf(` AND sponsor = $%d`, idx)
		args = append(args, f.Sponsor)
		idx++
	}
	if f.Protocol != "" {
		query += fmt.Sprintf(` AND protocol = $%d`, idx)
		args = append(args, f.Protocol)
		idx++
	}
	query += ` ORDER BY site, sponsor, protocol`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Study
	for rows.Next() {
		s, err := r.scanStudy(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repoPG) DistinctSites(ctx context.Context, email, userType string) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT site FROM study WHERE `+userClause(userType, 1)+` ORDER BY site`, email)
}

func (r *repoPG) DistinctSponsors(ctx context.Context, email, userType, site string) ([]string, error) {
	if site == "" || site == "All" {
		return r.distinct(ctx, `SELECT DISTINCT sponsor FROM study WHERE `+userClause(userType, 1)+` ORDER BY sponsor`, email)
	}
	return r.distinct(ctx, `SELECT DISTINCT sponsor FROM study WHERE `+userClause(userType, 1)+` AND site = $2 ORDER BY sponsor`, email, site)
}

func (r *repoPG) DistinctProtocols(ctx context.Context, email, userType, site, sponsor string) ([]string, error) {
	query := `SELECT DISTINCT protocol FROM study WHERE ` + userClause(userType, 1)
	args := []interface{}{email}
	idx := 2
	if site != "" && site != "All" {
		query += fmt.Sprintf(` AND site = $%d`, idx)
		args = append(args, site)
		idx++
	}
	if sponsor != "" && sponsor != "All" {
		query += fmt.Sprintf(` AND sponsor = $%d`, idx)
		args = append(args, sponsor)
		idx++
	}
	query += ` ORDER BY protocol`
	return r.distinct(ctx, query, args...)
}

func (r *repoPG) distinct(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Upsert inserts or refreshes a study keyed by its external study code.
// Used by the source sync to mirror the site management system.
func (r *repoPG) Upsert(ctx context.Context, s *Study) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO study (id, site_id, site, sponsor, sponsor_code, study_code, protocol,
			study_type, study_type_text, status, description, phase, active,
			principal_investigator, principal_investigator_email,
			site_director, site_director_email,
			monitoring_schedule, assessment_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (study_code) DO UPDATE SET
			site_id=EXCLUDED.site_id, site=EXCLUDED.site, sponsor=EXCLUDED.sponsor,
			sponsor_code=EXCLUDED.sponsor_code, protocol=EXCLUDED.protocol,
			study_type=EXCLUDED.study_type, study_type_text=EXCLUDED.study_type_text,
			status=EXCLUDED.status, description=EXCLUDED.description, phase=EXCLUDED.phase,
			active=EXCLUDED.active,
			principal_investigator=EXCLUDED.principal_investigator,
			principal_investigator_email=EXCLUDED.principal_investigator_email,
			site_director=EXCLUDED.site_director,
			site_director_email=EXCLUDED.site_director_email,
			monitoring_schedule=EXCLUDED.monitoring_schedule,
			updated_at=NOW()`,
		s.ID, s.SiteID, s.Site, s.Sponsor, s.SponsorCode, s.StudyCode, s.Protocol,
		s.StudyType, s.StudyTypeText, s.Status, s.Description, s.Phase, s.Active,
		s.PrincipalInvestigator, s.PrincipalInvestigatorEmail,
		s.SiteDirector, s.SiteDirectorEmail,
		s.MonitoringSchedule, s.AssessmentStatus)
	return err
}
