package assessment

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

// =========== Assessment Repository ===========

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

const assessmentCols = `id, study_id, conducted_by_name, conducted_by_email,
	assessment_date, next_review_date, monitoring_schedule, status,
	overall_risk_score, overall_risk_level, comments,
	updated_by_name, updated_by_email, reviewed_by_name, reviewed_by_email,
	approved_by_name, approved_by_email, rejected_by_name, rejected_by_email,
	created_at, updated_at`

func (r *repoPG) scanAssessment(row pgx.Row) (*Assessment, error) {
	var a Assessment
	err := row.Scan(&a.ID, &a.StudyID, &a.ConductedByName, &a.ConductedByEmail,
		&a.AssessmentDate, &a.NextReviewDate, &a.MonitoringSchedule, &a.Status,
		&a.OverallRiskScore, &a.OverallRiskLevel, &a.Comments,
		&a.UpdatedByName, &a.UpdatedByEmail, &a.ReviewedByName, &a.ReviewedByEmail,
		&a.ApprovedByName, &a.ApprovedByEmail, &a.RejectedByName, &a.RejectedByEmail,
		&a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return r.scanAssessment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+assessmentCols+` FROM assessment WHERE id = $1`, id))
}

func (r *repoPG) GetLatestByStudy(ctx context.Context, studyID uuid.UUID) (*Assessment, error) {
	return r.scanAssessment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+assessmentCols+` FROM assessment WHERE study_id = $1 ORDER BY created_at DESC LIMIT 1`, studyID))
}

func (r *repoPG) GetComplete(ctx context.Context, assessmentID uuid.UUID) (*Complete, error) {
	a, err := r.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	c := &Complete{Assessment: a}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, assessment_id, risk_factor_id, severity, likelihood, risk_score, risk_level,
			mitigation_actions, custom_notes, created_at, updated_at
		FROM assessment_risk_score WHERE assessment_id = $1 ORDER BY created_at`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rs RiskScore
		if err := rows.Scan(&rs.ID, &rs.AssessmentID, &rs.RiskFactorID, &rs.Severity, &rs.Likelihood,
			&rs.RiskScore, &rs.RiskLevel, &rs.MitigationActions, &rs.CustomNotes,
			&rs.CreatedAt, &rs.UpdatedAt); err != nil {
			return nil, err
		}
		c.RiskScores = append(c.RiskScores, &rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	planRows, err := r.conn(ctx).Query(ctx, `
		SELECT id, assessment_id, risk_item, responsible_person, mitigation_strategy,
			target_date, status, priority_level, created_at, updated_at
		FROM risk_mitigation_plan WHERE assessment_id = $1 ORDER BY created_at`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer planRows.Close()
	for planRows.Next() {
		var p MitigationPlan
		if err := planRows.Scan(&p.ID, &p.AssessmentID, &p.RiskItem, &p.ResponsiblePerson,
			&p.MitigationStrategy, &p.TargetDate, &p.Status, &p.PriorityLevel,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		c.MitigationPlans = append(c.MitigationPlans, &p)
	}
	if err := planRows.Err(); err != nil {
		return nil, err
	}

	var d Dashboard
	err = r.conn(ctx).QueryRow(ctx, `
		SELECT id, assessment_id, total_risks, high_risk_count, medium_risk_count, low_risk_count,
			total_score, overall_risk_level, risk_level_criteria, created_at, updated_at
		FROM assessment_dashboard WHERE assessment_id = $1`, assessmentID).
		Scan(&d.ID, &d.AssessmentID, &d.TotalRisks, &d.HighRiskCount, &d.MediumRiskCount,
			&d.LowRiskCount, &d.TotalScore, &d.OverallRiskLevel, &d.RiskLevelCriteria,
			&d.CreatedAt, &d.UpdatedAt)
	if err == nil {
		c.Dashboard = &d
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	scRows, err := r.conn(ctx).Query(ctx, `
		SELECT id, assessment_id, comment_type, comment_text, created_by_name, created_by_email, created_at
		FROM assessment_summary_comment WHERE assessment_id = $1 ORDER BY created_at`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer scRows.Close()
	for scRows.Next() {
		var sc SummaryComment
		if err := scRows.Scan(&sc.ID, &sc.AssessmentID, &sc.CommentType, &sc.CommentText,
			&sc.CreatedByName, &sc.CreatedByEmail, &sc.CreatedAt); err != nil {
			return nil, err
		}
		c.SummaryComments = append(c.SummaryComments, &sc)
	}
	if err := scRows.Err(); err != nil {
		return nil, err
	}

	secRows, err := r.conn(ctx).Query(ctx, `
		SELECT id, assessment_id, section_key, section_title, comment_text, created_at, updated_at
		FROM assessment_section_comment WHERE assessment_id = $1 ORDER BY created_at`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer secRows.Close()
	for secRows.Next() {
		var sc SectionComment
		if err := secRows.Scan(&sc.ID, &sc.AssessmentID, &sc.SectionKey, &sc.SectionTitle,
			&sc.CommentText, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		c.SectionComments = append(c.SectionComments, &sc)
	}
	return c, secRows.Err()
}

// Save writes the full snapshot. The assessment row is upserted and every
// child table is replaced wholesale; run inside a transaction.
func (r *repoPG) Save(ctx context.Context, c *Complete) error {
	a := c.Assessment
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO assessment (id, study_id, conducted_by_name, conducted_by_email,
			assessment_date, next_review_date, monitoring_schedule, status,
			overall_risk_score, overall_risk_level, comments,
			updated_by_name, updated_by_email, reviewed_by_name, reviewed_by_email,
			approved_by_name, approved_by_email, rejected_by_name, rejected_by_email)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (id) DO UPDATE SET
			assessment_date=EXCLUDED.assessment_date,
			next_review_date=EXCLUDED.next_review_date,
			monitoring_schedule=EXCLUDED.monitoring_schedule,
			status=EXCLUDED.status,
			overall_risk_score=EXCLUDED.overall_risk_score,
			overall_risk_level=EXCLUDED.overall_risk_level,
			comments=EXCLUDED.comments,
			updated_by_name=EXCLUDED.updated_by_name,
			updated_by_email=EXCLUDED.updated_by_email,
			reviewed_by_name=EXCLUDED.reviewed_by_name,
			reviewed_by_email=EXCLUDED.reviewed_by_email,
			approved_by_name=EXCLUDED.approved_by_name,
			approved_by_email=EXCLUDED.approved_by_email,
			rejected_by_name=EXCLUDED.rejected_by_name,
			rejected_by_email=EXCLUDED.rejected_by_email,
			updated_at=NOW()`,
		a.ID, a.StudyID, a.ConductedByName, a.ConductedByEmail,
		a.AssessmentDate, a.NextReviewDate, a.MonitoringSchedule, a.Status,
		a.OverallRiskScore, a.OverallRiskLevel, a.Comments,
		a.UpdatedByName, a.UpdatedByEmail, a.ReviewedByName, a.ReviewedByEmail,
		a.ApprovedByName, a.ApprovedByEmail, a.RejectedByName, a.RejectedByEmail)
	if err != nil {
		return fmt.Errorf("upsert assessment: %w", err)
	}

	for _, table := range []string{
		"assessment_risk_score", "risk_mitigation_plan", "assessment_dashboard",
		"assessment_summary_comment", "assessment_section_comment",
	} {
		if _, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM `+table+` WHERE assessment_id = $1`, a.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, rs := range c.RiskScores {
		rs.ID = uuid.New()
		rs.AssessmentID = a.ID
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO assessment_risk_score (id, assessment_id, risk_factor_id,
				severity, likelihood, risk_score, risk_level, mitigation_actions, custom_notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			rs.ID, rs.AssessmentID, rs.RiskFactorID, rs.Severity, rs.Likelihood,
			rs.RiskScore, rs.RiskLevel, rs.MitigationActions, rs.CustomNotes); err != nil {
			return fmt.Errorf("insert risk score: %w", err)
		}
	}

	for _, p := range c.MitigationPlans {
		p.ID = uuid.New()
		p.AssessmentID = a.ID
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO risk_mitigation_plan (id, assessment_id, risk_item, responsible_person,
				mitigation_strategy, target_date, status, priority_level)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			p.ID, p.AssessmentID, p.RiskItem, p.ResponsiblePerson,
			p.MitigationStrategy, p.TargetDate, p.Status, p.PriorityLevel); err != nil {
			return fmt.Errorf("insert mitigation plan: %w", err)
		}
	}

	if d := c.Dashboard; d != nil {
		d.ID = uuid.New()
		d.AssessmentID = a.ID
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO assessment_dashboard (id, assessment_id, total_risks, high_risk_count,
				medium_risk_count, low_risk_count, total_score, overall_risk_level, risk_level_criteria)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			d.ID, d.AssessmentID, d.TotalRisks, d.HighRiskCount, d.MediumRiskCount,
			d.LowRiskCount, d.TotalScore, d.OverallRiskLevel, d.RiskLevelCriteria); err != nil {
			return fmt.Errorf("insert dashboard: %w", err)
		}
	}

	for _, sc := range c.SummaryComments {
		sc.ID = uuid.New()
		sc.AssessmentID = a.ID
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO assessment_summary_comment (id, assessment_id, comment_type, comment_text,
				created_by_name, created_by_email)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			sc.ID, sc.AssessmentID, sc.CommentType, sc.CommentText,
			sc.CreatedByName, sc.CreatedByEmail); err != nil {
			return fmt.Errorf("insert summary comment: %w", err)
		}
	}

	for _, sc := range c.SectionComments {
		sc.ID = uuid.New()
		sc.AssessmentID = a.ID
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO assessment_section_comment (id, assessment_id, section_key, section_title, comment_text)
			VALUES ($1,$2,$3,$4,$5)`,
			sc.ID, sc.AssessmentID, sc.SectionKey, sc.SectionTitle, sc.CommentText); err != nil {
			return fmt.Errorf("insert section comment: %w", err)
		}
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, a *Assessment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE assessment SET status=$2,
			reviewed_by_name=$3, reviewed_by_email=$4,
			approved_by_name=$5, approved_by_email=$6,
			rejected_by_name=$7, rejected_by_email=$8,
			comments=$9, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Status,
		a.ReviewedByName, a.ReviewedByEmail,
		a.ApprovedByName, a.ApprovedByEmail,
		a.RejectedByName, a.RejectedByEmail,
		a.Comments)
	return err
}

func (r *repoPG) ListAssessedByUser(ctx context.Context, email, userType string) ([]*AssessedStudy, error) {
	userClause := `LOWER(s.principal_investigator_email) = LOWER($1)`
	if userType == "SD" {
		userClause = `LOWER(s.site_director_email) = LOWER($1)`
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT s.id, s.site, s.sponsor, s.protocol, s.study_type, s.study_type_text,
			s.description, s.status, s.phase, s.monitoring_schedule,
			s.principal_investigator, s.principal_investigator_email,
			s.site_director, s.site_director_email,
			a.id, a.assessment_date, a.status,
			COALESCE(a.overall_risk_score, 0), COALESCE(a.overall_risk_level, '-')
		FROM assessment a
		JOIN study s ON s.id = a.study_id
		WHERE `+userClause+`
			AND a.created_at = (SELECT MAX(created_at) FROM assessment WHERE study_id = a.study_id)
		ORDER BY a.updated_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AssessedStudy
	for rows.Next() {
		var as AssessedStudy
		if err := rows.Scan(&as.StudyID, &as.Site, &as.Sponsor, &as.Protocol, &as.StudyType,
			&as.StudyTypeText, &as.Description, &as.StudyStatus, &as.Phase, &as.MonitoringSchedule,
			&as.PrincipalInvestigator, &as.PrincipalInvestigatorEmail,
			&as.SiteDirector, &as.SiteDirectorEmail,
			&as.AssessmentID, &as.AssessmentDate, &as.AssessmentStatus,
			&as.Risk, &as.RiskLevel); err != nil {
			return nil, err
		}
		items = append(items, &as)
	}
	return items, rows.Err()
}

// =========== Audit Repository ===========

type auditRepoPG struct{ pool *pgxpool.Pool }

func NewAuditRepoPG(pool *pgxpool.Pool) AuditRepository {
	return &auditRepoPG{pool: pool}
}

func (r *auditRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *auditRepoPG) Record(ctx context.Context, e *AuditEntry) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO assessment_audit (id, study_id, assessment_id, risk_factor_id,
			risk_factor, field_name, old_value, new_value, changed_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.StudyID, e.AssessmentID, e.RiskFactorID,
		e.RiskFactor, e.FieldName, e.OldValue, e.NewValue, e.ChangedBy)
	return err
}

func (r *auditRepoPG) ListByStudy(ctx context.Context, studyID uuid.UUID, f AuditFilter) ([]*AuditEntry, error) {
	query := `SELECT id, study_id, assessment_id, risk_factor_id, risk_factor,
		field_name, old_value, new_value, changed_by, created_at
		FROM assessment_audit WHERE study_id = $1`
	args := []interface{}{studyID}
	idx := 2
	if f.FieldName != "" {
		query += fmt.Sprintf(` AND field_name = $%d`, idx)
		args = append(args, f.FieldName)
		idx++
	}
	if f.RiskFactorID != nil {
		query += fmt.Sprintf(` AND risk_factor_id = $%d`, idx)
		args = append(args, *f.RiskFactorID)
		idx++
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, idx)
	args = append(args, limit)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.StudyID, &e.AssessmentID, &e.RiskFactorID, &e.RiskFactor,
			&e.FieldName, &e.OldValue, &e.NewValue, &e.ChangedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}

// =========== Timeline Repository ===========

type timelineRepoPG struct{ pool *pgxpool.Pool }

func NewTimelineRepoPG(pool *pgxpool.Pool) TimelineRepository {
	return &timelineRepoPG{pool: pool}
}

func (r *timelineRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *timelineRepoPG) Record(ctx context.Context, e *TimelineEntry) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO assessment_timeline (id, study_id, assessment_id, schedule,
			assessed_date, assessed_by, risk_score, risk_level, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.StudyID, e.AssessmentID, e.Schedule,
		e.AssessedDate, e.AssessedBy, e.RiskScore, e.RiskLevel, e.Notes)
	return err
}

func (r *timelineRepoPG) ListByStudy(ctx context.Context, studyID uuid.UUID, limit int) ([]*TimelineEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, study_id, assessment_id, schedule, assessed_date, assessed_by,
			risk_score, risk_level, notes, created_at
		FROM assessment_timeline WHERE study_id = $1 ORDER BY created_at DESC LIMIT $2`,
		studyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*TimelineEntry
	for rows.Next() {
		var e TimelineEntry
		if err := rows.Scan(&e.ID, &e.StudyID, &e.AssessmentID, &e.Schedule, &e.AssessedDate,
			&e.AssessedBy, &e.RiskScore, &e.RiskLevel, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}
