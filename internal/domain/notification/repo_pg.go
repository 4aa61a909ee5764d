package notification

import (
	"context"

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

func (r *repoPG) Create(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO notification (id, study_id, assessment_id, action,
			action_by_name, action_by_email, reason, comments, target_user_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		n.ID, n.StudyID, n.AssessmentID, n.Action,
		n.ActionByName, n.ActionByEmail, n.Reason, n.Comments, n.TargetUserType)
	return err
}

func (r *repoPG) ListByUserType(ctx context.Context, userType string, limit int) ([]*Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT n.id, n.study_id, n.assessment_id, n.action,
			n.action_by_name, n.action_by_email, n.reason, n.comments,
			n.target_user_type, n.is_read, n.created_at,
			s.site, s.sponsor, s.protocol,
			s.principal_investigator, COALESCE(s.site_director, '')
		FROM notification n
		JOIN study s ON s.id = n.study_id
		WHERE n.target_user_type = $1
		ORDER BY n.created_at DESC
		LIMIT $2`, userType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Notification
	for rows.Next() {
		var n Notification
		var info StudyInfo
		err := rows.Scan(&n.ID, &n.StudyID, &n.AssessmentID, &n.Action,
			&n.ActionByName, &n.ActionByEmail, &n.Reason, &n.Comments,
			&n.TargetUserType, &n.IsRead, &n.CreatedAt,
			&info.Site, &info.Sponsor, &info.Protocol,
			&info.PrincipalInvestigator, &info.SiteDirector)
		if err != nil {
			return nil, err
		}
		n.StudyInfo = &info
		items = append(items, &n)
	}
	return items, rows.Err()
}

func (r *repoPG) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE notification SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) MarkAllRead(ctx context.Context, userType string) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE notification SET is_read = TRUE WHERE target_user_type = $1 AND NOT is_read`, userType)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *repoPG) UnreadCount(ctx context.Context, userType string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM notification WHERE target_user_type = $1 AND NOT is_read`, userType).
		Scan(&count)
	return count, err
}
