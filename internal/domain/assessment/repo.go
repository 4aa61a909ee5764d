package assessment

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists assessments and their child records. Save replaces
// the whole snapshot for an assessment; callers wrap it in a transaction.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Assessment, error)
	GetLatestByStudy(ctx context.Context, studyID uuid.UUID) (*Assessment, error)
	GetComplete(ctx context.Context, assessmentID uuid.UUID) (*Complete, error)
	Save(ctx context.Context, complete *Complete) error
	UpdateStatus(ctx context.Context, a *Assessment) error
	ListAssessedByUser(ctx context.Context, email, userType string) ([]*AssessedStudy, error)
}

// AuditRepository records field-level changes for the audit trail screen.
type AuditRepository interface {
	Record(ctx context.Context, e *AuditEntry) error
	ListByStudy(ctx context.Context, studyID uuid.UUID, f AuditFilter) ([]*AuditEntry, error)
}

// TimelineRepository records one entry per save or schedule change.
type TimelineRepository interface {
	Record(ctx context.Context, e *TimelineEntry) error
	ListByStudy(ctx context.Context, studyID uuid.UUID, limit int) ([]*TimelineEntry, error)
}
