package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flourish/riskassess/internal/domain/assessment"
)

var validUserTypes = map[string]bool{"PI": true, "SD": true}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Notify records a workflow event from the assessment service. Satisfies
// assessment.Notifier.
func (s *Service) Notify(ctx context.Context, notice assessment.ActionNotice) error {
	n := &Notification{
		StudyID:        notice.StudyID,
		AssessmentID:   notice.AssessmentID,
		Action:         notice.Action,
		ActionByName:   notice.ActorName,
		ActionByEmail:  notice.ActorEmail,
		Reason:         notice.Reason,
		Comments:       notice.Comments,
		TargetUserType: notice.TargetUserType,
	}
	return s.repo.Create(ctx, n)
}

// Create records a notification posted directly by a client.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Notification, error) {
	if req.StudyID == uuid.Nil {
		return nil, fmt.Errorf("study_id is required")
	}
	if req.Action == "" {
		return nil, fmt.Errorf("action is required")
	}
	if !validUserTypes[req.TargetUserType] {
		return nil, fmt.Errorf("invalid user type: %s", req.TargetUserType)
	}
	n := &Notification{
		StudyID:        req.StudyID,
		AssessmentID:   req.AssessmentID,
		Action:         req.Action,
		ActionByName:   req.ActionByName,
		ActionByEmail:  req.ActionByEmail,
		Reason:         req.Reason,
		Comments:       req.Comments,
		TargetUserType: req.TargetUserType,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns the newest notifications for a role.
func (s *Service) List(ctx context.Context, userType string, limit int) ([]*Notification, error) {
	if !validUserTypes[userType] {
		return nil, fmt.Errorf("invalid user type: %s", userType)
	}
	return s.repo.ListByUserType(ctx, userType, limit)
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead flags every unread notification of a role and reports how
// many changed.
func (s *Service) MarkAllRead(ctx context.Context, userType string) (int, error) {
	if !validUserTypes[userType] {
		return 0, fmt.Errorf("invalid user type: %s", userType)
	}
	return s.repo.MarkAllRead(ctx, userType)
}

// UnreadCount backs the bell badge.
func (s *Service) UnreadCount(ctx context.Context, userType string) (int, error) {
	if !validUserTypes[userType] {
		return 0, fmt.Errorf("invalid user type: %s", userType)
	}
	return s.repo.UnreadCount(ctx, userType)
}
