package assessment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/flourish/riskassess/internal/domain/catalog"
	"github.com/flourish/riskassess/internal/domain/study"
	"github.com/flourish/riskassess/internal/platform/db"
)

// ActionNotice describes a workflow event for the notification service.
// TargetUserType names the counterpart role that should see it.
type ActionNotice struct {
	AssessmentID   uuid.UUID
	StudyID        uuid.UUID
	Action         string
	ActorName      string
	ActorEmail     string
	Reason         string
	Comments       string
	TargetUserType string
}

// Notifier receives workflow events. Failures are logged, never propagated;
// a lost notification must not break a save.
type Notifier interface {
	Notify(ctx context.Context, n ActionNotice) error
}

var validUserTypes = map[string]bool{"PI": true, "SD": true}

type Service struct {
	repo     Repository
	audit    AuditRepository
	timeline TimelineRepository
	studies  study.Repository
	catalog  *catalog.Service
	notifier Notifier
	pool     *pgxpool.Pool
	logger   zerolog.Logger
}

func NewService(
	repo Repository,
	audit AuditRepository,
	timeline TimelineRepository,
	studies study.Repository,
	catalogSvc *catalog.Service,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		audit:    audit,
		timeline: timeline,
		studies:  studies,
		catalog:  catalogSvc,
		logger:   logger,
	}
}

// SetPool attaches the connection pool used for transactional saves. Without
// it, writes run without a wrapping transaction (mock repositories in tests).
func (s *Service) SetPool(pool *pgxpool.Pool) {
	s.pool = pool
}

// SetNotifier attaches the optional workflow notifier.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.RunInTx(ctx, s.pool, fn)
}

// Save persists the full assessment snapshot atomically. It creates the
// assessment on first save and replaces the snapshot on subsequent ones;
// submission moves the status to "Pending Review". Field-level changes are
// written to the audit trail and every save gets a timeline entry.
func (s *Service) Save(ctx context.Context, req *SaveRequest, actorName, actorEmail string) (*Assessment, error) {
	if req.StudyID == uuid.Nil {
		return nil, fmt.Errorf("study_id is required")
	}
	if req.AssessmentDate == "" {
		return nil, fmt.Errorf("assessment_date is required")
	}
	if len(req.RiskScores) == 0 {
		return nil, fmt.Errorf("at least one risk score is required")
	}
	for _, rs := range req.RiskScores {
		if rs.Severity < 1 || rs.Severity > 3 {
			return nil, fmt.Errorf("severity must be between 1 and 3")
		}
		if rs.Likelihood < 1 || rs.Likelihood > 3 {
			return nil, fmt.Errorf("likelihood must be between 1 and 3")
		}
	}

	st, err := s.studies.GetByID(ctx, req.StudyID)
	if err != nil {
		return nil, fmt.Errorf("study not found")
	}

	// Client numbers are not trusted; scores and the dashboard block are
	// recomputed from the raw severity and likelihood inputs.
	dashboard := ComputeDashboard(req.RiskScores)
	if req.Submit {
		if missing := unscoredFactors(s.CatalogMetadata(ctx), req.RiskScores); len(missing) > 0 {
			return nil, &ValidationError{Missing: missing}
		}
		if !s.hasPlanData(req.MitigationPlans) {
			return nil, fmt.Errorf("at least one risk mitigation plan is required")
		}
	}

	var previous *Complete
	existing, err := s.repo.GetLatestByStudy(ctx, req.StudyID)
	if err == nil && existing != nil {
		previous, _ = s.repo.GetComplete(ctx, existing.ID)
	}

	a := &Assessment{
		StudyID:            req.StudyID,
		ConductedByName:    actorName,
		ConductedByEmail:   actorEmail,
		AssessmentDate:     req.AssessmentDate,
		NextReviewDate:     req.NextReviewDate,
		MonitoringSchedule: req.MonitoringSchedule,
		Status:             StatusInProgress,
		OverallRiskScore:   intPtr(dashboard.TotalScore),
		OverallRiskLevel:   strPtr(dashboard.OverallRiskLevel),
		Comments:           req.Comments,
		UpdatedByName:      strPtr(actorName),
		UpdatedByEmail:     strPtr(actorEmail),
	}
	if req.Submit {
		a.Status = StatusPendingReview
	}
	isNew := true
	if existing != nil {
		a.ID = existing.ID
		a.ConductedByName = existing.ConductedByName
		a.ConductedByEmail = existing.ConductedByEmail
		isNew = false
	}

	complete := s.buildSnapshot(a, req, dashboard, actorName, actorEmail)

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Save(ctx, complete); err != nil {
			return err
		}
		s.recordAuditTrail(ctx, a, previous, complete, actorName)
		s.recordTimeline(ctx, a, existing, dashboard, actorName, req.Submit)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, st, ActionNotice{
		AssessmentID: a.ID,
		StudyID:      a.StudyID,
		Action:       saveAction(isNew, req.Submit),
		ActorName:    actorName,
		ActorEmail:   actorEmail,
		Reason:       "Assessment saved",
		Comments:     "Assessment data saved successfully",
	})
	return a, nil
}

func saveAction(isNew, submitted bool) string {
	switch {
	case submitted:
		return "Submitted for Review"
	case isNew:
		return "Initial Save"
	default:
		return "Assessment Updated"
	}
}

func (s *Service) hasPlanData(plans []MitigationPlanInput) bool {
	for _, p := range plans {
		mp := MitigationPlan{
			RiskItem:           p.RiskItem,
			ResponsiblePerson:  p.ResponsiblePerson,
			MitigationStrategy: p.MitigationStrategy,
		}
		if mp.HasData() {
			return true
		}
	}
	return false
}

func (s *Service) buildSnapshot(a *Assessment, req *SaveRequest, dashboard DashboardInput, actorName, actorEmail string) *Complete {
	c := &Complete{Assessment: a}
	for _, in := range req.RiskScores {
		score := Score(in.Severity, in.Likelihood)
		rs := &RiskScore{
			RiskFactorID: in.RiskFactorID,
			Severity:     in.Severity,
			Likelihood:   in.Likelihood,
			RiskScore:    score,
			RiskLevel:    ItemLevel(score),
		}
		if in.MitigationActions != "" {
			rs.MitigationActions = strPtr(in.MitigationActions)
		}
		if in.CustomNotes != "" {
			rs.CustomNotes = strPtr(in.CustomNotes)
		}
		c.RiskScores = append(c.RiskScores, rs)
	}
	for _, in := range req.MitigationPlans {
		p := &MitigationPlan{
			RiskItem:           in.RiskItem,
			ResponsiblePerson:  in.ResponsiblePerson,
			MitigationStrategy: in.MitigationStrategy,
			TargetDate:         in.TargetDate,
			Status:             in.Status,
			PriorityLevel:      in.PriorityLevel,
		}
		if !p.HasData() {
			continue
		}
		c.MitigationPlans = append(c.MitigationPlans, p)
	}
	c.Dashboard = &Dashboard{
		TotalRisks:        dashboard.TotalRisks,
		HighRiskCount:     dashboard.HighRiskCount,
		MediumRiskCount:   dashboard.MediumRiskCount,
		LowRiskCount:      dashboard.LowRiskCount,
		TotalScore:        dashboard.TotalScore,
		OverallRiskLevel:  dashboard.OverallRiskLevel,
		RiskLevelCriteria: dashboard.RiskLevelCriteria,
	}
	for _, in := range req.SummaryComments {
		if trimmed(in.CommentText) == "" {
			continue
		}
		c.SummaryComments = append(c.SummaryComments, &SummaryComment{
			CommentType:    in.CommentType,
			CommentText:    in.CommentText,
			CreatedByName:  actorName,
			CreatedByEmail: actorEmail,
		})
	}
	for _, in := range req.SectionComments {
		if trimmed(in.CommentText) == "" {
			continue
		}
		c.SectionComments = append(c.SectionComments, &SectionComment{
			SectionKey:   in.SectionKey,
			SectionTitle: in.SectionTitle,
			CommentText:  in.CommentText,
		})
	}
	return c
}

// recordAuditTrail diffs the new snapshot against the previous one and
// writes one entry per changed field. Audit failures are logged, not fatal.
func (s *Service) recordAuditTrail(ctx context.Context, a *Assessment, previous, current *Complete, actor string) {
	factorText := map[uuid.UUID]string{}
	if s.catalog != nil {
		for _, f := range s.catalog.Metadata(ctx).RiskFactors {
			factorText[f.ID] = f.Text
		}
	}
	prevScores := map[uuid.UUID]*RiskScore{}
	if previous != nil {
		for _, rs := range previous.RiskScores {
			prevScores[rs.RiskFactorID] = rs
		}
	}
	for _, rs := range current.RiskScores {
		prev := prevScores[rs.RiskFactorID]
		fields := []struct {
			name     string
			old, new string
		}{
			{"Severity", prevInt(prev, func(p *RiskScore) int { return p.Severity }), strconv.Itoa(rs.Severity)},
			{"Likelihood", prevInt(prev, func(p *RiskScore) int { return p.Likelihood }), strconv.Itoa(rs.Likelihood)},
			{"Mitigation Actions", prevStr(prev, func(p *RiskScore) *string { return p.MitigationActions }), derefStr(rs.MitigationActions)},
			{"Custom Notes", prevStr(prev, func(p *RiskScore) *string { return p.CustomNotes }), derefStr(rs.CustomNotes)},
		}
		for _, f := range fields {
			if f.old == f.new {
				continue
			}
			factorID := rs.RiskFactorID
			entry := &AuditEntry{
				StudyID:      a.StudyID,
				AssessmentID: a.ID,
				RiskFactorID: &factorID,
				RiskFactor:   factorText[rs.RiskFactorID],
				FieldName:    f.name,
				OldValue:     f.old,
				NewValue:     f.new,
				ChangedBy:    actor,
			}
			if err := s.audit.Record(ctx, entry); err != nil {
				s.logger.Error().Err(err).Str("field", f.name).Msg("audit record failed")
			}
		}
	}
}

func (s *Service) recordTimeline(ctx context.Context, a *Assessment, existing *Assessment, dashboard DashboardInput, actor string, submitted bool) {
	notes := "Assessment saved"
	if submitted {
		notes = "Assessment submitted for review"
	}
	entry := &TimelineEntry{
		StudyID:      a.StudyID,
		AssessmentID: a.ID,
		Schedule:     a.MonitoringSchedule,
		AssessedDate: a.AssessmentDate,
		AssessedBy:   actor,
		RiskScore:    dashboard.TotalScore,
		RiskLevel:    dashboard.OverallRiskLevel,
		Notes:        notes,
	}
	if err := s.timeline.Record(ctx, entry); err != nil {
		s.logger.Error().Err(err).Msg("timeline record failed")
	}
	if existing != nil && existing.MonitoringSchedule != "" && existing.MonitoringSchedule != a.MonitoringSchedule {
		change := &TimelineEntry{
			StudyID:      a.StudyID,
			AssessmentID: a.ID,
			Schedule:     "Schedule Update: " + a.MonitoringSchedule,
			AssessedDate: a.AssessmentDate,
			AssessedBy:   actor,
			RiskScore:    dashboard.TotalScore,
			RiskLevel:    dashboard.OverallRiskLevel,
			Notes: fmt.Sprintf("Monitoring schedule updated from %q to %q by %s",
				existing.MonitoringSchedule, a.MonitoringSchedule, actor),
		}
		if err := s.timeline.Record(ctx, change); err != nil {
			s.logger.Error().Err(err).Msg("timeline schedule change record failed")
		}
	}
}

// notify routes the event to the counterpart role: actions by the PI go to
// the SD and vice versa.
func (s *Service) notify(ctx context.Context, st *study.Study, n ActionNotice) {
	if s.notifier == nil {
		return
	}
	n.TargetUserType = "SD"
	if st.SiteDirectorEmail != nil && strings.EqualFold(n.ActorEmail, *st.SiteDirectorEmail) {
		n.TargetUserType = "PI"
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn().Err(err).Str("action", n.Action).Msg("notification failed")
	}
}

// Approve marks a pending assessment approved. Only valid from
// "Pending Review".
func (s *Service) Approve(ctx context.Context, assessmentID uuid.UUID, req *ActionRequest) (*Assessment, error) {
	return s.review(ctx, assessmentID, req, StatusApproved)
}

// Reject marks a pending assessment rejected. Only valid from
// "Pending Review".
func (s *Service) Reject(ctx context.Context, assessmentID uuid.UUID, req *ActionRequest) (*Assessment, error) {
	return s.review(ctx, assessmentID, req, StatusRejected)
}

func (s *Service) review(ctx context.Context, assessmentID uuid.UUID, req *ActionRequest, newStatus string) (*Assessment, error) {
	if req.ActionByEmail == "" {
		return nil, fmt.Errorf("action_by_email is required")
	}
	a, err := s.repo.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("assessment not found")
	}
	if a.Status != StatusPendingReview {
		return nil, fmt.Errorf("assessment is not pending review (status: %s)", a.Status)
	}
	st, err := s.studies.GetByID(ctx, a.StudyID)
	if err != nil {
		return nil, fmt.Errorf("study not found")
	}

	oldStatus := a.Status
	a.Status = newStatus
	a.ReviewedByName = strPtr(req.ActionByName)
	a.ReviewedByEmail = strPtr(req.ActionByEmail)
	if newStatus == StatusApproved {
		a.ApprovedByName = strPtr(req.ActionByName)
		a.ApprovedByEmail = strPtr(req.ActionByEmail)
	} else {
		a.RejectedByName = strPtr(req.ActionByName)
		a.RejectedByEmail = strPtr(req.ActionByEmail)
	}
	if req.Comments != "" {
		a.Comments = strPtr(req.Comments)
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, a); err != nil {
			return err
		}
		entry := &AuditEntry{
			StudyID:      a.StudyID,
			AssessmentID: a.ID,
			FieldName:    "Status",
			OldValue:     oldStatus,
			NewValue:     newStatus,
			ChangedBy:    req.ActionByName,
		}
		if err := s.audit.Record(ctx, entry); err != nil {
			s.logger.Error().Err(err).Msg("audit record failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, st, ActionNotice{
		AssessmentID: a.ID,
		StudyID:      a.StudyID,
		Action:       newStatus,
		ActorName:    req.ActionByName,
		ActorEmail:   req.ActionByEmail,
		Reason:       req.Reason,
		Comments:     req.Comments,
	})
	return a, nil
}

// GetCompleteByStudy returns the latest snapshot for a study.
func (s *Service) GetCompleteByStudy(ctx context.Context, studyID uuid.UUID) (*Complete, error) {
	a, err := s.repo.GetLatestByStudy(ctx, studyID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetComplete(ctx, a.ID)
}

// GetComplete returns the snapshot for one assessment.
func (s *Service) GetComplete(ctx context.Context, assessmentID uuid.UUID) (*Complete, error) {
	return s.repo.GetComplete(ctx, assessmentID)
}

// ListAssessed lists the caller's studies that carry an assessment.
func (s *Service) ListAssessed(ctx context.Context, email, userType string) ([]*AssessedStudy, error) {
	if email == "" {
		return nil, fmt.Errorf("user email is required")
	}
	if !validUserTypes[userType] {
		return nil, fmt.Errorf("invalid user type: %s", userType)
	}
	return s.repo.ListAssessedByUser(ctx, email, userType)
}

// Audit returns the audit trail of a study plus the id of its latest
// assessment (nil when none exists yet).
func (s *Service) Audit(ctx context.Context, studyID uuid.UUID, f AuditFilter) ([]*AuditEntry, *uuid.UUID, error) {
	entries, err := s.audit.ListByStudy(ctx, studyID, f)
	if err != nil {
		return nil, nil, err
	}
	var assessmentID *uuid.UUID
	if a, err := s.repo.GetLatestByStudy(ctx, studyID); err == nil && a != nil {
		assessmentID = &a.ID
	}
	return entries, assessmentID, nil
}

// Timeline returns the assessment history of a study.
func (s *Service) Timeline(ctx context.Context, studyID uuid.UUID, limit int) ([]*TimelineEntry, error) {
	return s.timeline.ListByStudy(ctx, studyID, limit)
}

// GetStudy exposes the study lookup for handlers that need study context
// (PDF export).
func (s *Service) GetStudy(ctx context.Context, id uuid.UUID) (*study.Study, error) {
	return s.studies.GetByID(ctx, id)
}

// CatalogMetadata exposes the questionnaire definition for handlers.
func (s *Service) CatalogMetadata(ctx context.Context) *catalog.Metadata {
	if s.catalog == nil {
		return catalog.Fallback()
	}
	return s.catalog.Metadata(ctx)
}

func prevInt(p *RiskScore, get func(*RiskScore) int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(get(p))
}

func prevStr(p *RiskScore, get func(*RiskScore) *string) string {
	if p == nil {
		return ""
	}
	return derefStr(get(p))
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

