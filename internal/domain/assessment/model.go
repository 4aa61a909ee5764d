package assessment

import (
	"time"

	"github.com/google/uuid"
)

// Assessment statuses. An assessment is created "In Progress", moves to
// "Pending Review" on submission, and ends "Approved" or "Rejected" by a
// site director action.
const (
	StatusInProgress    = "In Progress"
	StatusPendingReview = "Pending Review"
	StatusApproved      = "Approved"
	StatusRejected      = "Rejected"
)

var validStatuses = map[string]bool{
	StatusInProgress:    true,
	StatusPendingReview: true,
	StatusApproved:      true,
	StatusRejected:      true,
}

// Assessment maps to the assessment table: one row per study snapshot.
type Assessment struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	StudyID            uuid.UUID `db:"study_id" json:"study_id"`
	ConductedByName    string    `db:"conducted_by_name" json:"conducted_by_name"`
	ConductedByEmail   string    `db:"conducted_by_email" json:"conducted_by_email"`
	AssessmentDate     string    `db:"assessment_date" json:"assessment_date"`
	NextReviewDate     *string   `db:"next_review_date" json:"next_review_date,omitempty"`
	MonitoringSchedule string    `db:"monitoring_schedule" json:"monitoring_schedule"`
	Status             string    `db:"status" json:"status"`
	OverallRiskScore   *int      `db:"overall_risk_score" json:"overall_risk_score,omitempty"`
	OverallRiskLevel   *string   `db:"overall_risk_level" json:"overall_risk_level,omitempty"`
	Comments           *string   `db:"comments" json:"comments,omitempty"`
	UpdatedByName      *string   `db:"updated_by_name" json:"updated_by_name,omitempty"`
	UpdatedByEmail     *string   `db:"updated_by_email" json:"updated_by_email,omitempty"`
	ReviewedByName     *string   `db:"reviewed_by_name" json:"reviewed_by_name,omitempty"`
	ReviewedByEmail    *string   `db:"reviewed_by_email" json:"reviewed_by_email,omitempty"`
	ApprovedByName     *string   `db:"approved_by_name" json:"approved_by_name,omitempty"`
	ApprovedByEmail    *string   `db:"approved_by_email" json:"approved_by_email,omitempty"`
	RejectedByName     *string   `db:"rejected_by_name" json:"rejected_by_name,omitempty"`
	RejectedByEmail    *string   `db:"rejected_by_email" json:"rejected_by_email,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// RiskScore maps to the assessment_risk_score table: one scored factor.
type RiskScore struct {
	ID                uuid.UUID `db:"id" json:"id"`
	AssessmentID      uuid.UUID `db:"assessment_id" json:"assessment_id"`
	RiskFactorID      uuid.UUID `db:"risk_factor_id" json:"risk_factor_id"`
	Severity          int       `db:"severity" json:"severity"`
	Likelihood        int       `db:"likelihood" json:"likelihood"`
	RiskScore         int       `db:"risk_score" json:"risk_score"`
	RiskLevel         string    `db:"risk_level" json:"risk_level"`
	MitigationActions *string   `db:"mitigation_actions" json:"mitigation_actions,omitempty"`
	CustomNotes       *string   `db:"custom_notes" json:"custom_notes,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// MitigationPlan maps to the risk_mitigation_plan table.
type MitigationPlan struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	AssessmentID       uuid.UUID `db:"assessment_id" json:"assessment_id"`
	RiskItem           string    `db:"risk_item" json:"risk_item"`
	ResponsiblePerson  string    `db:"responsible_person" json:"responsible_person"`
	MitigationStrategy string    `db:"mitigation_strategy" json:"mitigation_strategy"`
	TargetDate         string    `db:"target_date" json:"target_date"`
	Status             string    `db:"status" json:"status"`
	PriorityLevel      string    `db:"priority_level" json:"priority_level"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// HasData reports whether the user typed anything into the plan row. Only
// rows with data are persisted.
func (p *MitigationPlan) HasData() bool {
	return trimmed(p.RiskItem) != "" || trimmed(p.ResponsiblePerson) != "" || trimmed(p.MitigationStrategy) != ""
}

// Dashboard maps to the assessment_dashboard table: the aggregated risk
// picture of one assessment.
type Dashboard struct {
	ID                uuid.UUID `db:"id" json:"id"`
	AssessmentID      uuid.UUID `db:"assessment_id" json:"assessment_id"`
	TotalRisks        int       `db:"total_risks" json:"total_risks"`
	HighRiskCount     int       `db:"high_risk_count" json:"high_risk_count"`
	MediumRiskCount   int       `db:"medium_risk_count" json:"medium_risk_count"`
	LowRiskCount      int       `db:"low_risk_count" json:"low_risk_count"`
	TotalScore        int       `db:"total_score" json:"total_score"`
	OverallRiskLevel  string    `db:"overall_risk_level" json:"overall_risk_level"`
	RiskLevelCriteria string    `db:"risk_level_criteria" json:"risk_level_criteria"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// SummaryComment maps to the assessment_summary_comment table.
type SummaryComment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	AssessmentID   uuid.UUID `db:"assessment_id" json:"assessment_id"`
	CommentType    string    `db:"comment_type" json:"comment_type"`
	CommentText    string    `db:"comment_text" json:"comment_text"`
	CreatedByName  string    `db:"created_by_name" json:"created_by_name"`
	CreatedByEmail string    `db:"created_by_email" json:"created_by_email"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// SectionComment maps to the assessment_section_comment table.
type SectionComment struct {
	ID           uuid.UUID `db:"id" json:"id"`
	AssessmentID uuid.UUID `db:"assessment_id" json:"assessment_id"`
	SectionKey   string    `db:"section_key" json:"section_key"`
	SectionTitle string    `db:"section_title" json:"section_title"`
	CommentText  string    `db:"comment_text" json:"comment_text"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Complete is the full persisted snapshot of one assessment.
type Complete struct {
	Assessment      *Assessment       `json:"assessment"`
	RiskScores      []*RiskScore      `json:"risk_scores"`
	MitigationPlans []*MitigationPlan `json:"risk_mitigation_plans"`
	Dashboard       *Dashboard        `json:"risk_dashboard,omitempty"`
	SummaryComments []*SummaryComment `json:"summary_comments"`
	SectionComments []*SectionComment `json:"section_comments"`
}

// AuditEntry maps to the assessment_audit table: one field-level change.
type AuditEntry struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	StudyID      uuid.UUID  `db:"study_id" json:"study_id"`
	AssessmentID uuid.UUID  `db:"assessment_id" json:"assessment_id"`
	RiskFactorID *uuid.UUID `db:"risk_factor_id" json:"risk_factor_id,omitempty"`
	RiskFactor   string     `db:"risk_factor" json:"riskFactor"`
	FieldName    string     `db:"field_name" json:"field"`
	OldValue     string     `db:"old_value" json:"oldValue"`
	NewValue     string     `db:"new_value" json:"newValue"`
	ChangedBy    string     `db:"changed_by" json:"changedBy"`
	CreatedAt    time.Time  `db:"created_at" json:"timestamp"`
}

// AuditFilter narrows the audit trail query.
type AuditFilter struct {
	FieldName    string
	RiskFactorID *uuid.UUID
	Limit        int
}

// TimelineEntry maps to the assessment_timeline table: one save or schedule
// change.
type TimelineEntry struct {
	ID           uuid.UUID `db:"id" json:"id"`
	StudyID      uuid.UUID `db:"study_id" json:"study_id"`
	AssessmentID uuid.UUID `db:"assessment_id" json:"assessment_id"`
	Schedule     string    `db:"schedule" json:"schedule"`
	AssessedDate string    `db:"assessed_date" json:"assessedDate"`
	AssessedBy   string    `db:"assessed_by" json:"assessedBy"`
	RiskScore    int       `db:"risk_score" json:"riskScore"`
	RiskLevel    string    `db:"risk_level" json:"riskLevel"`
	Notes        string    `db:"notes" json:"notes"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// AssessedStudy is one row of the assessed-studies listing: study fields
// joined with the latest assessment.
type AssessedStudy struct {
	StudyID                    uuid.UUID `db:"study_id" json:"study_id"`
	Site                       string    `db:"site" json:"site"`
	Sponsor                    string    `db:"sponsor" json:"sponsor"`
	Protocol                   string    `db:"protocol" json:"protocol"`
	StudyType                  string    `db:"study_type" json:"study_type"`
	StudyTypeText              string    `db:"study_type_text" json:"study_type_text"`
	Description                string    `db:"description" json:"description"`
	StudyStatus                string    `db:"study_status" json:"study_status"`
	Phase                      *string   `db:"phase" json:"phase"`
	MonitoringSchedule         string    `db:"monitoring_schedule" json:"monitoring_schedule"`
	PrincipalInvestigator      string    `db:"principal_investigator" json:"principal_investigator"`
	PrincipalInvestigatorEmail string    `db:"principal_investigator_email" json:"principal_investigator_email"`
	SiteDirector               *string   `db:"site_director" json:"site_director"`
	SiteDirectorEmail          *string   `db:"site_director_email" json:"site_director_email"`
	AssessmentID               uuid.UUID `db:"assessment_id" json:"assessment_id"`
	AssessmentDate             string    `db:"assessment_date" json:"assessment_date"`
	AssessmentStatus           string    `db:"assessment_status" json:"assessment_status"`
	Risk                       int       `db:"risk" json:"risk"`
	RiskLevel                  string    `db:"risk_level" json:"risk_level"`
}

// ── Request payloads ──

// RiskScoreInput is one scored factor of a save request.
type RiskScoreInput struct {
	RiskFactorID      uuid.UUID `json:"risk_factor_id"`
	Severity          int       `json:"severity"`
	Likelihood        int       `json:"likelihood"`
	RiskScore         int       `json:"risk_score"`
	RiskLevel         string    `json:"risk_level"`
	MitigationActions string    `json:"mitigation_actions"`
	CustomNotes       string    `json:"custom_notes"`
}

// MitigationPlanInput is one plan row of a save request.
type MitigationPlanInput struct {
	RiskItem           string `json:"risk_item"`
	ResponsiblePerson  string `json:"responsible_person"`
	MitigationStrategy string `json:"mitigation_strategy"`
	TargetDate         string `json:"target_date"`
	Status             string `json:"status"`
	PriorityLevel      string `json:"priority_level"`
}

// DashboardInput is the aggregate block of a save request. It is recomputed
// server-side; client numbers are not trusted.
type DashboardInput struct {
	TotalRisks        int    `json:"total_risks"`
	HighRiskCount     int    `json:"high_risk_count"`
	MediumRiskCount   int    `json:"medium_risk_count"`
	LowRiskCount      int    `json:"low_risk_count"`
	TotalScore        int    `json:"total_score"`
	OverallRiskLevel  string `json:"overall_risk_level"`
	RiskLevelCriteria string `json:"risk_level_criteria"`
}

// SummaryCommentInput is one overall comment of a save request.
type SummaryCommentInput struct {
	CommentType string `json:"comment_type"`
	CommentText string `json:"comment_text"`
}

// SectionCommentInput is one section comment of a save request.
type SectionCommentInput struct {
	SectionKey   string `json:"section_key"`
	SectionTitle string `json:"section_title"`
	CommentText  string `json:"comment_text"`
}

// SaveRequest is the payload of saveRisksByStudyId: the full assessment
// snapshot in one atomic write.
type SaveRequest struct {
	StudyID            uuid.UUID             `json:"study_id"`
	AssessmentDate     string                `json:"assessment_date"`
	NextReviewDate     *string               `json:"next_review_date"`
	MonitoringSchedule string                `json:"monitoring_schedule"`
	OverallRiskScore   *int                  `json:"overall_risk_score"`
	OverallRiskLevel   *string               `json:"overall_risk_level"`
	Comments           *string               `json:"comments"`
	Submit             bool                  `json:"submit"`
	RiskScores         []RiskScoreInput      `json:"risk_scores"`
	MitigationPlans    []MitigationPlanInput `json:"risk_mitigation_plans"`
	Dashboard          *DashboardInput       `json:"risk_dashboard"`
	SummaryComments    []SummaryCommentInput `json:"summary_comments"`
	SectionComments    []SectionCommentInput `json:"section_comments"`
}

// ActionRequest is the payload of approve/reject.
type ActionRequest struct {
	StudyID       uuid.UUID `json:"study_id"`
	AssessmentID  uuid.UUID `json:"assessment_id"`
	Action        string    `json:"action"`
	Reason        string    `json:"reason"`
	Comments      string    `json:"comments"`
	ActionByName  string    `json:"action_by_name"`
	ActionByEmail string    `json:"action_by_email"`
}
