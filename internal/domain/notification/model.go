package notification

import (
	"time"

	"github.com/google/uuid"
)

// StudyInfo is the study context embedded in a notification so the bell
// dropdown renders without a second lookup.
type StudyInfo struct {
	Site                  string `json:"site"`
	Sponsor               string `json:"sponsor"`
	Protocol              string `json:"protocol"`
	PrincipalInvestigator string `json:"principal_investigator"`
	SiteDirector          string `json:"site_director"`
}

// Notification is one workflow event addressed to a role. TargetUserType
// is "PI" or "SD"; the counterpart of whoever acted.
type Notification struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	StudyID        uuid.UUID  `db:"study_id" json:"study_id"`
	AssessmentID   uuid.UUID  `db:"assessment_id" json:"assessment_id"`
	Action         string     `db:"action" json:"action"`
	ActionByName   string     `db:"action_by_name" json:"action_by_name"`
	ActionByEmail  string     `db:"action_by_email" json:"action_by_email"`
	Reason         string     `db:"reason" json:"reason"`
	Comments       string     `db:"comments" json:"comments"`
	TargetUserType string     `db:"target_user_type" json:"user_type"`
	IsRead         bool       `db:"is_read" json:"is_read"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	StudyInfo      *StudyInfo `db:"-" json:"study_info,omitempty"`
}

// CreateRequest is the payload of the create endpoint.
type CreateRequest struct {
	StudyID        uuid.UUID `json:"study_id"`
	AssessmentID   uuid.UUID `json:"assessment_id"`
	Action         string    `json:"action"`
	ActionByName   string    `json:"action_by_name"`
	ActionByEmail  string    `json:"action_by_email"`
	Reason         string    `json:"reason"`
	Comments       string    `json:"comments"`
	TargetUserType string    `json:"user_type"`
}
