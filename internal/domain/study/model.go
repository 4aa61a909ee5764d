package study

import (
	"time"

	"github.com/google/uuid"
)

// Study maps to the study table. Rows mirror the site management system's
// study records, enriched with the PI/SD identities the authorization gate
// and the assessment workflow key off.
type Study struct {
	ID                         uuid.UUID  `db:"id" json:"id"`
	SiteID                     int        `db:"site_id" json:"siteid"`
	Site                       string     `db:"site" json:"site"`
	Sponsor                    string     `db:"sponsor" json:"sponsor"`
	SponsorCode                *string    `db:"sponsor_code" json:"sponsor_code"`
	StudyCode                  string     `db:"study_code" json:"studyid"`
	Protocol                   string     `db:"protocol" json:"protocol"`
	StudyType                  string     `db:"study_type" json:"studytype"`
	StudyTypeText              string     `db:"study_type_text" json:"studytypetext"`
	Status                     string     `db:"status" json:"status"`
	Description                string     `db:"description" json:"description"`
	Phase                      *string    `db:"phase" json:"phase"`
	Active                     bool       `db:"active" json:"active"`
	PrincipalInvestigator      string     `db:"principal_investigator" json:"principal_investigator"`
	PrincipalInvestigatorEmail string     `db:"principal_investigator_email" json:"principal_investigator_email"`
	SiteDirector               *string    `db:"site_director" json:"site_director"`
	SiteDirectorEmail          *string    `db:"site_director_email" json:"site_director_email"`
	MonitoringSchedule         string     `db:"monitoring_schedule" json:"monitoring_schedule"`
	AssessmentStatus           string     `db:"assessment_status" json:"assessment_status"`
	CreatedAt                  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                  *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// DropdownValues is the response of the dropdown-values endpoint.
type DropdownValues struct {
	Sites     []string `json:"sites"`
	Sponsors  []string `json:"sponsors"`
	Protocols []string `json:"protocols"`
}

// Filter narrows study listings. "All" and "" both mean unfiltered.
type Filter struct {
	Site     string
	Sponsor  string
	Protocol string
}

// Normalize clears the "All" sentinel the clients send for unfiltered
// dropdowns.
func (f Filter) Normalize() Filter {
	if f.Site == "All" {
		f.Site = ""
	}
	if f.Sponsor == "All" {
		f.Sponsor = ""
	}
	if f.Protocol == "All" {
		f.Protocol = ""
	}
	return f
}
