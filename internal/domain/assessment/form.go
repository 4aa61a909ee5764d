package assessment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/flourish/riskassess/internal/domain/catalog"
)

// FormRow is one risk factor row of the questionnaire. Severity and
// likelihood are kept as strings so an empty cell is distinguishable from
// a scored one.
type FormRow struct {
	RiskFactorID uuid.UUID `json:"risk_factor_id"`
	FactorText   string    `json:"risk_factor_text"`
	Severity     string    `json:"severity"`
	Likelihood   string    `json:"likelihood"`
	Mitigation   string    `json:"mitigation"`
	CustomNotes  string    `json:"custom_notes"`
}

// Scored reports whether both inputs are present.
func (r *FormRow) Scored() bool {
	return r.Severity != "" && r.Likelihood != ""
}

// HasData reports whether the user touched any field of the row.
func (r *FormRow) HasData() bool {
	return r.Severity != "" || r.Likelihood != "" || r.Mitigation != ""
}

// FormSection groups the rows of one catalog section plus its comment.
type FormSection struct {
	Key     string     `json:"section_key"`
	Title   string     `json:"section_title"`
	Rows    []*FormRow `json:"rows"`
	Comment string     `json:"comment"`
}

// FormState is the in-flight assessment form: every active catalog factor
// seeded blank, in catalog order, plus plans, comments and metadata.
type FormState struct {
	Sections           []*FormSection   `json:"sections"`
	Plans              []MitigationPlan `json:"risk_mitigation_plans"`
	SummaryComment     string           `json:"summary_comment"`
	AssessmentDate     string           `json:"assessment_date"`
	NextReviewDate     string           `json:"next_review_date"`
	MonitoringSchedule string           `json:"monitoring_schedule"`
	Status             string           `json:"status"`
}

const seedPlanRows = 3

// NewFormState seeds a blank form from the catalog. Inactive factors are
// skipped.
func NewFormState(meta *catalog.Metadata) *FormState {
	f := &FormState{Status: StatusInProgress}
	for _, sec := range meta.Sections {
		if sec.SectionKey == "summary" {
			continue
		}
		fs := &FormSection{Key: sec.SectionKey, Title: sec.SectionTitle}
		for _, factor := range meta.SectionFactors(sec.ID) {
			fs.Rows = append(fs.Rows, &FormRow{
				RiskFactorID: factor.ID,
				FactorText:   factor.Text,
			})
		}
		f.Sections = append(f.Sections, fs)
	}
	for i := 0; i < seedPlanRows; i++ {
		f.Plans = append(f.Plans, MitigationPlan{Status: "Pending", PriorityLevel: "High"})
	}
	return f
}

// Section returns the section with the given key, or nil.
func (f *FormState) Section(key string) *FormSection {
	for _, s := range f.Sections {
		if s.Key == key {
			return s
		}
	}
	return nil
}

// Hydrate overlays a persisted snapshot onto the form. Scores are matched
// by risk factor id first, then by case-insensitive factor text; catalog
// factors without a persisted score stay blank and are never dropped.
func (f *FormState) Hydrate(complete *Complete, meta *catalog.Metadata) {
	if complete == nil || complete.Assessment == nil {
		return
	}
	a := complete.Assessment
	f.AssessmentDate = a.AssessmentDate
	if a.NextReviewDate != nil {
		f.NextReviewDate = *a.NextReviewDate
	}
	f.MonitoringSchedule = a.MonitoringSchedule
	if a.Status != "" {
		f.Status = a.Status
	} else {
		f.Status = StatusPendingReview
	}

	factorText := map[uuid.UUID]string{}
	for _, factor := range meta.RiskFactors {
		factorText[factor.ID] = factor.Text
	}

	for _, rs := range complete.RiskScores {
		row := f.findRow(rs.RiskFactorID, factorText[rs.RiskFactorID])
		if row == nil {
			continue
		}
		if rs.Severity > 0 {
			row.Severity = strconv.Itoa(rs.Severity)
		}
		if rs.Likelihood > 0 {
			row.Likelihood = strconv.Itoa(rs.Likelihood)
		}
		if rs.MitigationActions != nil {
			row.Mitigation = *rs.MitigationActions
		}
		if rs.CustomNotes != nil {
			row.CustomNotes = *rs.CustomNotes
		}
	}

	for _, sc := range complete.SectionComments {
		if sec := f.Section(sc.SectionKey); sec != nil {
			sec.Comment = sc.CommentText
		}
	}

	if len(complete.MitigationPlans) > 0 {
		f.Plans = nil
		for _, p := range complete.MitigationPlans {
			f.Plans = append(f.Plans, *p)
		}
		for len(f.Plans) < seedPlanRows {
			f.Plans = append(f.Plans, MitigationPlan{Status: "Pending", PriorityLevel: "High"})
		}
	}

	for _, sc := range complete.SummaryComments {
		f.SummaryComment = sc.CommentText
		break
	}
}

// findRow locates a form row by factor id, falling back to case-insensitive
// text match for snapshots written before factor ids were stable.
func (f *FormState) findRow(factorID uuid.UUID, text string) *FormRow {
	for _, sec := range f.Sections {
		for _, row := range sec.Rows {
			if row.RiskFactorID == factorID {
				return row
			}
		}
	}
	if text == "" {
		return nil
	}
	for _, sec := range f.Sections {
		for _, row := range sec.Rows {
			if strings.EqualFold(row.FactorText, text) {
				return row
			}
		}
	}
	return nil
}

// SetScore writes one cell of the form. Severity and likelihood input is
// sanitized (digits only, clamped to 1..3, empty allowed); mitigation and
// notes are taken verbatim.
func (f *FormState) SetScore(sectionKey string, row int, field, raw string) error {
	sec := f.Section(sectionKey)
	if sec == nil {
		return fmt.Errorf("unknown section: %s", sectionKey)
	}
	if row < 0 || row >= len(sec.Rows) {
		return fmt.Errorf("row %d out of range for section %s", row, sectionKey)
	}
	r := sec.Rows[row]
	switch field {
	case "severity":
		r.Severity = SanitizeScoreInput(raw)
	case "likelihood":
		r.Likelihood = SanitizeScoreInput(raw)
	case "mitigation":
		r.Mitigation = raw
	case "custom_notes":
		r.CustomNotes = raw
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

// riskScoreInputs flattens the scored rows into save-request entries.
// Partially scored rows are skipped, matching the scoring rule that both
// inputs must be present.
func (f *FormState) riskScoreInputs() []RiskScoreInput {
	var out []RiskScoreInput
	for _, sec := range f.Sections {
		for _, row := range sec.Rows {
			if !row.Scored() {
				continue
			}
			severity, _ := strconv.Atoi(row.Severity)
			likelihood, _ := strconv.Atoi(row.Likelihood)
			score := Score(severity, likelihood)
			out = append(out, RiskScoreInput{
				RiskFactorID:      row.RiskFactorID,
				Severity:          severity,
				Likelihood:        likelihood,
				RiskScore:         score,
				RiskLevel:         ItemLevel(score),
				MitigationActions: row.Mitigation,
				CustomNotes:       row.CustomNotes,
			})
		}
	}
	return out
}

// plansWithData filters out blank mitigation plan rows.
func (f *FormState) plansWithData() []MitigationPlanInput {
	var out []MitigationPlanInput
	for _, p := range f.Plans {
		if !p.HasData() {
			continue
		}
		out = append(out, MitigationPlanInput{
			RiskItem:           p.RiskItem,
			ResponsiblePerson:  p.ResponsiblePerson,
			MitigationStrategy: p.MitigationStrategy,
			TargetDate:         p.TargetDate,
			Status:             p.Status,
			PriorityLevel:      p.PriorityLevel,
		})
	}
	return out
}
