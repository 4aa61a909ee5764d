package assessment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/flourish/riskassess/internal/domain/catalog"
)

// ValidationError carries the exact list of unscored factors so callers can
// show the user what to fill in.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "Please fill in all Severity and Likelihood scores before proceeding.\n\nMissing scores:\n" +
		strings.Join(e.Missing, "\n")
}

// Stepper walks the assessment form section by section and gates the final
// submission. The terminal step is the summary.
type Stepper struct {
	Form    *FormState
	Steps   []catalog.Step
	Current int
}

func NewStepper(form *FormState) *Stepper {
	return &Stepper{Form: form, Steps: catalog.Steps()}
}

// CurrentStep returns the active step.
func (s *Stepper) CurrentStep() catalog.Step {
	return s.Steps[s.Current]
}

// OnSummary reports whether the stepper has reached the terminal step.
func (s *Stepper) OnSummary() bool {
	return s.CurrentStep().Key == "summary"
}

// Advance validates the current section and moves to the next step. It
// fails with the unscored factor labels of the CURRENT section, or when the
// section has no data at all. Advancing off the last section IS the
// submission: the whole form is validated and the assembled save request is
// returned alongside the move to the summary step. Intermediate advances
// return a nil request. The form is left untouched on failure.
func (s *Stepper) Advance(studyID uuid.UUID) (*SaveRequest, error) {
	if s.OnSummary() {
		return nil, fmt.Errorf("already at summary")
	}
	sec := s.Form.Section(s.CurrentStep().Key)
	if sec == nil {
		return nil, fmt.Errorf("unknown section: %s", s.CurrentStep().Key)
	}
	var missing []string
	hasData := false
	for i, row := range sec.Rows {
		if row.HasData() {
			hasData = true
		}
		if !row.Scored() {
			missing = append(missing, fmt.Sprintf("%s (Row %d)", row.FactorText, i+1))
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}
	if !hasData {
		return nil, fmt.Errorf("Please enter at least one risk assessment before proceeding.")
	}
	if s.Steps[s.Current+1].Key == "summary" {
		req, err := s.Submit(studyID)
		if err != nil {
			return nil, err
		}
		s.Current++
		return req, nil
	}
	s.Current++
	return nil, nil
}

// Submit validates the whole form and packages one atomic save request.
// Unscored factors are reported as "<section key> - <factor> (Row N)" across
// all sections; at least one mitigation plan row must carry data. State is
// left intact on failure so the user can fix and resubmit.
func (s *Stepper) Submit(studyID uuid.UUID) (*SaveRequest, error) {
	var missing []string
	for _, sec := range s.Form.Sections {
		for i, row := range sec.Rows {
			if !row.Scored() {
				missing = append(missing, fmt.Sprintf("%s - %s (Row %d)", sec.Key, row.FactorText, i+1))
			}
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}
	plans := s.Form.plansWithData()
	if len(plans) == 0 {
		return nil, fmt.Errorf("Please fill in at least one Risk Mitigation Plan before saving the assessment.")
	}

	scores := s.Form.riskScoreInputs()
	dashboard := ComputeDashboard(scores)

	req := &SaveRequest{
		StudyID:            studyID,
		AssessmentDate:     s.Form.AssessmentDate,
		MonitoringSchedule: s.Form.MonitoringSchedule,
		OverallRiskScore:   intPtr(dashboard.TotalScore),
		OverallRiskLevel:   strPtr(dashboard.OverallRiskLevel),
		Submit:             true,
		RiskScores:         scores,
		MitigationPlans:    plans,
		Dashboard:          &dashboard,
	}
	if s.Form.NextReviewDate != "" {
		req.NextReviewDate = strPtr(s.Form.NextReviewDate)
	}
	for _, sec := range s.Form.Sections {
		if trimmed(sec.Comment) == "" {
			continue
		}
		req.SectionComments = append(req.SectionComments, SectionCommentInput{
			SectionKey:   sec.Key,
			SectionTitle: sec.Title,
			CommentText:  sec.Comment,
		})
	}
	if trimmed(s.Form.SummaryComment) != "" {
		req.SummaryComments = append(req.SummaryComments, SummaryCommentInput{
			CommentType: "General",
			CommentText: s.Form.SummaryComment,
		})
	}
	return req, nil
}

// unscoredFactors lists every active catalog factor without a score entry,
// labeled the way Submit reports them. The save path runs submissions
// through this so a partial payload cannot reach review.
func unscoredFactors(meta *catalog.Metadata, scores []RiskScoreInput) []string {
	scored := map[uuid.UUID]bool{}
	for _, in := range scores {
		scored[in.RiskFactorID] = true
	}
	var missing []string
	for _, sec := range meta.Sections {
		for i, f := range meta.SectionFactors(sec.ID) {
			if !scored[f.ID] {
				missing = append(missing, fmt.Sprintf("%s - %s (Row %d)", sec.SectionKey, f.Text, i+1))
			}
		}
	}
	return missing
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
