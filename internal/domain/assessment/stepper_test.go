package assessment

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/flourish/riskassess/internal/domain/catalog"
)

func scoredForm(t *testing.T) *FormState {
	t.Helper()
	f := NewFormState(catalog.Fallback())
	for _, sec := range f.Sections {
		for _, row := range sec.Rows {
			row.Severity = "2"
			row.Likelihood = "2"
		}
	}
	f.AssessmentDate = "2025-07-23"
	f.MonitoringSchedule = "Quarterly review"
	return f
}

// ── Advance ──

func TestStepper_Advance_MissingScores(t *testing.T) {
	f := NewFormState(catalog.Fallback())
	f.Sections[0].Rows[0].Severity = "2" // partial row
	s := NewStepper(f)

	_, err := s.Advance(uuid.New())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Missing) != len(f.Sections[0].Rows) {
		t.Errorf("missing = %d, want %d", len(ve.Missing), len(f.Sections[0].Rows))
	}
	wantFirst := f.Sections[0].Rows[0].FactorText + " (Row 1)"
	if ve.Missing[0] != wantFirst {
		t.Errorf("missing[0] = %q, want %q", ve.Missing[0], wantFirst)
	}
	if !strings.HasPrefix(err.Error(), "Please fill in all Severity and Likelihood scores before proceeding.\n\nMissing scores:\n") {
		t.Errorf("error prefix wrong: %q", err.Error())
	}
	if s.Current != 0 {
		t.Errorf("stepper advanced on failure: %d", s.Current)
	}
}

func TestStepper_Advance_WalksToSummary(t *testing.T) {
	f := scoredForm(t)
	f.Plans[0].RiskItem = "staff turnover"
	f.Plans[0].ResponsiblePerson = "Site Director"
	f.Plans[0].MitigationStrategy = "cross-train staff"
	s := NewStepper(f)
	studyID := uuid.New()

	for i := 0; i < 4; i++ {
		req, err := s.Advance(studyID)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if req != nil {
			t.Fatalf("advance %d built a save request before the final section", i)
		}
	}
	// Leaving the last section is the submission itself.
	req, err := s.Advance(studyID)
	if err != nil {
		t.Fatal(err)
	}
	if req == nil || !req.Submit || req.StudyID != studyID {
		t.Fatalf("final advance did not build the submission: %+v", req)
	}
	if len(req.RiskScores) != 17 {
		t.Errorf("risk scores = %d, want 17", len(req.RiskScores))
	}
	if !s.OnSummary() {
		t.Errorf("expected summary, at %q", s.CurrentStep().Key)
	}
	if _, err := s.Advance(studyID); err == nil {
		t.Error("expected error advancing past summary")
	}
}

func TestStepper_Advance_FinalSectionRequiresPlan(t *testing.T) {
	s := NewStepper(scoredForm(t))
	studyID := uuid.New()
	for i := 0; i < 4; i++ {
		if _, err := s.Advance(studyID); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	if _, err := s.Advance(studyID); err == nil || !strings.Contains(err.Error(), "Risk Mitigation Plan") {
		t.Fatalf("expected plan error, got %v", err)
	}
	if s.OnSummary() {
		t.Error("reached summary without a submission")
	}
	if s.CurrentStep().Key != "site-operations" {
		t.Errorf("stepper moved on failed submission: %q", s.CurrentStep().Key)
	}
}

// ── Submit ──

func TestStepper_Submit_MissingScoresAcrossSections(t *testing.T) {
	f := scoredForm(t)
	f.Sections[2].Rows[1].Likelihood = ""
	s := NewStepper(f)

	_, err := s.Submit(uuid.New())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := f.Sections[2].Key + " - " + f.Sections[2].Rows[1].FactorText + " (Row 2)"
	if len(ve.Missing) != 1 || ve.Missing[0] != want {
		t.Errorf("missing = %v, want [%q]", ve.Missing, want)
	}
}

func TestStepper_Submit_RequiresMitigationPlan(t *testing.T) {
	s := NewStepper(scoredForm(t))
	_, err := s.Submit(uuid.New())
	if err == nil || !strings.Contains(err.Error(), "Risk Mitigation Plan") {
		t.Fatalf("expected plan error, got %v", err)
	}
}

func TestStepper_Submit_BuildsRequest(t *testing.T) {
	f := scoredForm(t)
	f.Plans[0].RiskItem = "site turnover"
	f.Plans[0].ResponsiblePerson = "Site Director"
	f.Plans[0].MitigationStrategy = "cross-train staff"
	f.Sections[0].Comment = "regulatory looks stable"
	f.SummaryComment = "overall manageable"
	studyID := uuid.New()

	req, err := NewStepper(f).Submit(studyID)
	if err != nil {
		t.Fatal(err)
	}
	if !req.Submit || req.StudyID != studyID {
		t.Error("request metadata wrong")
	}
	if len(req.RiskScores) != 17 {
		t.Errorf("risk scores = %d, want 17", len(req.RiskScores))
	}
	// 17 factors at 2x2 = 68 total, all Medium
	if req.Dashboard.TotalScore != 68 || req.Dashboard.OverallRiskLevel != LevelHigh {
		t.Errorf("dashboard = %d/%q", req.Dashboard.TotalScore, req.Dashboard.OverallRiskLevel)
	}
	if len(req.MitigationPlans) != 1 {
		t.Errorf("plans = %d, want 1 (blank rows dropped)", len(req.MitigationPlans))
	}
	if len(req.SectionComments) != 1 || req.SectionComments[0].SectionTitle != f.Sections[0].Title {
		t.Errorf("section comments = %+v", req.SectionComments)
	}
	if len(req.SummaryComments) != 1 || req.SummaryComments[0].CommentType != "General" {
		t.Errorf("summary comments = %+v", req.SummaryComments)
	}
}

func TestStepper_Submit_StateIntactOnFailure(t *testing.T) {
	f := scoredForm(t)
	f.Sections[4].Rows[0].Severity = ""
	s := NewStepper(f)
	if _, err := s.Submit(uuid.New()); err == nil {
		t.Fatal("expected validation error")
	}
	if f.Sections[0].Rows[0].Severity != "2" {
		t.Error("form mutated on failed submit")
	}
}
