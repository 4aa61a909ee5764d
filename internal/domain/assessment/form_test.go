package assessment

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/flourish/riskassess/internal/domain/catalog"
)

// ── NewFormState ──

func TestNewFormState_SeedsAllFactors(t *testing.T) {
	meta := catalog.Fallback()
	f := NewFormState(meta)
	if len(f.Sections) != 5 {
		t.Fatalf("sections = %d, want 5", len(f.Sections))
	}
	total := 0
	for _, sec := range f.Sections {
		total += len(sec.Rows)
		for _, row := range sec.Rows {
			if row.Severity != "" || row.Likelihood != "" {
				t.Errorf("row %q seeded with scores", row.FactorText)
			}
		}
	}
	if total != 17 {
		t.Errorf("rows = %d, want 17", total)
	}
	if f.Status != StatusInProgress {
		t.Errorf("status = %q, want %q", f.Status, StatusInProgress)
	}
}

func TestNewFormState_SeedsThreePlanRows(t *testing.T) {
	f := NewFormState(catalog.Fallback())
	if len(f.Plans) != 3 {
		t.Fatalf("plans = %d, want 3", len(f.Plans))
	}
	for i, p := range f.Plans {
		if p.Status != "Pending" || p.PriorityLevel != "High" {
			t.Errorf("plan %d = %q/%q, want Pending/High", i, p.Status, p.PriorityLevel)
		}
	}
}

// ── SetScore ──

func TestFormState_SetScore_Sanitizes(t *testing.T) {
	f := NewFormState(catalog.Fallback())
	if err := f.SetScore("regulatory", 0, "severity", "9"); err != nil {
		t.Fatal(err)
	}
	if got := f.Sections[0].Rows[0].Severity; got != "3" {
		t.Errorf("severity = %q, want 3", got)
	}
	if err := f.SetScore("regulatory", 0, "likelihood", "abc"); err != nil {
		t.Fatal(err)
	}
	if got := f.Sections[0].Rows[0].Likelihood; got != "" {
		t.Errorf("likelihood = %q, want empty", got)
	}
}

func TestFormState_SetScore_UnknownSection(t *testing.T) {
	f := NewFormState(catalog.Fallback())
	if err := f.SetScore("nope", 0, "severity", "2"); err == nil {
		t.Error("expected error for unknown section")
	}
	if err := f.SetScore("regulatory", 99, "severity", "2"); err == nil {
		t.Error("expected error for row out of range")
	}
}

// ── Hydrate ──

func TestFormState_Hydrate_RoundTrip(t *testing.T) {
	meta := catalog.Fallback()
	f := NewFormState(meta)
	factor := meta.RiskFactors[0]

	complete := &Complete{
		Assessment: &Assessment{
			AssessmentDate:     "2025-07-23",
			MonitoringSchedule: "Quarterly review",
			Status:             StatusPendingReview,
		},
		RiskScores: []*RiskScore{
			{RiskFactorID: factor.ID, Severity: 2, Likelihood: 3, MitigationActions: strPtr("extra training")},
		},
		SectionComments: []*SectionComment{
			{SectionKey: "regulatory", CommentText: "watch the IRB dates"},
		},
	}
	f.Hydrate(complete, meta)

	row := f.Sections[0].Rows[0]
	if row.Severity != "2" || row.Likelihood != "3" {
		t.Errorf("row = %q/%q, want 2/3", row.Severity, row.Likelihood)
	}
	if row.Mitigation != "extra training" {
		t.Errorf("mitigation = %q", row.Mitigation)
	}
	if f.Sections[0].Comment != "watch the IRB dates" {
		t.Errorf("section comment = %q", f.Sections[0].Comment)
	}
	if f.AssessmentDate != "2025-07-23" || f.Status != StatusPendingReview {
		t.Errorf("metadata not hydrated: %q %q", f.AssessmentDate, f.Status)
	}
}

func TestFormState_Hydrate_UnknownFactorStaysBlank(t *testing.T) {
	meta := catalog.Fallback()
	f := NewFormState(meta)
	complete := &Complete{
		Assessment: &Assessment{AssessmentDate: "2025-07-23"},
		RiskScores: []*RiskScore{
			{RiskFactorID: uuid.New(), Severity: 3, Likelihood: 3},
		},
	}
	f.Hydrate(complete, meta)
	for _, sec := range f.Sections {
		for _, row := range sec.Rows {
			if row.Severity != "" {
				t.Fatalf("row %q picked up unknown factor score", row.FactorText)
			}
		}
	}
}

func TestFormState_Hydrate_TextFallbackMatch(t *testing.T) {
	meta := catalog.Fallback()
	f := NewFormState(meta)
	factor := meta.RiskFactors[0]

	// Old id, same text in a different case.
	oldMeta := *meta
	oldFactor := *factor
	oldFactor.ID = uuid.New()
	oldFactor.Text = strings.ToUpper(factor.Text)
	oldMeta.RiskFactors = append([]*catalog.RiskFactor{&oldFactor}, meta.RiskFactors[1:]...)

	complete := &Complete{
		Assessment: &Assessment{AssessmentDate: "2025-07-23"},
		RiskScores: []*RiskScore{
			{RiskFactorID: oldFactor.ID, Severity: 1, Likelihood: 2},
		},
	}
	f.Hydrate(complete, &oldMeta)
	row := f.Sections[0].Rows[0]
	if row.Severity != "1" || row.Likelihood != "2" {
		t.Errorf("text fallback match failed: %q/%q", row.Severity, row.Likelihood)
	}
}

func TestFormState_Hydrate_PadsPlansToThree(t *testing.T) {
	meta := catalog.Fallback()
	f := NewFormState(meta)
	complete := &Complete{
		Assessment: &Assessment{AssessmentDate: "2025-07-23"},
		MitigationPlans: []*MitigationPlan{
			{RiskItem: "protocol deviations", ResponsiblePerson: "CRC", MitigationStrategy: "retrain"},
		},
	}
	f.Hydrate(complete, meta)
	if len(f.Plans) != 3 {
		t.Fatalf("plans = %d, want 3", len(f.Plans))
	}
	if f.Plans[0].RiskItem != "protocol deviations" {
		t.Errorf("plan 0 = %q", f.Plans[0].RiskItem)
	}
	if f.Plans[1].Status != "Pending" || f.Plans[2].PriorityLevel != "High" {
		t.Error("padding rows missing defaults")
	}
}

func TestFormState_Hydrate_EmptyStatusDefaultsPending(t *testing.T) {
	meta := catalog.Fallback()
	f := NewFormState(meta)
	f.Hydrate(&Complete{Assessment: &Assessment{AssessmentDate: "2025-07-23"}}, meta)
	if f.Status != StatusPendingReview {
		t.Errorf("status = %q, want %q", f.Status, StatusPendingReview)
	}
}
