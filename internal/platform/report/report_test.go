package report

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/flourish/riskassess/internal/domain/assessment"
	"github.com/flourish/riskassess/internal/domain/catalog"
	"github.com/flourish/riskassess/internal/domain/study"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func fixture() (*study.Study, *assessment.Complete, *catalog.Metadata) {
	meta := catalog.Fallback()
	sd := "Dr. Sarah Johnson"
	st := &study.Study{
		ID:                    uuid.New(),
		Site:                  "Flourish San Antonio",
		Sponsor:               "CinFina Pharma",
		Protocol:              "CIN-110-112",
		StudyTypeText:         "Interventional",
		PrincipalInvestigator: "Dr. John Smith",
		SiteDirector:          &sd,
	}
	c := &assessment.Complete{
		Assessment: &assessment.Assessment{
			ID:                 uuid.New(),
			StudyID:            st.ID,
			ConductedByName:    "Dr. John Smith",
			AssessmentDate:     "2025-07-23",
			MonitoringSchedule: "Quarterly review",
			Status:             "Pending Review",
			OverallRiskScore:   intPtr(13),
			OverallRiskLevel:   strPtr("Medium"),
		},
		RiskScores: []*assessment.RiskScore{
			{
				RiskFactorID:      meta.RiskFactors[0].ID,
				Severity:          3,
				Likelihood:        3,
				RiskScore:         9,
				RiskLevel:         "High",
				MitigationActions: strPtr("escalate to sponsor"),
			},
			{
				RiskFactorID: meta.RiskFactors[3].ID,
				Severity:     2,
				Likelihood:   2,
				RiskScore:    4,
				RiskLevel:    "Medium",
			},
		},
		MitigationPlans: []*assessment.MitigationPlan{
			{RiskItem: "staff turnover", ResponsiblePerson: "SD", MitigationStrategy: "cross-train", Status: "Pending", PriorityLevel: "High"},
		},
		Dashboard: &assessment.Dashboard{
			TotalRisks: 2, HighRiskCount: 1, MediumRiskCount: 1,
			TotalScore: 13, OverallRiskLevel: "Medium",
			RiskLevelCriteria: assessment.CriteriaMedium,
		},
		SummaryComments: []*assessment.SummaryComment{
			{CommentType: "General", CommentText: "overall manageable", CreatedByName: "Dr. John Smith"},
		},
		SectionComments: []*assessment.SectionComment{
			{SectionKey: "regulatory", SectionTitle: "1. Regulatory & Compliance Risks", CommentText: "watch IRB dates"},
		},
	}
	return st, c, meta
}

func TestRenderer_Render(t *testing.T) {
	st, c, meta := fixture()
	pdf, err := NewRenderer().Render(st, c, meta)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
	if len(pdf) < 1000 {
		t.Errorf("document suspiciously small: %d bytes", len(pdf))
	}
}

func TestRenderer_Render_EmptySnapshot(t *testing.T) {
	st, _, meta := fixture()
	if _, err := NewRenderer().Render(st, nil, meta); err == nil {
		t.Error("expected error for empty snapshot")
	}
	if _, err := NewRenderer().Render(st, &assessment.Complete{}, meta); err == nil {
		t.Error("expected error for snapshot without assessment")
	}
}

func TestRenderer_Render_NoOptionalBlocks(t *testing.T) {
	st, c, meta := fixture()
	c.MitigationPlans = nil
	c.SummaryComments = nil
	c.SectionComments = nil
	c.Dashboard = nil
	pdf, err := NewRenderer().Render(st, c, meta)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 80); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	got := truncate(string(long), 80)
	if len(got) != 80 || got[77:] != "..." {
		t.Errorf("truncate length = %d, tail = %q", len(got), got[70:])
	}

	// Multi-byte factor text must not be cut mid-rune.
	accented := strings.Repeat("é", 50)
	got = truncate(accented, 10)
	if !utf8.ValidString(got) {
		t.Errorf("truncate split a rune: %q", got)
	}
	if got != strings.Repeat("é", 7)+"..." {
		t.Errorf("truncate = %q", got)
	}
}
