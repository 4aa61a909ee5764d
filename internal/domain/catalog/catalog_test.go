package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ── Mock Repository ──

type mockRepo struct {
	sections []*Section
	factors  []*RiskFactor
	fail     bool
}

func (m *mockRepo) ListSections(_ context.Context) ([]*Section, error) {
	if m.fail {
		return nil, fmt.Errorf("connection refused")
	}
	return m.sections, nil
}

func (m *mockRepo) ListRiskFactors(_ context.Context) ([]*RiskFactor, error) {
	if m.fail {
		return nil, fmt.Errorf("connection refused")
	}
	return m.factors, nil
}

// ── Fallback ──

func TestFallback_SectionOrder(t *testing.T) {
	m := Fallback()
	if len(m.Sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(m.Sections))
	}
	keys := []string{"regulatory", "data-quality", "patient-safety", "compliance", "site-operations"}
	for i, key := range keys {
		if m.Sections[i].SectionKey != key {
			t.Errorf("section %d: expected key %q, got %q", i, key, m.Sections[i].SectionKey)
		}
		if m.Sections[i].SortOrder != i+1 {
			t.Errorf("section %d: expected sort order %d, got %d", i, i+1, m.Sections[i].SortOrder)
		}
	}
	if m.Sections[0].SectionTitle != "1. Regulatory & Compliance Risks" {
		t.Errorf("unexpected title: %s", m.Sections[0].SectionTitle)
	}
	if m.Sections[3].SectionTitle != "4. Patient Compliance & Recruitment Risks" {
		t.Errorf("unexpected title: %s", m.Sections[3].SectionTitle)
	}
}

func TestFallback_FactorCount(t *testing.T) {
	m := Fallback()
	if len(m.RiskFactors) != 17 {
		t.Fatalf("expected 17 risk factors, got %d", len(m.RiskFactors))
	}
	perSection := []int{3, 3, 3, 5, 3}
	for i, sec := range m.Sections {
		got := len(m.SectionFactors(sec.ID))
		if got != perSection[i] {
			t.Errorf("section %s: expected %d factors, got %d", sec.SectionKey, perSection[i], got)
		}
	}
}

func TestFallback_FactorCodes(t *testing.T) {
	m := Fallback()
	want := map[string]string{
		"Non-Compliance with GCP Guidelines":  "REG001",
		"Incomplete or missing data":          "DAT004",
		"Adverse event under-reporting":       "PAT007",
		"Poor adherence to visit schedule":    "COM010",
		"Transportation/accessibility barriers": "COM014",
		"Insufficient staff training":         "SIT015",
		"Resource availability constraints":   "SIT017",
	}
	byText := map[string]string{}
	for _, f := range m.RiskFactors {
		byText[f.Text] = f.Code
	}
	for text, code := range want {
		if byText[text] != code {
			t.Errorf("factor %q: expected code %s, got %s", text, code, byText[text])
		}
	}
}

func TestFallback_StableIDs(t *testing.T) {
	a := Fallback()
	b := Fallback()
	if a.Sections[0].ID != b.Sections[0].ID {
		t.Error("expected stable section IDs across calls")
	}
	if a.RiskFactors[0].ID != b.RiskFactors[0].ID {
		t.Error("expected stable factor IDs across calls")
	}
}

func TestFactorCode(t *testing.T) {
	cases := []struct {
		key  string
		seq  int
		want string
	}{
		{"regulatory", 1, "REG001"},
		{"data-quality", 4, "DAT004"},
		{"patient-safety", 7, "PAT007"},
		{"compliance", 10, "COM010"},
		{"site-operations", 17, "SIT017"},
		{"ab", 2, "AB002"},
	}
	for _, tc := range cases {
		if got := FactorCode(tc.key, tc.seq); got != tc.want {
			t.Errorf("FactorCode(%q, %d) = %s, want %s", tc.key, tc.seq, got, tc.want)
		}
	}
}

func TestMonitoringOptions(t *testing.T) {
	opts := MonitoringOptions()
	want := []string{"Initial assessment", "Quarterly review", "Amendment review", "Final assessment"}
	if len(opts) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(opts))
	}
	for i := range want {
		if opts[i] != want[i] {
			t.Errorf("option %d: expected %q, got %q", i, want[i], opts[i])
		}
	}
}

func TestSteps_EndsWithSummary(t *testing.T) {
	steps := Steps()
	if len(steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(steps))
	}
	if steps[len(steps)-1].Key != "summary" {
		t.Errorf("expected last step to be summary, got %s", steps[len(steps)-1].Key)
	}
	for i, sec := range Fallback().Sections {
		if steps[i].Key != sec.SectionKey {
			t.Errorf("step %d: expected key %s, got %s", i, sec.SectionKey, steps[i].Key)
		}
	}
}

// ── Service ──

func TestService_Metadata_FromRepo(t *testing.T) {
	fb := Fallback()
	repo := &mockRepo{sections: fb.Sections, factors: fb.RiskFactors}
	svc := NewService(repo, zerolog.Nop())
	m := svc.Metadata(context.Background())
	if len(m.Sections) != 5 || len(m.RiskFactors) != 17 {
		t.Errorf("expected repo catalog, got %d sections / %d factors", len(m.Sections), len(m.RiskFactors))
	}
}

func TestService_Metadata_FallbackOnError(t *testing.T) {
	svc := NewService(&mockRepo{fail: true}, zerolog.Nop())
	m := svc.Metadata(context.Background())
	if len(m.Sections) != 5 {
		t.Errorf("expected built-in catalog on repo failure, got %d sections", len(m.Sections))
	}
}

func TestService_Metadata_FallbackOnEmpty(t *testing.T) {
	svc := NewService(&mockRepo{}, zerolog.Nop())
	m := svc.Metadata(context.Background())
	if len(m.Sections) != 5 {
		t.Errorf("expected built-in catalog when store is empty, got %d sections", len(m.Sections))
	}
}

// ── Handler ──

func TestHandler_GetMetadata(t *testing.T) {
	svc := NewService(&mockRepo{fail: true}, zerolog.Nop())
	h := NewHandler(svc)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metadata", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.GetMetadata(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "assessment_sections") {
		t.Error("expected assessment_sections in response")
	}
	if !strings.Contains(rec.Body.String(), "REG001") {
		t.Error("expected factor codes in response")
	}
}

func TestHandler_GetMonitoringOptions(t *testing.T) {
	h := NewHandler(NewService(&mockRepo{}, zerolog.Nop()))
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/monitoring-options", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.GetMonitoringOptions(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Amendment review") {
		t.Error("expected monitoring options in response")
	}
}
