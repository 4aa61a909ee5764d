package catalog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// The built-in catalog mirrors the questionnaire the service ships with.
// It is served whenever the store is unavailable so assessments can always
// be started.
var builtinSections = []struct {
	key     string
	title   string
	factors []string
}{
	{"regulatory", "1. Regulatory & Compliance Risks", []string{
		"Non-Compliance with GCP Guidelines",
		"Inadequate informed-consent process",
		"Protocol deviations",
	}},
	{"data-quality", "2. Data Quality & Management Risks", []string{
		"Incomplete or missing data",
		"Data-entry errors",
		"System downtime/technical failures",
	}},
	{"patient-safety", "3. Patient Safety & Recruitment Risks", []string{
		"Adverse event under-reporting",
		"Low patient recruitment/retention",
		"Inadequate safety monitoring",
	}},
	{"compliance", "4. Patient Compliance & Recruitment Risks", []string{
		"Poor adherence to visit schedule",
		"High patient dropout/withdrawal rates",
		"Non-compliance with study procedures",
		"Inadequate patient follow-up tracking",
		"Transportation/accessibility barriers",
	}},
	{"site-operations", "5. Site Operations & Resource Risks", []string{
		"Insufficient staff training",
		"Key personnel turnover",
		"Resource availability constraints",
	}},
}

var (
	fallbackOnce sync.Once
	fallbackMeta *Metadata
)

// Fallback returns the built-in catalog. IDs are derived from the section
// keys and factor codes so they are stable across calls and processes.
func Fallback() *Metadata {
	fallbackOnce.Do(func() {
		now := time.Now().UTC()
		m := &Metadata{}
		seq := 1
		for i, bs := range builtinSections {
			sec := &Section{
				ID:           stableID("section/" + bs.key),
				SectionKey:   bs.key,
				SectionTitle: bs.title,
				SortOrder:    i + 1,
				CreatedAt:    now,
			}
			m.Sections = append(m.Sections, sec)
			for j, text := range bs.factors {
				code := FactorCode(bs.key, seq)
				m.RiskFactors = append(m.RiskFactors, &RiskFactor{
					ID:          stableID("factor/" + code),
					SectionID:   sec.ID,
					Text:        text,
					Code:        code,
					Description: text,
					IsActive:    true,
					SortOrder:   j + 1,
					CreatedAt:   now,
				})
				seq++
			}
		}
		fallbackMeta = m
	})
	return fallbackMeta
}

func stableID(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("riskassess/catalog/"+name))
}

// MonitoringOptions are the schedules an assessment can be filed under.
func MonitoringOptions() []string {
	return []string{
		"Initial assessment",
		"Quarterly review",
		"Amendment review",
		"Final assessment",
	}
}

// Steps returns the workflow stepper definition: one step per section in
// catalog order plus the terminal summary step.
func Steps() []Step {
	return []Step{
		{Key: "regulatory", Label: "Regulatory"},
		{Key: "data-quality", Label: "Data Quality"},
		{Key: "patient-safety", Label: "Patient Safety"},
		{Key: "compliance", Label: "Compliance"},
		{Key: "site-operations", Label: "Site Operations"},
		{Key: "summary", Label: "Summary"},
	}
}
