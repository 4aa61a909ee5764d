package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Section maps to the assessment_section table. Sections are the ordered
// groups of the risk questionnaire (regulatory, data-quality, ...).
type Section struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SectionKey   string    `db:"section_key" json:"section_key"`
	SectionTitle string    `db:"section_title" json:"section_title"`
	SortOrder    int       `db:"sort_order" json:"sort_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RiskFactor maps to the risk_factor table. A factor belongs to exactly one
// section and is identified to users by its code (REG001, DAT004, ...).
type RiskFactor struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SectionID   uuid.UUID `db:"assessment_section_id" json:"assessment_section_id"`
	Text        string    `db:"risk_factor_text" json:"risk_factor_text"`
	Code        string    `db:"risk_factor_code" json:"risk_factor_code"`
	Description string    `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Metadata is the questionnaire definition served to clients: every section
// plus every risk factor, both in catalog order.
type Metadata struct {
	Sections    []*Section    `json:"assessment_sections"`
	RiskFactors []*RiskFactor `json:"risk_factors"`
}

// SectionFactors returns the active factors of one section in sort order.
func (m *Metadata) SectionFactors(sectionID uuid.UUID) []*RiskFactor {
	var out []*RiskFactor
	for _, f := range m.RiskFactors {
		if f.SectionID == sectionID && f.IsActive {
			out = append(out, f)
		}
	}
	return out
}

// SectionByKey returns the section with the given key, or nil.
func (m *Metadata) SectionByKey(key string) *Section {
	for _, s := range m.Sections {
		if s.SectionKey == key {
			return s
		}
	}
	return nil
}

// Step is one stop of the assessment workflow stepper.
type Step struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// FactorCode derives a factor code from its section key and the factor's
// position in the whole catalog: first three letters of the key uppercased
// plus the zero-padded sequence number ("regulatory", 1 -> "REG001").
func FactorCode(sectionKey string, seq int) string {
	prefix := sectionKey
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s%03d", strings.ToUpper(prefix), seq)
}
