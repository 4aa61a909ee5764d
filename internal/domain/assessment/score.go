package assessment

import (
	"strconv"
	"strings"
)

// Risk levels for individual factors and the overall assessment.
const (
	LevelLow    = "Low"
	LevelMedium = "Medium"
	LevelHigh   = "High"
)

// Overall risk level criteria strings, persisted with the dashboard.
const (
	CriteriaLow    = "Low Risk (Total Score <=15, No High-Risk items)"
	CriteriaMedium = "Medium Risk (Total Score 16-30, <3 High-Risk items)"
	CriteriaHigh   = "High Risk (Total Score >30, >=3 High-Risk items)"
)

// Score multiplies severity by likelihood. Both must be scored (1..3);
// an absent input yields no score.
func Score(severity, likelihood int) int {
	if severity <= 0 || likelihood <= 0 {
		return 0
	}
	return severity * likelihood
}

// ItemLevel maps a factor score to its tier. Unscored factors get "-".
func ItemLevel(score int) string {
	switch {
	case score >= 7:
		return LevelHigh
	case score >= 4:
		return LevelMedium
	case score >= 1:
		return LevelLow
	default:
		return "-"
	}
}

// OverallLevel classifies the whole assessment. The thresholds differ from
// the per-item tiers on purpose: a single high-risk item forces the
// assessment out of Low regardless of total.
func OverallLevel(totalScore, highCount int) (level, criteria string) {
	switch {
	case totalScore <= 15 && highCount == 0:
		return LevelLow, CriteriaLow
	case totalScore <= 30 && highCount < 3:
		return LevelMedium, CriteriaMedium
	default:
		return LevelHigh, CriteriaHigh
	}
}

// SanitizeScoreInput normalizes raw severity/likelihood input: digits only,
// clamped to 1..3. Empty input stays empty (unscored).
func SanitizeScoreInput(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return ""
	}
	n, err := strconv.Atoi(clean)
	if err != nil {
		return ""
	}
	if n < 1 {
		n = 1
	}
	if n > 3 {
		n = 3
	}
	return strconv.Itoa(n)
}

// ComputeDashboard aggregates scored entries into the dashboard block.
// Only factors with both inputs present count.
func ComputeDashboard(scores []RiskScoreInput) DashboardInput {
	var d DashboardInput
	for _, rs := range scores {
		score := Score(rs.Severity, rs.Likelihood)
		if score == 0 {
			continue
		}
		d.TotalRisks++
		d.TotalScore += score
		switch ItemLevel(score) {
		case LevelHigh:
			d.HighRiskCount++
		case LevelMedium:
			d.MediumRiskCount++
		default:
			d.LowRiskCount++
		}
	}
	d.OverallRiskLevel, d.RiskLevelCriteria = OverallLevel(d.TotalScore, d.HighRiskCount)
	return d
}

func trimmed(s string) string { return strings.TrimSpace(s) }
