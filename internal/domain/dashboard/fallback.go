package dashboard

// Static fallbacks shown when the database is unreachable or empty. The
// numbers mirror the demo data the dashboard shipped with, so a fresh
// install renders a populated screen instead of zeros.

// FallbackStats returns the demo headline counts.
func FallbackStats(userType, userEmail string) *Stats {
	return &Stats{
		TotalActiveSites:         4,
		TotalActiveStudies:       50,
		TotalAssessedStudies:     25,
		TotalApprovedAssessments: 15,
		TotalRejectedAssessments: 5,
		TotalReviewsPending:      5,
		UserType:                 userType,
		UserEmail:                userEmail,
	}
}

// barColors cycles through the chart palette in rank order.
var barColors = []string{"#7c6ee6", "#4ed6fa", "#ffb43a", "#ff6b81"}

// FallbackBarChart returns the demo top-studies chart.
func FallbackBarChart() *BarChart {
	return &BarChart{
		BarChartData: []BarDatum{
			{Name: "Sponsor Protocol 1", Value: 25, Color: barColors[0]},
			{Name: "Sponsor Protocol 2", Value: 38, Color: barColors[1]},
			{Name: "Sponsor Protocol 3", Value: 55, Color: barColors[2]},
			{Name: "Sponsor Protocol 4", Value: 20, Color: barColors[3]},
		},
		TotalStudies: 4,
	}
}

// FallbackRiskTable returns the demo assessed-studies rows.
func FallbackRiskTable() []*RiskTableRow {
	return []*RiskTableRow{
		{
			Site:                  "Flourish Boca Ration",
			Sponsor:               "Boehringer Ingelrim",
			Protocol:              "14-4-0056",
			AssessmentID:          "81",
			PrincipalInvestigator: "Dr. John Smith",
			SiteDirector:          "Dr. Sarah Johnson",
			Risks:                 17,
			RiskLevel:             "Medium",
		},
		{
			Site:                  "Flourish San Antonio",
			Sponsor:               "CinFina Pharma",
			Protocol:              "CIN-110-112",
			AssessmentID:          "82",
			PrincipalInvestigator: "Dr. Maria Garcia",
			SiteDirector:          "Dr. Robert Chen",
			Risks:                 24,
			RiskLevel:             "Medium",
		},
		{
			Site:                  "Flourish Orlando",
			Sponsor:               "AstraZeneca",
			Protocol:              "D7650C000001",
			AssessmentID:          "83",
			PrincipalInvestigator: "Dr. Lisa Brown",
			SiteDirector:          "Dr. Michael Wilson",
			Risks:                 32,
			RiskLevel:             "High",
		},
	}
}

// FallbackFilterValues returns the demo filter dropdowns.
func FallbackFilterValues() *FilterValues {
	return &FilterValues{
		Sites:     []string{"Flourish Boca Ration", "Flourish San Antonio", "Flourish Orlando", "Flourish Miami"},
		Sponsors:  []string{"Boehringer Ingelrim", "CinFina Pharma", "AstraZeneca", "Pfizer"},
		Protocols: []string{"14-4-0056", "CIN-110-112", "D7650C000001", "PF-2024-001"},
	}
}

// FallbackRiskTablePage returns the demo rows in the paginated envelope.
func FallbackRiskTablePage(pageSize int) *RiskTablePage {
	rows := FallbackRiskTable()
	return &RiskTablePage{
		RiskTableData: rows,
		TotalStudies:  len(rows),
		TotalPages:    1,
		CurrentPage:   1,
		PageSize:      pageSize,
	}
}
