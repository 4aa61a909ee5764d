package dashboard

// Stats is the dashboard-stats response: headline counts scoped to the
// caller's role.
type Stats struct {
	TotalActiveSites          int    `json:"total_active_sites"`
	TotalActiveStudies        int    `json:"total_active_studies"`
	TotalAssessedStudies      int    `json:"total_assessed_studies"`
	TotalApprovedAssessments  int    `json:"total_approved_assessments"`
	TotalRejectedAssessments  int    `json:"total_rejected_assessments"`
	TotalReviewsPending       int    `json:"total_reviews_pending"`
	UserType                  string `json:"user_type"`
	UserEmail                 string `json:"user_email"`
}

// BarDatum is one bar of the top-studies risk chart.
type BarDatum struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// RiskTableRow is one row of the assessed-studies risk table.
type RiskTableRow struct {
	Site                  string `json:"site"`
	Sponsor               string `json:"sponsor"`
	Protocol              string `json:"protocol"`
	AssessmentID          string `json:"assessment_id"`
	PrincipalInvestigator string `json:"principal_investigator"`
	SiteDirector          string `json:"site_director"`
	Risks                 int    `json:"risks"`
	RiskLevel             string `json:"risk_level"`
}

// FilterValues feeds the risk table filter dropdowns.
type FilterValues struct {
	Sites     []string `json:"sites"`
	Sponsors  []string `json:"sponsors"`
	Protocols []string `json:"protocols"`
}

// RiskTablePage is the all-assessed-studies response envelope.
type RiskTablePage struct {
	RiskTableData []*RiskTableRow `json:"riskTableData"`
	TotalStudies  int             `json:"totalStudies"`
	TotalPages    int             `json:"totalPages"`
	CurrentPage   int             `json:"currentPage"`
	PageSize      int             `json:"pageSize"`
}

// BarChart is the top-studies-risk-chart response envelope.
type BarChart struct {
	BarChartData []BarDatum `json:"barChartData"`
	TotalStudies int        `json:"totalStudies"`
}
