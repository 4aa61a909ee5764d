// Package report renders the printable risk assessment PDF.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"

	"github.com/flourish/riskassess/internal/domain/assessment"
	"github.com/flourish/riskassess/internal/domain/catalog"
	"github.com/flourish/riskassess/internal/domain/study"
)

// Renderer builds the assessment report document. Safe for concurrent use;
// each Render call works on its own document.
type Renderer struct {
	title string
}

func NewRenderer() *Renderer {
	return &Renderer{title: "Clinical Trial Risk Assessment Report"}
}

const (
	pageMargin  = 12.0
	labelWidth  = 45.0
	rowHeight   = 7.0
	scoreColW   = 18.0
	headerGray  = 230
	sectionGray = 243
)

// Render produces the PDF for one assessment snapshot.
func (r *Renderer) Render(st *study.Study, c *assessment.Complete, meta *catalog.Metadata) ([]byte, error) {
	if c == nil || c.Assessment == nil {
		return nil, fmt.Errorf("assessment snapshot is empty")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	r.header(pdf, st)
	r.studyInfo(pdf, st)
	r.assessmentSummary(pdf, c)
	r.sections(pdf, c, meta)
	r.mitigationPlans(pdf, c.MitigationPlans)
	r.summaryComments(pdf, c.SummaryComments)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) header(pdf *gofpdf.Fpdf, st *study.Study) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, r.title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s  |  %s", st.Site, st.Protocol), "", 1, "C", false, 0, "")
	pdf.Ln(3)
}

func (r *Renderer) labelRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelWidth, rowHeight, label, "1", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, rowHeight, value, "1", 1, "L", false, 0, "")
}

func (r *Renderer) sectionHeading(pdf *gofpdf.Fpdf, text string) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(headerGray, headerGray, headerGray)
	pdf.CellFormat(0, 8, text, "1", 1, "L", true, 0, "")
}

func (r *Renderer) studyInfo(pdf *gofpdf.Fpdf, st *study.Study) {
	r.sectionHeading(pdf, "Study Information")
	r.labelRow(pdf, "Site", st.Site)
	r.labelRow(pdf, "Sponsor", st.Sponsor)
	r.labelRow(pdf, "Protocol", st.Protocol)
	r.labelRow(pdf, "Principal Investigator", st.PrincipalInvestigator)
	sd := ""
	if st.SiteDirector != nil {
		sd = *st.SiteDirector
	}
	r.labelRow(pdf, "Site Director", sd)
	r.labelRow(pdf, "Study Type", st.StudyTypeText)
}

func (r *Renderer) assessmentSummary(pdf *gofpdf.Fpdf, c *assessment.Complete) {
	a := c.Assessment
	r.sectionHeading(pdf, "Assessment Summary")
	r.labelRow(pdf, "Assessment Date", a.AssessmentDate)
	r.labelRow(pdf, "Conducted By", a.ConductedByName)
	r.labelRow(pdf, "Monitoring Schedule", a.MonitoringSchedule)
	r.labelRow(pdf, "Status", a.Status)
	if d := c.Dashboard; d != nil {
		r.labelRow(pdf, "Total Risk Score", strconv.Itoa(d.TotalScore))
		r.labelRow(pdf, "Overall Risk Level", d.OverallRiskLevel)
		r.labelRow(pdf, "Risk Criteria", d.RiskLevelCriteria)
		r.labelRow(pdf, "High / Medium / Low",
			fmt.Sprintf("%d / %d / %d", d.HighRiskCount, d.MediumRiskCount, d.LowRiskCount))
	}
}

// sections renders one scored table per catalog section, keeping catalog
// order and skipping unscored factors.
func (r *Renderer) sections(pdf *gofpdf.Fpdf, c *assessment.Complete, meta *catalog.Metadata) {
	scores := map[string]*assessment.RiskScore{}
	for _, rs := range c.RiskScores {
		scores[rs.RiskFactorID.String()] = rs
	}
	comments := map[string]string{}
	for _, sc := range c.SectionComments {
		comments[sc.SectionKey] = sc.CommentText
	}

	for _, sec := range meta.Sections {
		if sec.SectionKey == "summary" {
			continue
		}
		var rows []*assessment.RiskScore
		var texts []string
		for _, factor := range meta.SectionFactors(sec.ID) {
			rs, ok := scores[factor.ID.String()]
			if !ok {
				continue
			}
			rows = append(rows, rs)
			texts = append(texts, factor.Text)
		}
		if len(rows) == 0 && comments[sec.SectionKey] == "" {
			continue
		}

		r.sectionHeading(pdf, sec.SectionTitle)
		if len(rows) > 0 {
			r.scoreTableHeader(pdf)
			for i, rs := range rows {
				r.scoreRow(pdf, texts[i], rs)
			}
		}
		if comment := comments[sec.SectionKey]; comment != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(0, 5, "Comment: "+comment, "1", "L", false)
		}
	}
}

func (r *Renderer) scoreTableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(sectionGray, sectionGray, sectionGray)
	factorW := contentWidth(pdf) - 4*scoreColW
	pdf.CellFormat(factorW, 6, "Risk Factor", "1", 0, "L", true, 0, "")
	for _, h := range []string{"Severity", "Likelihood", "Score", "Level"} {
		pdf.CellFormat(scoreColW, 6, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func (r *Renderer) scoreRow(pdf *gofpdf.Fpdf, text string, rs *assessment.RiskScore) {
	pdf.SetFont("Helvetica", "", 9)
	factorW := contentWidth(pdf) - 4*scoreColW
	pdf.CellFormat(factorW, 6, truncate(text, 80), "1", 0, "L", false, 0, "")
	pdf.CellFormat(scoreColW, 6, strconv.Itoa(rs.Severity), "1", 0, "C", false, 0, "")
	pdf.CellFormat(scoreColW, 6, strconv.Itoa(rs.Likelihood), "1", 0, "C", false, 0, "")
	pdf.CellFormat(scoreColW, 6, strconv.Itoa(rs.RiskScore), "1", 0, "C", false, 0, "")
	pdf.CellFormat(scoreColW, 6, rs.RiskLevel, "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	if rs.MitigationActions != nil && *rs.MitigationActions != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(0, 4.5, "Mitigation: "+*rs.MitigationActions, "1", "L", false)
	}
}

func (r *Renderer) mitigationPlans(pdf *gofpdf.Fpdf, plans []*assessment.MitigationPlan) {
	if len(plans) == 0 {
		return
	}
	r.sectionHeading(pdf, "Risk Mitigation Plans")
	for i, p := range plans {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d. %s", i+1, p.RiskItem), "1", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, fmt.Sprintf("Responsible: %s    Target: %s    Status: %s    Priority: %s",
			p.ResponsiblePerson, p.TargetDate, p.Status, p.PriorityLevel), "1", "L", false)
		if p.MitigationStrategy != "" {
			pdf.MultiCell(0, 5, "Strategy: "+p.MitigationStrategy, "1", "L", false)
		}
	}
}

func (r *Renderer) summaryComments(pdf *gofpdf.Fpdf, comments []*assessment.SummaryComment) {
	if len(comments) == 0 {
		return
	}
	r.sectionHeading(pdf, "Summary Comments")
	for _, sc := range comments {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s (%s)", sc.CommentType, sc.CreatedByName), "1", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, sc.CommentText, "1", "L", false)
	}
}

func contentWidth(pdf *gofpdf.Fpdf) float64 {
	w, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return w - left - right
}

// truncate limits s to max runes, never cutting a multi-byte rune in half.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
