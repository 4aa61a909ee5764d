package assessment

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/flourish/riskassess/internal/domain/catalog"
	"github.com/flourish/riskassess/internal/domain/study"
	"github.com/flourish/riskassess/internal/platform/auth"
)

// ReportRenderer produces the printable assessment report. Implemented by
// the report package; kept as an interface here so handlers stay testable.
type ReportRenderer interface {
	Render(st *study.Study, c *Complete, meta *catalog.Metadata) ([]byte, error)
}

type Handler struct {
	svc      *Service
	renderer ReportRenderer
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// SetRenderer attaches the PDF renderer for the export endpoint.
func (h *Handler) SetRenderer(r ReportRenderer) {
	h.renderer = r
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/assessments/saveRisksByStudyId", h.Save)
	api.GET("/assessments/by-study/:studyId/complete", h.GetCompleteByStudy)
	api.GET("/assessments/:assessmentId/complete", h.GetComplete)
	api.POST("/assessments/:assessmentId/approve", h.Approve)
	api.POST("/assessments/:assessmentId/reject", h.Reject)
	api.GET("/assessments/:assessmentId/export/pdf", h.ExportPDF)
	api.GET("/assessed-studies", h.ListAssessed)
	api.GET("/assessment-audit/:studyId", h.Audit)
	api.GET("/assessment-timeline/:studyId", h.Timeline)
}

func (h *Handler) Save(c echo.Context) error {
	email := auth.UserEmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no current user email found")
	}
	name := auth.UserNameFromContext(c.Request().Context())
	var req SaveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Save(c.Request().Context(), &req, name, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":       true,
		"assessment_id": a.ID,
		"study_id":      a.StudyID,
		"status":        a.Status,
	})
}

func (h *Handler) GetCompleteByStudy(c echo.Context) error {
	studyID, err := uuid.Parse(c.Param("studyId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid study id")
	}
	complete, err := h.svc.GetCompleteByStudy(c.Request().Context(), studyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no assessment found for study")
	}
	return c.JSON(http.StatusOK, complete)
}

func (h *Handler) GetComplete(c echo.Context) error {
	assessmentID, err := uuid.Parse(c.Param("assessmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assessment id")
	}
	complete, err := h.svc.GetComplete(c.Request().Context(), assessmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
	}
	return c.JSON(http.StatusOK, complete)
}

func (h *Handler) Approve(c echo.Context) error {
	return h.review(c, StatusApproved)
}

func (h *Handler) Reject(c echo.Context) error {
	return h.review(c, StatusRejected)
}

func (h *Handler) review(c echo.Context, newStatus string) error {
	assessmentID, err := uuid.Parse(c.Param("assessmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assessment id")
	}
	var req ActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ActionByEmail == "" {
		req.ActionByEmail = auth.UserEmailFromContext(c.Request().Context())
	}
	if req.ActionByName == "" {
		req.ActionByName = auth.UserNameFromContext(c.Request().Context())
	}
	var a *Assessment
	if newStatus == StatusApproved {
		a, err = h.svc.Approve(c.Request().Context(), assessmentID, &req)
	} else {
		a, err = h.svc.Reject(c.Request().Context(), assessmentID, &req)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":       true,
		"assessment_id": a.ID,
		"study_id":      a.StudyID,
		"status":        a.Status,
	})
}

func (h *Handler) ListAssessed(c echo.Context) error {
	email := auth.UserEmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no current user email found")
	}
	items, err := h.svc.ListAssessed(c.Request().Context(), email, c.QueryParam("user_type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if items == nil {
		items = []*AssessedStudy{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Audit(c echo.Context) error {
	studyID, err := uuid.Parse(c.Param("studyId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid study id")
	}
	f := AuditFilter{FieldName: c.QueryParam("field_name")}
	if raw := c.QueryParam("risk_factor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid risk factor id")
		}
		f.RiskFactorID = &id
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			f.Limit = n
		}
	}
	entries, assessmentID, err := h.svc.Audit(c.Request().Context(), studyID, f)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []*AuditEntry{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":       true,
		"study_id":      studyID,
		"assessment_id": assessmentID,
		"audit_data":    entries,
		"total_records": len(entries),
	})
}

func (h *Handler) Timeline(c echo.Context) error {
	studyID, err := uuid.Parse(c.Param("studyId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid study id")
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := h.svc.Timeline(c.Request().Context(), studyID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []*TimelineEntry{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":       true,
		"study_id":      studyID,
		"timeline_data": entries,
		"total_records": len(entries),
	})
}

func (h *Handler) ExportPDF(c echo.Context) error {
	if h.renderer == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "report rendering not configured")
	}
	assessmentID, err := uuid.Parse(c.Param("assessmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assessment id")
	}
	complete, err := h.svc.GetComplete(c.Request().Context(), assessmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
	}
	st, err := h.svc.GetStudy(c.Request().Context(), complete.Assessment.StudyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "study not found")
	}
	pdf, err := h.renderer.Render(st, complete, h.svc.CatalogMetadata(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "report rendering failed")
	}
	filename := fmt.Sprintf("Risk_Assessment_%s_%s.pdf",
		sanitizeFilename(st.Protocol), complete.Assessment.AssessmentDate)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
