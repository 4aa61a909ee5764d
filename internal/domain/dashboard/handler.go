package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flourish/riskassess/internal/platform/auth"
	"github.com/flourish/riskassess/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard-stats", h.Stats)
	api.GET("/top-studies-risk-chart", h.TopStudiesRiskChart)
	api.GET("/assessed-studies-highest-risk", h.HighestRiskStudies)
	api.GET("/all-assessed-studies", h.AllAssessedStudies)
	api.GET("/risk-table-filter-values", h.FilterValues)
}

func (h *Handler) Stats(c echo.Context) error {
	email := auth.UserEmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no current user email found")
	}
	stats, err := h.svc.Stats(c.Request().Context(), email, c.QueryParam("user_type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) TopStudiesRiskChart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.TopStudiesRiskChart(c.Request().Context()))
}

func (h *Handler) HighestRiskStudies(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.HighestRiskStudies(c.Request().Context(), filterFromQuery(c)))
}

func (h *Handler) AllAssessedStudies(c echo.Context) error {
	p := pagination.FromContext(c)
	return c.JSON(http.StatusOK, h.svc.AllAssessedStudies(c.Request().Context(), filterFromQuery(c), p.Page, p.PageSize))
}

func filterFromQuery(c echo.Context) Filter {
	return Filter{
		Site:     c.QueryParam("site"),
		Sponsor:  c.QueryParam("sponsor"),
		Protocol: c.QueryParam("protocol"),
	}
}

func (h *Handler) FilterValues(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.FilterValues(c.Request().Context()))
}
