package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/metadata", h.GetMetadata)
	api.GET("/monitoring-options", h.GetMonitoringOptions)
	api.GET("/assessment-steps", h.GetSteps)
}

// GetMetadata serves the assessment sections and risk factors. It doubles
// as the connectivity check clients hit before saving.
func (h *Handler) GetMetadata(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Metadata(c.Request().Context()))
}

func (h *Handler) GetMonitoringOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"monitoring_options": MonitoringOptions(),
	})
}

func (h *Handler) GetSteps(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"steps": Steps(),
	})
}
