package access

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/flourish/riskassess/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/assessment-edit-permissions/:studyId", h.EditPermissions)
}

// EditPermissions answers 200 with a denial envelope even for anonymous
// callers; the client renders the reason instead of an error page.
func (h *Handler) EditPermissions(c echo.Context) error {
	studyID, err := uuid.Parse(c.Param("studyId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid study id")
	}
	email := auth.UserEmailFromContext(c.Request().Context())
	p, err := h.svc.Resolve(c.Request().Context(), studyID, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "study not found")
	}
	return c.JSON(http.StatusOK, p)
}
