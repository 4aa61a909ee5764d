package study

import (
	"net/http"

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
	api.GET("/getStudiesByUsername", h.ListByUsername)
	api.GET("/dropdown-values", h.DropdownValues)
	api.GET("/filtered-sponsors", h.FilteredSponsors)
	api.GET("/filtered-protocols", h.FilteredProtocols)
}

func (h *Handler) ListByUsername(c echo.Context) error {
	email := auth.UserEmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no current user email found")
	}
	userType := c.QueryParam("type")
	f := Filter{
		Site:     c.QueryParam("site"),
		Sponsor:  c.QueryParam("sponsor"),
		Protocol: c.QueryParam("protocol"),
	}
	items, err := h.svc.ListByUser(c.Request().Context(), email, userType, f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if items == nil {
		items = []*Study{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DropdownValues(c echo.Context) error {
	email := auth.UserEmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no current user email found")
	}
	values, err := h.svc.DropdownValues(c.Request().Context(), email, c.QueryParam("type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, values)
}

func (h *Handler) FilteredSponsors(c echo.Context) error {
	email := auth.UserEmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no current user email found")
	}
	sponsors, err := h.svc.FilteredSponsors(c.Request().Context(), email, c.QueryParam("type"), c.QueryParam("site"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if sponsors == nil {
		sponsors = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"sponsors": sponsors})
}

func (h *Handler) FilteredProtocols(c echo.Context) error {
	email := auth.UserEmailFromContext(c.Request().Context())
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "no current user email found")
	}
	protocols, err := h.svc.FilteredProtocols(c.Request().Context(), email,
		c.QueryParam("type"), c.QueryParam("site"), c.QueryParam("sponsor"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if protocols == nil {
		protocols = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"protocols": protocols})
}
