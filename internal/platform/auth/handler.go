package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// NavigationHandler exposes the route gate and sidebar to clients.
type NavigationHandler struct{}

func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

func (h *NavigationHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/navigation", h.Navigate)
	api.GET("/navigation/menu", h.Menu, RequireAuth())
}

type navigationResponse struct {
	Path     string   `json:"path"`
	Decision Decision `json:"decision"`
	Location string   `json:"location,omitempty"`
}

// Navigate answers whether the caller may render ?path=. Anonymous callers
// are allowed here; they are told to log in.
func (h *NavigationHandler) Navigate(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path query parameter is required")
	}
	var caller *Principal
	if p, ok := PrincipalFromContext(c.Request().Context()); ok {
		caller = &p
	}
	d := Decide(caller, path)
	return c.JSON(http.StatusOK, navigationResponse{Path: path, Decision: d, Location: d.Location()})
}

func (h *NavigationHandler) Menu(c echo.Context) error {
	p, _ := PrincipalFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]interface{}{
		"role":  p.Role,
		"links": Menu(p.Role),
	})
}
