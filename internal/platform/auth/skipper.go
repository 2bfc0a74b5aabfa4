package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths bypass the session requirement: infrastructure endpoints, login,
// and the endpoints the login screen itself needs.
var publicPaths = map[string]bool{
	"/health":            true,
	"/health/db":         true,
	"/metrics":           true,
	"/api/v1/auth/login": true,
	"/api/v1/navigation": true,
	"/api/v1/settings":   true,
}

// AuthSkipper returns true for requests whose route is public.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

func IsPublicPath(path string) bool {
	return publicPaths[path]
}
