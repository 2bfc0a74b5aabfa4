package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/hospital"
)

// StaffLookup finds a staff record by id.
type StaffLookup interface {
	StaffMember(id string) (hospital.StaffMember, error)
}

// Actor returns the current stored record of the caller. A member moved to
// the recycle bin after signing in is treated as signed out.
func Actor(c echo.Context, staff StaffLookup) (hospital.StaffMember, error) {
	p, ok := PrincipalFromContext(c.Request().Context())
	if !ok {
		return hospital.StaffMember{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	m, err := staff.StaffMember(p.UserID)
	if err != nil {
		return hospital.StaffMember{}, echo.NewHTTPError(http.StatusUnauthorized, "staff account is no longer active")
	}
	return m, nil
}
