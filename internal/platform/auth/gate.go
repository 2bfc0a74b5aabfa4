package auth

import "github.com/hms/hms/internal/domain/hospital"

// Decision is the outcome of a navigation request.
type Decision string

const (
	Render          Decision = "render"
	RedirectLogin   Decision = "redirect_login"
	RedirectLanding Decision = "redirect_landing"
)

// Location is where the client should go instead, or "" for Render.
func (d Decision) Location() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectLanding:
		return LandingPath
	}
	return ""
}

// CanAccess reports whether role may render path. Paths outside the route
// table are never accessible.
func CanAccess(role hospital.Role, path string) bool {
	r, ok := Lookup(path)
	return ok && r.Allows(role)
}

// Decide resolves a navigation to path for the caller. A nil principal is
// an anonymous visitor: only the login screen renders, everything else sends
// them to login. Signed-in callers are sent to the landing page for routes
// their role may not see and for unknown routes.
func Decide(p *Principal, path string) Decision {
	r, known := Lookup(path)
	if known && r.Public {
		return Render
	}
	if p == nil {
		return RedirectLogin
	}
	if known && r.Allows(p.Role) {
		return Render
	}
	return RedirectLanding
}
