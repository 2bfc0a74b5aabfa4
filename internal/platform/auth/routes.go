package auth

import (
	"strings"

	"github.com/hms/hms/internal/domain/hospital"
)

const (
	LoginPath   = "/login"
	LandingPath = "/"
)

// RoutePolicy says who may render a client route. A nil Roles slice means any
// authenticated identity.
type RoutePolicy struct {
	Pattern string          `json:"pattern"`
	Public  bool            `json:"public,omitempty"`
	Roles   []hospital.Role `json:"roles,omitempty"`
}

var (
	receptionOnly = []hospital.Role{hospital.RoleReceptionist}
	doctorOnly    = []hospital.Role{hospital.RoleDoctor}
	pharmacyOnly  = []hospital.Role{hospital.RolePharmacy}
	management    = []hospital.Role{hospital.RoleAdmin, hospital.RoleMaster}
	masterOnly    = []hospital.Role{hospital.RoleMaster}
)

// Routes is the full client route table.
var Routes = buildRoutes()

func buildRoutes() []RoutePolicy {
	routes := []RoutePolicy{
		{Pattern: LoginPath, Public: true},

		{Pattern: LandingPath},
		{Pattern: "/profile"},
		{Pattern: "/leave-apply"},
		{Pattern: "/patients/report/:id"},
		{Pattern: "/sos-patients/report/:id"},

		{Pattern: "/appointments", Roles: receptionOnly},
		{Pattern: "/patients", Roles: receptionOnly},
		{Pattern: "/patients/add", Roles: receptionOnly},
		{Pattern: "/patients/edit/:id", Roles: receptionOnly},
		{Pattern: "/sos-patients", Roles: receptionOnly},
		{Pattern: "/sos-patients/add", Roles: receptionOnly},
		{Pattern: "/sos-patients/convert/:id", Roles: receptionOnly},

		{Pattern: "/doctor/patients", Roles: doctorOnly},
		{Pattern: "/doctor/sos-patients", Roles: doctorOnly},
		{Pattern: "/doctor/appointments", Roles: doctorOnly},
		{Pattern: "/doctor/availability", Roles: doctorOnly},
		{Pattern: "/doctor/patients/edit-report/:id", Roles: doctorOnly},
		{Pattern: "/doctor/sos-patients/edit-report/:id", Roles: doctorOnly},

		{Pattern: "/pharmacy/patients", Roles: pharmacyOnly},
		{Pattern: "/pharmacy/sos-patients", Roles: pharmacyOnly},
		{Pattern: "/pharmacy/inventory", Roles: pharmacyOnly},
		{Pattern: "/pharmacy/billing", Roles: pharmacyOnly},
		{Pattern: "/pharmacy/patients/edit-report/:id", Roles: pharmacyOnly},
		{Pattern: "/pharmacy/sos-patients/edit-report/:id", Roles: pharmacyOnly},
	}
	// Admin and Master share every management screen under both prefixes.
	for _, prefix := range []string{"/admin", "/master"} {
		for _, p := range []string{
			"/leave-applications",
			"/manage-staff",
			"/manage-staff/add",
			"/manage-staff/edit/:id",
			"/sos-patients",
			"/audit-logs",
			"/recycle-bin",
		} {
			routes = append(routes, RoutePolicy{Pattern: prefix + p, Roles: management})
		}
	}
	return append(routes, RoutePolicy{Pattern: "/master/settings", Roles: masterOnly})
}

// Allows reports whether role may render the route.
func (r RoutePolicy) Allows(role hospital.Role) bool {
	if r.Public {
		return true
	}
	if r.Roles == nil {
		return role.Valid()
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

func matchPattern(pattern, path string) bool {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		path = "/"
	}
	if pattern == path {
		return true
	}
	ps := strings.Split(pattern, "/")
	xs := strings.Split(path, "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}

// Lookup finds the policy for a concrete path such as "/patients/edit/P1".
func Lookup(path string) (RoutePolicy, bool) {
	for _, r := range Routes {
		if matchPattern(r.Pattern, path) {
			return r, true
		}
	}
	return RoutePolicy{}, false
}

// MenuLink is one sidebar entry.
type MenuLink struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

var roleMenus = map[hospital.Role][]MenuLink{
	hospital.RoleReceptionist: {
		{Path: "/appointments", Label: "Appointments"},
		{Path: "/patients", Label: "Patients"},
		{Path: "/sos-patients", Label: "SOS Patients"},
	},
	hospital.RoleDoctor: {
		{Path: "/doctor/patients", Label: "Patients"},
		{Path: "/doctor/sos-patients", Label: "SOS Patients"},
		{Path: "/doctor/appointments", Label: "Appointments"},
		{Path: "/doctor/availability", Label: "Availability"},
	},
	hospital.RolePharmacy: {
		{Path: "/pharmacy/patients", Label: "Patients"},
		{Path: "/pharmacy/sos-patients", Label: "SOS Patients"},
		{Path: "/pharmacy/inventory", Label: "Inventory"},
		{Path: "/pharmacy/billing", Label: "Billing"},
	},
	hospital.RoleAdmin:  managementMenu("/admin"),
	hospital.RoleMaster: append(managementMenu("/master"), MenuLink{Path: "/master/settings", Label: "Hospital Settings"}),
}

var commonMenu = []MenuLink{
	{Path: "/leave-apply", Label: "Apply for Leave"},
	{Path: "/profile", Label: "Profile"},
}

func managementMenu(prefix string) []MenuLink {
	return []MenuLink{
		{Path: prefix + "/leave-applications", Label: "Leave Applications"},
		{Path: prefix + "/manage-staff", Label: "Manage Staff"},
		{Path: prefix + "/sos-patients", Label: "SOS Patients"},
		{Path: prefix + "/audit-logs", Label: "Audit Logs"},
		{Path: prefix + "/recycle-bin", Label: "Recycle Bin"},
	}
}

// Menu returns the sidebar for role: the role's own links followed by the
// links every role gets. Unknown roles get nothing.
func Menu(role hospital.Role) []MenuLink {
	if !role.Valid() {
		return nil
	}
	own := roleMenus[role]
	out := make([]MenuLink, 0, len(own)+len(commonMenu))
	out = append(out, own...)
	return append(out, commonMenu...)
}
