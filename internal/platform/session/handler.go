package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/internal/platform/settings"
)

// Handler serves login, the caller's own profile and the hospital settings.
type Handler struct {
	mgr      *Manager
	throttle middleware.LoginThrottleConfig
}

// NewHandler serves mgr over HTTP. throttle limits login attempts.
func NewHandler(mgr *Manager, throttle middleware.LoginThrottleConfig) *Handler {
	return &Handler{mgr: mgr, throttle: throttle}
}

// RegisterRoutes mounts login, logout, profile and settings under api.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/login", h.Login, middleware.LoginThrottle(h.throttle))
	api.POST("/auth/logout", h.Logout, auth.RequireAuth())
	api.GET("/auth/me", h.Me, auth.RequireAuth())

	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings, auth.RequireRole(hospital.RoleMaster))

	api.GET("/profile", h.GetProfile, auth.RequireAuth())
	api.PUT("/profile", h.UpdateProfile, auth.RequireAuth())
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expires_at"`
	Member    hospital.StaffMember `json:"member"`
	Landing   string               `json:"landing"`
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}
	token, sess, err := h.mgr.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return hospital.HTTPError(err)
	}
	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		Member:    sess.Member,
		Landing:   auth.LandingPath,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	h.mgr.Logout(p.SessionID)
	middleware.SetAuditAction(c, "Logged out")
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's session and menu.
func (h *Handler) Me(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	sess, err := h.mgr.Session(p.SessionID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"member":     sess.Member,
		"expires_at": sess.ExpiresAt,
		"menu":       auth.Menu(sess.Member.Role),
	})
}

func (h *Handler) GetSettings(c echo.Context) error {
	s, err := h.mgr.Settings(c.Request().Context())
	if err != nil {
		return hospital.InternalError(err)
	}
	return c.JSON(http.StatusOK, s)
}

type settingsRequest struct {
	HospitalName *string `json:"hospital_name"`
	HospitalLogo *string `json:"hospital_logo"`
	RemoveLogo   bool    `json:"remove_logo"`
}

// UpdateSettings changes the hospital name or logo. Master only.
func (h *Handler) UpdateSettings(c echo.Context) error {
	var req settingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	if req.HospitalName != nil {
		if err := h.mgr.SetHospitalName(ctx, *req.HospitalName); err != nil {
			if errors.Is(err, settings.ErrEmptyName) {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return hospital.InternalError(err)
		}
	}
	switch {
	case req.RemoveLogo:
		if err := h.mgr.SetHospitalLogo(ctx, nil); err != nil {
			return hospital.InternalError(err)
		}
	case req.HospitalLogo != nil:
		if err := h.mgr.SetHospitalLogo(ctx, req.HospitalLogo); err != nil {
			return hospital.InternalError(err)
		}
	}
	middleware.SetAuditAction(c, "Updated hospital settings")
	return h.GetSettings(c)
}

func (h *Handler) GetProfile(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	m, err := h.mgr.store.StaffMember(p.UserID)
	if err != nil {
		return hospital.HTTPError(err)
	}
	return c.JSON(http.StatusOK, m.Public())
}

// UpdateProfile applies a ProfilePatch to the caller's own record.
func (h *Handler) UpdateProfile(c echo.Context) error {
	var patch ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	m, err := h.mgr.UpdateIdentity(c.Request().Context(), p.SessionID, patch)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Updated profile")
	return c.JSON(http.StatusOK, m)
}
