package administration

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/export"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/pkg/pagination"
)

// Handler serves the Admin and Master back office: staff, leave, audit
// trail, recycle bin and wards.
type Handler struct {
	store  *hospital.Store
	hasher *auth.PasswordHasher
	logger zerolog.Logger
}

func NewHandler(store *hospital.Store, hasher *auth.PasswordHasher, logger zerolog.Logger) *Handler {
	return &Handler{store: store, hasher: hasher, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/admin", auth.RequireRole(hospital.RoleAdmin, hospital.RoleMaster))

	g.GET("/leave-applications", h.ListLeaveApplications)
	g.PATCH("/leave-applications/:id/status", h.DecideLeave)

	g.GET("/staff", h.ListStaff)
	g.GET("/staff/roles", h.AssignableRoles)
	g.POST("/staff", h.CreateStaff)
	g.GET("/staff/:id", h.GetStaff)
	g.PUT("/staff/:id", h.UpdateStaff)
	g.DELETE("/staff/:id", h.DeleteStaff)

	g.GET("/sos-patients", h.ListSosPatients)

	g.GET("/audit-logs", h.ListAuditLogs)
	g.GET("/audit-logs/export", h.ExportAuditLogs)

	g.GET("/recycle-bin", h.RecycleBin)
	g.POST("/recycle-bin/staff/:id/restore", h.RestoreStaff)
	g.DELETE("/recycle-bin/staff/:id", h.PurgeStaff)
	g.POST("/recycle-bin/medicines/:id/restore", h.RestoreMedicine)
	g.DELETE("/recycle-bin/medicines/:id", h.PurgeMedicine)

	g.GET("/wards", h.ListWards)
	g.POST("/wards", h.CreateWard)
	g.PUT("/wards/:id", h.UpdateWard)
}

func forbidden(msg string) error {
	return echo.NewHTTPError(http.StatusForbidden, msg)
}

// -- Leave --

func (h *Handler) ListLeaveApplications(c echo.Context) error {
	list := hospital.Filter(h.store.LeaveApplications(), c.QueryParam("q"), hospital.MatchLeave)
	return c.JSON(http.StatusOK, pagination.Page(list, pagination.FromContext(c)))
}

type leaveDecision struct {
	Status hospital.LeaveStatus `json:"status"`
}

func (h *Handler) DecideLeave(c echo.Context) error {
	actor, err := auth.Actor(c, h.store)
	if err != nil {
		return err
	}
	var req leaveDecision
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	l, err := h.store.DecideLeave(c.Request().Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "%s leave application %s of %s", l.Status, l.ID, l.StaffName)
	return c.JSON(http.StatusOK, l)
}

// -- Staff --

type staffRequest struct {
	Name           string                `json:"name"`
	Role           hospital.Role         `json:"role"`
	Username       string                `json:"username"`
	Email          string                `json:"email"`
	Gender         string                `json:"gender"`
	Contact        string                `json:"contact"`
	ProfilePicture string                `json:"profile_picture"`
	Password       string                `json:"password"`
	Specialty      string                `json:"specialty"`
	Availability   hospital.Availability `json:"availability"`
}

// apply copies the request onto m. The password is handled by the caller.
func (r staffRequest) apply(m *hospital.StaffMember) {
	m.Name = r.Name
	m.Role = r.Role
	m.Username = r.Username
	m.Email = r.Email
	m.Gender = r.Gender
	m.Contact = r.Contact
	m.ProfilePicture = r.ProfilePicture
	if r.Role != hospital.RoleDoctor {
		m.Doctor = nil
		return
	}
	if m.Doctor == nil {
		m.Doctor = &hospital.DoctorProfile{}
	}
	m.Doctor.Specialty = r.Specialty
	if r.Availability != "" {
		m.Doctor.Availability = r.Availability
	}
}

func publicStaff(in []hospital.StaffMember) []hospital.StaffMember {
	out := make([]hospital.StaffMember, len(in))
	for i, m := range in {
		out[i] = m.Public()
	}
	return out
}

func (h *Handler) ListStaff(c echo.Context) error {
	list := hospital.Filter(h.store.Staff(), c.QueryParam("q"), hospital.MatchStaff)
	return c.JSON(http.StatusOK, pagination.Page(publicStaff(list), pagination.FromContext(c)))
}

func (h *Handler) GetStaff(c echo.Context) error {
	m, err := h.store.StaffMember(c.Param("id"))
	if err != nil {
		return hospital.HTTPError(err)
	}
	return c.JSON(http.StatusOK, m.Public())
}

// AssignableRoles lists the roles the caller may give to new or edited staff.
func (h *Handler) AssignableRoles(c echo.Context) error {
	actor, err := auth.Actor(c, h.store)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hospital.AssignableRoles(actor))
}

func (h *Handler) CreateStaff(c echo.Context) error {
	actor, err := auth.Actor(c, h.store)
	if err != nil {
		return err
	}
	var req staffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !hospital.CanAssignRole(actor, req.Role) {
		return forbidden("you cannot create staff with this role")
	}
	if req.Password == "" {
		return hospital.HTTPError(hospital.ErrPasswordRequired)
	}
	var m hospital.StaffMember
	req.apply(&m)
	if m.PasswordHash, err = h.hasher.Hash(req.Password); err != nil {
		return hospital.InternalError(err)
	}
	created, err := h.store.AddStaff(c.Request().Context(), m)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Added new staff member: %s (%s)", created.ID, created.Role)
	return c.JSON(http.StatusCreated, created.Public())
}

// UpdateStaff edits a member. The permission checks run against the stored
// record inside the same store update.
func (h *Handler) UpdateStaff(c echo.Context) error {
	actor, err := auth.Actor(c, h.store)
	if err != nil {
		return err
	}
	var req staffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	var hash string
	if req.Password != "" {
		if hash, err = h.hasher.Hash(req.Password); err != nil {
			return hospital.InternalError(err)
		}
	}
	updated, err := h.store.MutateStaff(c.Request().Context(), c.Param("id"), func(m *hospital.StaffMember) error {
		if !hospital.CanManageStaff(actor, *m) || !hospital.CanAssignRole(actor, req.Role) {
			return hospital.ErrForbidden
		}
		req.apply(m)
		if hash != "" {
			m.PasswordHash = hash
		}
		return nil
	})
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Updated staff member: %s", updated.ID)
	return c.JSON(http.StatusOK, updated.Public())
}

// DeleteStaff moves a member to the recycle bin.
func (h *Handler) DeleteStaff(c echo.Context) error {
	actor, err := auth.Actor(c, h.store)
	if err != nil {
		return err
	}
	target, err := h.store.StaffMember(c.Param("id"))
	if err != nil {
		return hospital.HTTPError(err)
	}
	if !hospital.CanManageStaff(actor, target) {
		return forbidden("you cannot remove this staff member")
	}
	if err := h.store.RemoveStaff(c.Request().Context(), target.ID); err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Moved staff member %s to recycle bin", target.ID)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListSosPatients(c echo.Context) error {
	list := hospital.Filter(h.store.SosPatients(), c.QueryParam("q"), hospital.MatchSosPatient)
	return c.JSON(http.StatusOK, pagination.Page(list, pagination.FromContext(c)))
}

// -- Audit logs --

func (h *Handler) ListAuditLogs(c echo.Context) error {
	list := hospital.Filter(h.store.AuditLogs(), c.QueryParam("q"), hospital.MatchAuditLog)
	return c.JSON(http.StatusOK, pagination.Page(list, pagination.FromContext(c)))
}

func (h *Handler) ExportAuditLogs(c echo.Context) error {
	data, err := export.AuditLogs(hospital.Filter(h.store.AuditLogs(), c.QueryParam("q"), hospital.MatchAuditLog))
	if err != nil {
		h.logger.Error().Err(err).Msg("export audit logs")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to export audit logs")
	}
	return export.Attachment(c, "audit-logs.xlsx", data)
}

// -- Recycle bin --

type recycleBin struct {
	Staff     []hospital.StaffMember `json:"staff"`
	Medicines []hospital.Medicine    `json:"medicines"`
}

func (h *Handler) RecycleBin(c echo.Context) error {
	return c.JSON(http.StatusOK, recycleBin{
		Staff:     publicStaff(h.store.RecycledStaff()),
		Medicines: append([]hospital.Medicine{}, h.store.RecycledMedicines()...),
	})
}

// recycledStaff finds id in the recycle bin and checks the caller may act on
// it.
func (h *Handler) recycledStaff(c echo.Context, id string) error {
	actor, err := auth.Actor(c, h.store)
	if err != nil {
		return err
	}
	for _, m := range h.store.RecycledStaff() {
		if m.ID == id {
			if !hospital.CanManageStaff(actor, m) {
				return forbidden("you cannot manage this staff member")
			}
			return nil
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "recycled staff "+id+" not found")
}

func (h *Handler) RestoreStaff(c echo.Context) error {
	id := c.Param("id")
	if err := h.recycledStaff(c, id); err != nil {
		return err
	}
	if err := h.store.RestoreStaff(c.Request().Context(), id); err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Restored staff member %s", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) PurgeStaff(c echo.Context) error {
	id := c.Param("id")
	if err := h.recycledStaff(c, id); err != nil {
		return err
	}
	if err := h.store.PermanentlyDeleteStaff(c.Request().Context(), id); err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Permanently deleted staff member %s", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RestoreMedicine(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.RestoreMedicine(c.Request().Context(), id); err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Restored medicine %s", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) PurgeMedicine(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.PermanentlyDeleteMedicine(c.Request().Context(), id); err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Permanently deleted medicine %s", id)
	return c.NoContent(http.StatusNoContent)
}

// -- Wards --

type wardRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func (h *Handler) ListWards(c echo.Context) error {
	list := h.store.WardOccupancy()
	if q := c.QueryParam("q"); q != "" {
		kept := list[:0]
		for _, w := range list {
			if hospital.MatchWard(w.Ward, q) {
				kept = append(kept, w)
			}
		}
		list = kept
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateWard(c echo.Context) error {
	var req wardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	w, err := h.store.AddWard(c.Request().Context(), hospital.Ward{Name: req.Name, Capacity: req.Capacity})
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Added ward %s (%s)", w.ID, w.Name)
	return c.JSON(http.StatusCreated, w)
}

func (h *Handler) UpdateWard(c echo.Context) error {
	var req wardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	w, err := h.store.UpdateWard(c.Request().Context(), hospital.Ward{ID: c.Param("id"), Name: req.Name, Capacity: req.Capacity})
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Updated ward %s", w.ID)
	return c.JSON(http.StatusOK, w)
}
