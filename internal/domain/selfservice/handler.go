package selfservice

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/middleware"
)

const dateLayout = "2006-01-02"

// Handler serves what every signed-in role can reach: the landing dashboard,
// their own leave applications and read-only patient reports.
type Handler struct {
	store *hospital.Store
	now   func() time.Time
}

func NewHandler(store *hospital.Store, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{store: store, now: now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	authed := auth.RequireAuth()

	api.GET("/dashboard", h.Dashboard, authed)
	api.GET("/leave-applications/mine", h.ListMyLeave, authed)
	api.POST("/leave-applications/mine", h.ApplyForLeave, authed)
	api.GET("/patients/:id/report", h.PatientReport, authed)
	api.GET("/sos-patients/:id/report", h.SosPatientReport, authed)
}

func (h *Handler) Dashboard(c echo.Context) error {
	actor, err := auth.Actor(c, h.store)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.store.Dashboard(actor, h.now().Format(dateLayout)))
}

func (h *Handler) ListMyLeave(c echo.Context) error {
	list := h.store.LeaveApplicationsOf(auth.UserIDFromContext(c.Request().Context()))
	if list == nil {
		list = []hospital.LeaveApplication{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) ApplyForLeave(c echo.Context) error {
	actor, err := auth.Actor(c, h.store)
	if err != nil {
		return err
	}
	var in hospital.LeaveInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	l, err := h.store.AddLeaveApplication(c.Request().Context(), in, actor)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Applied for %s leave: %s", l.Type, l.ID)
	return c.JSON(http.StatusCreated, l)
}

type patientReport struct {
	hospital.Patient
	AssignedDoctorName string `json:"assigned_doctor_name,omitempty"`
}

func (h *Handler) PatientReport(c echo.Context) error {
	p, err := h.store.Patient(c.Param("id"))
	if err != nil {
		return hospital.HTTPError(err)
	}
	out := patientReport{Patient: p}
	if p.AssignedDoctorID != "" {
		if d, err := h.store.StaffMember(p.AssignedDoctorID); err == nil {
			out.AssignedDoctorName = d.Name
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) SosPatientReport(c echo.Context) error {
	p, err := h.store.SosPatient(c.Param("id"))
	if err != nil {
		return hospital.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}
