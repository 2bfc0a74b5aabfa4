package clinical

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/pkg/pagination"
)

// Handler serves the doctor's patient reports, appointments and availability.
type Handler struct {
	store *hospital.Store
}

func NewHandler(store *hospital.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/doctor", auth.RequireRole(hospital.RoleDoctor))

	g.GET("/patients", h.ListPatients)
	g.PUT("/patients/:id/report", h.UpdatePatientReport)
	g.GET("/sos-patients", h.ListSosPatients)
	g.PUT("/sos-patients/:id/report", h.UpdateSosPatientReport)

	g.GET("/appointments", h.ListAppointments)
	g.PATCH("/appointments/:id/status", h.UpdateAppointmentStatus)

	g.GET("/availability", h.GetAvailability)
	g.PUT("/availability", h.UpdateAvailability)
}

// ListPatients searches every patient by one column (?field=Name|Contact|ID|
// Status, default Name). ?mine=true keeps only the caller's assigned patients.
func (h *Handler) ListPatients(c echo.Context) error {
	field := hospital.PatientSearchField(c.QueryParam("field"))
	switch field {
	case "", hospital.SearchByName, hospital.SearchByContact, hospital.SearchByID, hospital.SearchByStatus:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "field must be one of Name, Contact, ID, Status")
	}

	patients := h.store.Patients()
	if c.QueryParam("mine") == "true" {
		patients = h.store.PatientsOfDoctor(auth.UserIDFromContext(c.Request().Context()))
	}
	patients = hospital.Filter(patients, c.QueryParam("q"), hospital.MatchPatientBy(field))
	return c.JSON(http.StatusOK, pagination.Page(patients, pagination.FromContext(c)))
}

func (h *Handler) ListSosPatients(c echo.Context) error {
	list := hospital.Filter(h.store.SosPatients(), c.QueryParam("q"), hospital.MatchSosPatient)
	return c.JSON(http.StatusOK, pagination.Page(list, pagination.FromContext(c)))
}

func (h *Handler) UpdatePatientReport(c echo.Context) error {
	var patch hospital.ReportPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.store.UpdatePatientReport(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Updated patient report for %s", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateSosPatientReport(c echo.Context) error {
	var patch hospital.ReportPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.store.UpdateSosPatientReport(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Updated SOS patient report for %s", p.ID)
	return c.JSON(http.StatusOK, p)
}

// ListAppointments lists the caller's own appointments, optionally by status.
func (h *Handler) ListAppointments(c echo.Context) error {
	list := h.store.AppointmentsOfDoctor(auth.UserIDFromContext(c.Request().Context()))
	if status := hospital.AppointmentStatus(c.QueryParam("status")); status != "" {
		kept := list[:0]
		for _, a := range list {
			if a.Status == status {
				kept = append(kept, a)
			}
		}
		list = kept
	}
	list = hospital.Filter(list, c.QueryParam("q"), hospital.MatchAppointment)
	return c.JSON(http.StatusOK, pagination.Page(list, pagination.FromContext(c)))
}

type statusRequest struct {
	Status hospital.AppointmentStatus `json:"status"`
}

// UpdateAppointmentStatus checks in or cancels one of the caller's own
// appointments.
func (h *Handler) UpdateAppointmentStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id := c.Param("id")
	existing, err := h.store.Appointment(id)
	if err != nil {
		return hospital.HTTPError(err)
	}
	if existing.DoctorID != auth.UserIDFromContext(c.Request().Context()) {
		return echo.NewHTTPError(http.StatusForbidden, "appointment belongs to another doctor")
	}
	a, err := h.store.UpdateAppointmentStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Marked appointment %s as %s", a.ID, a.Status)
	return c.JSON(http.StatusOK, a)
}

type availabilityResponse struct {
	DoctorID     string                `json:"doctor_id"`
	Specialty    string                `json:"specialty"`
	Availability hospital.Availability `json:"availability"`
}

func toAvailability(m hospital.StaffMember) availabilityResponse {
	out := availabilityResponse{DoctorID: m.ID}
	if m.Doctor != nil {
		out.Specialty = m.Doctor.Specialty
		out.Availability = m.Doctor.Availability
	}
	return out
}

func (h *Handler) GetAvailability(c echo.Context) error {
	m, err := auth.Actor(c, h.store)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAvailability(m))
}

type availabilityRequest struct {
	Availability hospital.Availability `json:"availability"`
}

func (h *Handler) UpdateAvailability(c echo.Context) error {
	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	m, err := h.store.UpdateDoctorAvailability(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), req.Availability)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Set availability to %s", req.Availability)
	return c.JSON(http.StatusOK, toAvailability(m))
}
