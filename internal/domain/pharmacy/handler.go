package pharmacy

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/export"
	"github.com/hms/hms/internal/platform/metrics"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/pkg/pagination"
)

// Handler serves the pharmacy counter: inventory, billing and the
// prescription side of patient reports.
type Handler struct {
	store   *hospital.Store
	metrics *metrics.Collector
	logger  zerolog.Logger
}

func NewHandler(store *hospital.Store, m *metrics.Collector, logger zerolog.Logger) *Handler {
	return &Handler{store: store, metrics: m, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/pharmacy", auth.RequireRole(hospital.RolePharmacy))

	g.GET("/patients", h.ListPatients)
	g.PUT("/patients/:id/report", h.UpdatePatientReport)
	g.GET("/sos-patients", h.ListSosPatients)
	g.PUT("/sos-patients/:id/report", h.UpdateSosPatientReport)

	g.GET("/medicines", h.ListMedicines)
	g.POST("/medicines", h.CreateMedicine)
	g.GET("/medicines/:id", h.GetMedicine)
	g.PUT("/medicines/:id", h.UpdateMedicine)
	g.DELETE("/medicines/:id", h.DeleteMedicine)

	g.GET("/bills", h.ListBills)
	g.POST("/bills", h.CreateBill)
	g.GET("/bills/export", h.ExportBills)
}

func (h *Handler) ListPatients(c echo.Context) error {
	list := hospital.Filter(h.store.Patients(), c.QueryParam("q"), hospital.MatchPatient)
	return c.JSON(http.StatusOK, pagination.Page(list, pagination.FromContext(c)))
}

func (h *Handler) ListSosPatients(c echo.Context) error {
	list := hospital.Filter(h.store.SosPatients(), c.QueryParam("q"), hospital.MatchSosPatient)
	return c.JSON(http.StatusOK, pagination.Page(list, pagination.FromContext(c)))
}

// reportRequest is what the pharmacy may change on a report. The diagnosis
// belongs to the doctor.
type reportRequest struct {
	Diagnosis     *[]string `json:"diagnosis"`
	Prescriptions *[]string `json:"prescriptions"`
	Instructions  *[]string `json:"instructions"`
}

func bindReport(c echo.Context) (hospital.ReportPatch, error) {
	var req reportRequest
	if err := c.Bind(&req); err != nil {
		return hospital.ReportPatch{}, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Diagnosis != nil {
		return hospital.ReportPatch{}, echo.NewHTTPError(http.StatusForbidden, "pharmacy cannot change the diagnosis")
	}
	return hospital.ReportPatch{Prescriptions: req.Prescriptions, Instructions: req.Instructions}, nil
}

func (h *Handler) UpdatePatientReport(c echo.Context) error {
	patch, err := bindReport(c)
	if err != nil {
		return err
	}
	p, err := h.store.UpdatePatientReport(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Updated prescriptions for %s", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateSosPatientReport(c echo.Context) error {
	patch, err := bindReport(c)
	if err != nil {
		return err
	}
	p, err := h.store.UpdateSosPatientReport(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Updated prescriptions for %s", p.ID)
	return c.JSON(http.StatusOK, p)
}

// -- Inventory --

type medicineRequest struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	BuyPrice  float64 `json:"buy_price"`
	SellPrice float64 `json:"sell_price"`
}

func (r medicineRequest) medicine(id string) hospital.Medicine {
	return hospital.Medicine{ID: id, Name: r.Name, Quantity: r.Quantity, BuyPrice: r.BuyPrice, SellPrice: r.SellPrice}
}

func (h *Handler) ListMedicines(c echo.Context) error {
	list := hospital.Filter(h.store.Medicines(), c.QueryParam("q"), hospital.MatchMedicine)
	return c.JSON(http.StatusOK, pagination.Page(list, pagination.FromContext(c)))
}

func (h *Handler) GetMedicine(c echo.Context) error {
	m, err := h.store.Medicine(c.Param("id"))
	if err != nil {
		return hospital.HTTPError(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) CreateMedicine(c echo.Context) error {
	var req medicineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	m, err := h.store.AddMedicine(c.Request().Context(), req.medicine(""))
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Added medicine %s (%s)", m.ID, m.Name)
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateMedicine(c echo.Context) error {
	var req medicineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	m, err := h.store.UpdateMedicine(c.Request().Context(), req.medicine(c.Param("id")))
	if err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Updated medicine %s", m.ID)
	return c.JSON(http.StatusOK, m)
}

// DeleteMedicine moves the item to the recycle bin.
func (h *Handler) DeleteMedicine(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.RemoveMedicine(c.Request().Context(), id); err != nil {
		return hospital.HTTPError(err)
	}
	middleware.SetAuditAction(c, "Moved medicine %s to recycle bin", id)
	return c.NoContent(http.StatusNoContent)
}

// -- Billing --

func (h *Handler) ListBills(c echo.Context) error {
	list := hospital.Filter(h.store.Bills(), c.QueryParam("q"), hospital.MatchBill)
	return c.JSON(http.StatusOK, pagination.Page(list, pagination.FromContext(c)))
}

func (h *Handler) CreateBill(c echo.Context) error {
	var in hospital.BillInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b, err := h.store.AddBill(c.Request().Context(), in)
	if err != nil {
		return hospital.HTTPError(err)
	}
	h.metrics.RecordBill(string(b.PaymentMethod), b.TotalAmount)
	middleware.SetAuditAction(c, "Generated bill %s for %s", b.ID, b.PatientID)
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) ExportBills(c echo.Context) error {
	data, err := export.Bills(hospital.Filter(h.store.Bills(), c.QueryParam("q"), hospital.MatchBill))
	if err != nil {
		h.logger.Error().Err(err).Msg("export bills")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to export bills")
	}
	return export.Attachment(c, "bills.xlsx", data)
}
