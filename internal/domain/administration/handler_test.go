package administration

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/domain/hospital"
	"github.com/hms/hms/internal/hmstest"
	"github.com/hms/hms/internal/platform/auth"
)

var hasher = auth.NewPasswordHasher(bcrypt.MinCost)

func newServer(t *testing.T) *hmstest.Server {
	return hmstest.NewServer(t, func(store *hospital.Store, api *echo.Group) {
		NewHandler(store, hasher, zerolog.Nop()).RegisterRoutes(api)
	})
}

func TestAdministration_RoleGate(t *testing.T) {
	s := newServer(t)
	for _, id := range []string{"R001", "D001", "PH001"} {
		assert.Equal(t, http.StatusForbidden, s.Do(http.MethodGet, "/api/v1/admin/staff", id, "").Code, id)
	}
	for _, id := range []string{"A001", "M001"} {
		assert.Equal(t, http.StatusOK, s.Do(http.MethodGet, "/api/v1/admin/staff", id, "").Code, id)
	}
}

func TestAdministration_AssignableRoles(t *testing.T) {
	s := newServer(t)

	var roles []hospital.Role
	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/admin/staff/roles", "A001", ""), &roles)
	assert.Equal(t, []hospital.Role{hospital.RoleReceptionist, hospital.RoleDoctor, hospital.RolePharmacy}, roles)

	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/admin/staff/roles", "M001", ""), &roles)
	assert.Equal(t, hospital.AllRoles, roles)
}

func TestAdministration_CreateStaff(t *testing.T) {
	s := newServer(t)

	rec := s.Do(http.MethodPost, "/api/v1/admin/staff", "A001",
		`{"name":"Dr. Omar Khan","role":"Doctor","username":"okhan","password":"s3cret","specialty":"Neurology"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "s3cret")
	var created hospital.StaffMember
	hmstest.Decode(t, rec, &created)
	assert.True(t, strings.HasPrefix(created.ID, "D"))
	require.NotNil(t, created.Doctor)
	assert.Equal(t, hospital.Available, created.Doctor.Availability)

	stored, err := s.Store.StaffMember(created.ID)
	require.NoError(t, err)
	ok, err := hasher.Verify(stored.PasswordHash, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	tests := []struct {
		name  string
		actor string
		body  string
		want  int
	}{
		{"admin cannot create master", "A001", `{"name":"X","role":"Master","username":"x1","password":"p"}`, http.StatusForbidden},
		{"admin cannot create admin", "A001", `{"name":"X","role":"Admin","username":"x2","password":"p"}`, http.StatusForbidden},
		{"master can create admin", "M001", `{"name":"X","role":"Admin","username":"x3","password":"p"}`, http.StatusCreated},
		{"password required", "M001", `{"name":"X","role":"Pharmacy","username":"x4"}`, http.StatusBadRequest},
		{"username taken", "M001", `{"name":"X","role":"Pharmacy","username":"DOCTOR","password":"p"}`, http.StatusConflict},
		{"unknown role", "M001", `{"name":"X","role":"Janitor","username":"x5","password":"p"}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.Do(http.MethodPost, "/api/v1/admin/staff", tt.actor, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAdministration_UpdateStaffGuards(t *testing.T) {
	s := newServer(t)
	body := func(name string, role hospital.Role, username string) string {
		return `{"name":"` + name + `","role":"` + string(role) + `","username":"` + username + `"}`
	}

	assert.Equal(t, http.StatusForbidden, s.Do(http.MethodPut, "/api/v1/admin/staff/A001", "A001", body("Chen Wei", hospital.RoleAdmin, "admin")).Code, "self edit")
	assert.Equal(t, http.StatusForbidden, s.Do(http.MethodPut, "/api/v1/admin/staff/M001", "A001", body("Alice", hospital.RoleMaster, "master")).Code, "admin edits master")
	assert.Equal(t, http.StatusForbidden, s.Do(http.MethodPut, "/api/v1/admin/staff/R001", "A001", body("John Smith", hospital.RoleAdmin, "receptionist")).Code, "admin promotes to admin")

	rec := s.Do(http.MethodPut, "/api/v1/admin/staff/R001", "A001", body("John A. Smith", hospital.RoleReceptionist, "receptionist"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m, _ := s.Store.StaffMember("R001")
	assert.Equal(t, "John A. Smith", m.Name)
	assert.Equal(t, "Updated staff member: R001", s.LastAction())

	rec = s.Do(http.MethodPut, "/api/v1/admin/staff/A001", "M001", body("Chen Wei", hospital.RoleAdmin, "admin"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.Do(http.MethodPut, "/api/v1/admin/staff/D001", "M001", body("Dr. Evelyn Reed", hospital.RolePharmacy, "doctor"))
	require.Equal(t, http.StatusOK, rec.Code)
	m, _ = s.Store.StaffMember("D001")
	assert.Nil(t, m.Doctor, "doctor profile dropped with the role")

	assert.Equal(t, http.StatusNotFound, s.Do(http.MethodPut, "/api/v1/admin/staff/X9", "M001", body("X", hospital.RolePharmacy, "x")).Code)
}

func TestAdministration_RecycleBin(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusForbidden, s.Do(http.MethodDelete, "/api/v1/admin/staff/M001", "A001", "").Code)
	require.Equal(t, http.StatusNoContent, s.Do(http.MethodDelete, "/api/v1/admin/staff/PH001", "A001", "").Code)
	require.NoError(t, s.Store.RemoveMedicine(t.Context(), "MED002"))

	var bin recycleBin
	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/admin/recycle-bin", "A001", ""), &bin)
	require.Len(t, bin.Staff, 1)
	assert.Equal(t, "PH001", bin.Staff[0].ID)
	require.Len(t, bin.Medicines, 1)

	require.Equal(t, http.StatusNoContent, s.Do(http.MethodPost, "/api/v1/admin/recycle-bin/staff/PH001/restore", "A001", "").Code)
	assert.Len(t, s.Store.Staff(), 5)
	assert.Empty(t, s.Store.RecycledStaff())
	assert.Equal(t, http.StatusNotFound, s.Do(http.MethodPost, "/api/v1/admin/recycle-bin/staff/PH001/restore", "A001", "").Code)

	require.Equal(t, http.StatusNoContent, s.Do(http.MethodDelete, "/api/v1/admin/recycle-bin/medicines/MED002", "M001", "").Code)
	assert.Empty(t, s.Store.RecycledMedicines())

	require.NoError(t, s.Store.RemoveStaff(t.Context(), "M001"))
	assert.Equal(t, http.StatusForbidden, s.Do(http.MethodDelete, "/api/v1/admin/recycle-bin/staff/M001", "A001", "").Code)
}

func TestAdministration_LeaveDecisions(t *testing.T) {
	s := newServer(t)
	decide := func(actor, id, status string) int {
		return s.Do(http.MethodPatch, "/api/v1/admin/leave-applications/"+id+"/status", actor, `{"status":"`+status+`"}`).Code
	}

	assert.Equal(t, http.StatusForbidden, decide("A001", "L003", "Accepted"), "own application")
	assert.Equal(t, http.StatusOK, decide("M001", "L003", "Accepted"))
	assert.Equal(t, http.StatusOK, decide("A001", "L001", "Declined"))
	assert.Equal(t, "Declined leave application L001 of Dr. Evelyn Reed", s.LastAction())
	assert.Equal(t, http.StatusConflict, decide("M001", "L001", "Accepted"), "already decided")
	assert.Equal(t, http.StatusConflict, decide("M001", "L002", "Declined"), "already accepted")
	assert.Equal(t, http.StatusNotFound, decide("M001", "L999", "Accepted"))

	var page hmstest.Page[hospital.LeaveApplication]
	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/admin/leave-applications?q=declined", "A001", ""), &page)
	assert.Equal(t, 1, page.Total)
}

func TestAdministration_AuditLogs(t *testing.T) {
	s := newServer(t)

	var page hmstest.Page[hospital.AuditLog]
	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/admin/audit-logs?q=receptionist", "M001", ""), &page)
	assert.Equal(t, 1, page.Total)

	rec := s.Do(http.MethodGet, "/api/v1/admin/audit-logs/export", "M001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Audit Logs")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestAdministration_Wards(t *testing.T) {
	s := newServer(t)

	var wards []hospital.WardOccupancy
	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/admin/wards", "A001", ""), &wards)
	require.Len(t, wards, 4)
	for _, w := range wards {
		assert.Equal(t, 1, w.Occupied, w.Name)
	}

	rec := s.Do(http.MethodPost, "/api/v1/admin/wards", "A001", `{"name":"Maternity","capacity":12}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var w hospital.Ward
	hmstest.Decode(t, rec, &w)

	assert.Equal(t, http.StatusBadRequest, s.Do(http.MethodPut, "/api/v1/admin/wards/"+w.ID, "A001", `{"name":"Maternity","capacity":0}`).Code)
	assert.Equal(t, http.StatusOK, s.Do(http.MethodPut, "/api/v1/admin/wards/"+w.ID, "A001", `{"name":"Maternity","capacity":14}`).Code)

	hmstest.Decode(t, s.Do(http.MethodGet, "/api/v1/admin/wards?q=mater", "A001", ""), &wards)
	require.Len(t, wards, 1)
	assert.Equal(t, 14, wards[0].Capacity)
	assert.Equal(t, 0, wards[0].Occupied)
}
