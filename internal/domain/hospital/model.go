package hospital

import (
	"strings"
	"time"
)

// Role is the closed set of staff roles. Anything outside the constants below
// is rejected by Valid.
type Role string

const (
	RoleReceptionist Role = "Receptionist"
	RoleDoctor       Role = "Doctor"
	RolePharmacy     Role = "Pharmacy"
	RoleAdmin        Role = "Admin"
	RoleMaster       Role = "Master"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleReceptionist, RoleDoctor, RolePharmacy, RoleAdmin, RoleMaster}

// Valid reports whether r is one of AllRoles.
func (r Role) Valid() bool {
	switch r {
	case RoleReceptionist, RoleDoctor, RolePharmacy, RoleAdmin, RoleMaster:
		return true
	}
	return false
}

// IDPrefix is the first letter of the role name.
func (r Role) IDPrefix() string {
	if r == "" {
		return ""
	}
	return string(r[0])
}

// ParseRole matches a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

type Availability string

const (
	Available Availability = "Available"
	OnBreak   Availability = "On Break"
	OnLeave   Availability = "On Leave"
)

// Valid reports whether a is a known availability.
func (a Availability) Valid() bool {
	return a == Available || a == OnBreak || a == OnLeave
}

// DoctorProfile carries the fields that only exist for the Doctor role.
type DoctorProfile struct {
	Specialty    string       `json:"specialty"`
	Availability Availability `json:"availability"`
}

type StaffMember struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Role           Role           `json:"role"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	Gender         string         `json:"gender"`
	Contact        string         `json:"contact"`
	ProfilePicture string         `json:"profile_picture,omitempty"`
	Doctor         *DoctorProfile `json:"doctor,omitempty"`
	PasswordHash   string         `json:"-"`
}

// IsDoctor reports whether the member carries a doctor profile.
func (s *StaffMember) IsDoctor() bool {
	return s.Role == RoleDoctor && s.Doctor != nil
}

// Public returns a copy with secrets removed.
func (s StaffMember) Public() StaffMember {
	out := cloneStaff(s)
	out.PasswordHash = ""
	return out
}

type PatientStatus string

const (
	PatientAdmitted   PatientStatus = "Admitted"
	PatientDischarged PatientStatus = "Discharged"
	PatientDied       PatientStatus = "Died"
)

// Valid reports whether s is a known patient status.
func (s PatientStatus) Valid() bool {
	return s == PatientAdmitted || s == PatientDischarged || s == PatientDied
}

// ClinicalNotes holds the three ordered free-text lists a doctor or pharmacist
// edits on a patient record.
type ClinicalNotes struct {
	Diagnosis     []string `json:"diagnosis,omitempty"`
	Prescriptions []string `json:"prescriptions,omitempty"`
	Instructions  []string `json:"instructions,omitempty"`
}

type Patient struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Contact          string        `json:"contact"`
	Email            string        `json:"email"`
	Status           PatientStatus `json:"status"`
	Gender           string        `json:"gender"`
	Ward             string        `json:"ward"`
	AssignedDoctorID string        `json:"assigned_doctor_id,omitempty"`
	ClinicalNotes
}

type SosPatient struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Status       PatientStatus `json:"status"`
	AdmittedWard string        `json:"admitted_ward"`
	Gender       string        `json:"gender"`
	Email        string        `json:"email,omitempty"`
	ClinicalNotes
}

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "Scheduled"
	AppointmentCancelled AppointmentStatus = "Cancelled"
	AppointmentChecked   AppointmentStatus = "Checked"
)

type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patient_id"`
	PatientName string            `json:"patient_name"`
	DoctorID    string            `json:"doctor_id"`
	DoctorName  string            `json:"doctor_name"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      AppointmentStatus `json:"status"`
}

type LeaveType string

const (
	LeaveNormal    LeaveType = "Normal"
	LeaveEmergency LeaveType = "Emergency"
	LeaveMedical   LeaveType = "Medical"
)

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveAccepted LeaveStatus = "Accepted"
	LeaveDeclined LeaveStatus = "Declined"
)

type LeaveApplication struct {
	ID        string      `json:"id"`
	StaffID   string      `json:"staff_id"`
	StaffName string      `json:"staff_name"`
	StaffRole Role        `json:"staff_role"`
	Type      LeaveType   `json:"type"`
	Reason    string      `json:"reason"`
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Status    LeaveStatus `json:"status"`
}

type AuditLog struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staff_id"`
	StaffName string    `json:"staff_name"`
	StaffRole Role      `json:"staff_role"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

type Medicine struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	BuyPrice  float64 `json:"buy_price"`
	SellPrice float64 `json:"sell_price"`
}

type Ward struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// WardOccupancy is a ward plus the derived count of admitted occupants.
type WardOccupancy struct {
	Ward
	Occupied int `json:"occupied"`
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "Cash"
	PaymentOnline PaymentMethod = "Online"
)

type BilledMedicine struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	SellPrice float64 `json:"sell_price"`
}

type Bill struct {
	ID            string           `json:"id"`
	PatientID     string           `json:"patient_id"`
	PatientName   string           `json:"patient_name"`
	Medicines     []BilledMedicine `json:"medicines"`
	TotalAmount   float64          `json:"total_amount"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	Timestamp     time.Time        `json:"timestamp"`
}

// BillLine is one requested line of a new bill. Name and price are taken from
// the inventory at billing time.
type BillLine struct {
	MedicineID string `json:"medicine_id"`
	Quantity   int    `json:"quantity"`
}

type BillInput struct {
	PatientID     string        `json:"patient_id"`
	PatientName   string        `json:"patient_name"`
	Lines         []BillLine    `json:"lines"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

type LeaveInput struct {
	Type      LeaveType `json:"type"`
	Reason    string    `json:"reason"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
}

// ConversionDetails are the fields the receptionist fills in when an SOS
// patient becomes a regular patient.
type ConversionDetails struct {
	Contact string `json:"contact"`
	Email   string `json:"email"`
}
