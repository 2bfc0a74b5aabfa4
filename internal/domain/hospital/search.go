package hospital

import "strings"

// containsFold reports whether any field contains query, ignoring case.
func containsFold(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Filter keeps the items match accepts for query. An empty query keeps
// everything.
func Filter[T any](items []T, query string, match func(T, string) bool) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if match(it, query) {
			out = append(out, it)
		}
	}
	return out
}

// MatchPatient matches q against id, name, contact, email, status and ward.
func MatchPatient(p Patient, q string) bool {
	return containsFold(q, p.ID, p.Name, p.Contact, p.Email, string(p.Status), p.Ward)
}

// MatchSosPatient matches q against id, name, status and admitted ward.
func MatchSosPatient(p SosPatient, q string) bool {
	return containsFold(q, p.ID, p.Name, string(p.Status), p.AdmittedWard)
}

// MatchAppointment matches q against the patient and doctor names and ids.
func MatchAppointment(a Appointment, q string) bool {
	return containsFold(q, a.PatientName, a.PatientID, a.DoctorName, a.DoctorID)
}

// MatchStaff matches q against id, name, role, username and availability.
func MatchStaff(m StaffMember, q string) bool {
	var availability string
	if m.Doctor != nil {
		availability = string(m.Doctor.Availability)
	}
	return containsFold(q, m.ID, m.Name, string(m.Role), m.Username, availability)
}

// MatchLeave matches q against the application id, applicant and status.
func MatchLeave(l LeaveApplication, q string) bool {
	return containsFold(q, l.ID, l.StaffID, l.StaffName, string(l.Status))
}

// MatchAuditLog matches q against the acting member.
func MatchAuditLog(l AuditLog, q string) bool {
	return containsFold(q, l.StaffID, l.StaffName, string(l.StaffRole))
}

// MatchMedicine matches q against id and name.
func MatchMedicine(m Medicine, q string) bool {
	return containsFold(q, m.ID, m.Name)
}

// MatchWard matches q against id and name.
func MatchWard(w Ward, q string) bool {
	return containsFold(q, w.ID, w.Name)
}

// MatchBill matches q against the bill id and the billed patient.
func MatchBill(b Bill, q string) bool {
	return containsFold(q, b.ID, b.PatientID, b.PatientName)
}

// PatientSearchField is the single column a doctor searches their patients by.
type PatientSearchField string

const (
	SearchByName    PatientSearchField = "Name"
	SearchByContact PatientSearchField = "Contact"
	SearchByID      PatientSearchField = "ID"
	SearchByStatus  PatientSearchField = "Status"
)

// MatchPatientBy matches q against one field only. Unknown fields match
// nothing.
func MatchPatientBy(field PatientSearchField) func(Patient, string) bool {
	return func(p Patient, q string) bool {
		switch field {
		case SearchByName, "":
			return containsFold(q, p.Name)
		case SearchByContact:
			return containsFold(q, p.Contact)
		case SearchByID:
			return containsFold(q, p.ID)
		case SearchByStatus:
			return containsFold(q, string(p.Status))
		}
		return false
	}
}
