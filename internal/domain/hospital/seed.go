package hospital

import "time"

// Seed is an initial set of collections for a new store.
type Seed struct {
	Staff             []StaffMember
	Patients          []Patient
	SosPatients       []SosPatient
	Appointments      []Appointment
	Wards             []Ward
	LeaveApplications []LeaveApplication
	AuditLogs         []AuditLog
	Medicines         []Medicine
}

// DefaultSeed returns the demo roster and records the service starts with.
// Seeded staff have no password hash, so they log in with the default
// password.
func DefaultSeed() Seed {
	at := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02 03:04:05 PM", s)
		return t
	}
	return Seed{
		Staff: []StaffMember{
			{ID: "D001", Name: "Dr. Evelyn Reed", Role: RoleDoctor, Username: "doctor", Email: "e.reed@hospital.com", Gender: "Female", Contact: "111-222-3333",
				Doctor: &DoctorProfile{Specialty: "Cardiology", Availability: Available}},
			{ID: "R001", Name: "John Smith", Role: RoleReceptionist, Username: "receptionist", Email: "j.smith@hospital.com", Gender: "Male", Contact: "222-333-4444"},
			{ID: "PH001", Name: "Maria Garcia", Role: RolePharmacy, Username: "pharmacy", Email: "m.garcia@hospital.com", Gender: "Female", Contact: "333-444-5555"},
			{ID: "A001", Name: "Chen Wei", Role: RoleAdmin, Username: "admin", Email: "c.wei@hospital.com", Gender: "Male", Contact: "444-555-6666"},
			{ID: "M001", Name: "Alice Wonder", Role: RoleMaster, Username: "master", Email: "a.wonder@hospital.com", Gender: "Female", Contact: "555-666-7777"},
		},
		Patients: []Patient{
			{ID: "P1234", Name: "John Doe", Contact: "123-456-7890", Email: "j.doe@email.com", Status: PatientAdmitted, Gender: "Male", Ward: "General Medicine", AssignedDoctorID: "D001"},
			{ID: "P5678", Name: "Alice Smith", Contact: "987-654-3210", Email: "a.smith@email.com", Status: PatientAdmitted, Gender: "Female", Ward: "Cardiology", AssignedDoctorID: "D001"},
		},
		SosPatients: []SosPatient{
			{ID: "SOS2301", Name: "Jane Doe", Status: PatientAdmitted, AdmittedWard: "Emergency", Gender: "Female"},
			{ID: "SOS2302", Name: "Unknown Male", Status: PatientAdmitted, AdmittedWard: "ICU", Gender: "Male"},
		},
		Wards: []Ward{
			{ID: "W001", Name: "General Medicine", Capacity: 20},
			{ID: "W002", Name: "Cardiology", Capacity: 15},
			{ID: "W003", Name: "Emergency", Capacity: 10},
			{ID: "W004", Name: "ICU", Capacity: 8},
		},
		LeaveApplications: []LeaveApplication{
			{ID: "L001", StaffID: "D001", StaffName: "Dr. Evelyn Reed", StaffRole: RoleDoctor, Type: LeaveMedical, Reason: "Personal medical procedure.", StartDate: "2025-04-10", EndDate: "2025-04-15", Status: LeavePending},
			{ID: "L002", StaffID: "R001", StaffName: "John Smith", StaffRole: RoleReceptionist, Type: LeaveNormal, Reason: "Family vacation.", StartDate: "2025-05-20", EndDate: "2025-05-25", Status: LeaveAccepted},
			{ID: "L003", StaffID: "A001", StaffName: "Chen Wei", StaffRole: RoleAdmin, Type: LeaveEmergency, Reason: "Urgent family matter.", StartDate: "2025-03-22", EndDate: "2025-03-23", Status: LeavePending},
		},
		AuditLogs: []AuditLog{
			{ID: "AL001", StaffID: "R001", StaffName: "John Smith", StaffRole: RoleReceptionist, Username: "receptionist", Action: "Added new patient: P20240320", Timestamp: at("2025-03-20 09:15:30 AM")},
			{ID: "AL002", StaffID: "D001", StaffName: "Dr. Evelyn Reed", StaffRole: RoleDoctor, Username: "doctor", Action: "Updated patient report for P20240319", Timestamp: at("2025-03-20 10:05:12 AM")},
			{ID: "AL003", StaffID: "M001", StaffName: "Alice Wonder", StaffRole: RoleMaster, Username: "master", Action: "Updated hospital settings", Timestamp: at("2025-03-19 05:30:00 PM")},
			{ID: "AL004", StaffID: "A001", StaffName: "Chen Wei", StaffRole: RoleAdmin, Username: "admin", Action: "Logged in", Timestamp: at("2025-03-20 08:55:00 AM")},
		},
		Medicines: []Medicine{
			{ID: "MED001", Name: "Paracetamol 500mg", Quantity: 1000, BuyPrice: 0.05, SellPrice: 0.10},
			{ID: "MED002", Name: "Ibuprofen 200mg", Quantity: 800, BuyPrice: 0.08, SellPrice: 0.15},
			{ID: "MED003", Name: "Amoxicillin 250mg", Quantity: 500, BuyPrice: 0.20, SellPrice: 0.35},
			{ID: "MED004", Name: "Lisinopril 10mg", Quantity: 300, BuyPrice: 0.15, SellPrice: 0.25},
			{ID: "MED005", Name: "Aspirin 75mg", Quantity: 1200, BuyPrice: 0.02, SellPrice: 0.05},
		},
	}
}
