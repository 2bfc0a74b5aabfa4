package hospital

// StatCard is one labelled counter on a role's landing page.
type StatCard struct {
	Title string `json:"title"`
	Value any    `json:"value"`
}

// Dashboard is the landing-page summary for one identity.
type Dashboard struct {
	Role    Role       `json:"role"`
	Welcome string     `json:"welcome"`
	Cards   []StatCard `json:"cards"`
}

// Dashboard builds the landing-page counters for viewer on date today
// (YYYY-MM-DD). Receptionists and doctors get counters; other roles get a
// greeting only.
func (s *Store) Dashboard(viewer StaffMember, today string) Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := Dashboard{Role: viewer.Role, Welcome: "Welcome, " + string(viewer.Role) + " User!"}
	switch viewer.Role {
	case RoleReceptionist:
		var todays, admitted int
		for _, a := range s.appointments {
			if a.Date == today {
				todays++
			}
		}
		for _, p := range s.patients {
			if p.Status == PatientAdmitted {
				admitted++
			}
		}
		d.Cards = []StatCard{
			{Title: "Today's Appointments", Value: todays},
			{Title: "Total Patients", Value: len(s.patients)},
			{Title: "Admitted Patients", Value: admitted},
		}
	case RoleDoctor:
		var todays, assigned int
		for _, a := range s.appointments {
			if a.Date == today && a.DoctorID == viewer.ID && a.Status == AppointmentScheduled {
				todays++
			}
		}
		for _, p := range s.patients {
			if p.AssignedDoctorID == viewer.ID {
				assigned++
			}
		}
		status := Available
		if i := indexOf(s.staff, viewer.ID, staffID); i >= 0 && s.staff[i].Doctor != nil {
			status = s.staff[i].Doctor.Availability
		}
		d.Cards = []StatCard{
			{Title: "Your Appointments Today", Value: todays},
			{Title: "Your Assigned Patients", Value: assigned},
			{Title: "Your Status", Value: string(status)},
		}
	}
	return d
}
