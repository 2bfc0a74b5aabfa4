package hospital

import (
	"context"
)

func (s *Store) patientIDTaken(id string) bool {
	return indexOf(s.patients, id, patientID) >= 0
}

func (s *Store) sosIDTaken(id string) bool {
	return indexOf(s.sosPatients, id, sosPatientID) >= 0
}

// AddPatient appends a new patient. A missing status defaults to Admitted.
func (s *Store) AddPatient(_ context.Context, p Patient) (Patient, error) {
	if err := ValidatePatient(p); err != nil {
		return Patient{}, err
	}
	if p.Status == "" {
		p.Status = PatientAdmitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p = clonePatient(p)
	p.ID = s.ids.nextFree(prefixPatient, s.patientIDTaken)
	s.patients = withAppended(s.patients, p)
	return clonePatient(p), nil
}

// UpdatePatient replaces the whole record with the same id.
func (s *Store) UpdatePatient(_ context.Context, p Patient) (Patient, error) {
	if err := ValidatePatient(p); err != nil {
		return Patient{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.patients, p.ID, patientID)
	if i < 0 {
		return Patient{}, notFound("patient", p.ID)
	}
	if p.Status == "" {
		p.Status = s.patients[i].Status
	}
	p = clonePatient(p)
	s.patients = withReplaced(s.patients, i, p)
	return clonePatient(p), nil
}

// UpdatePatientDetails replaces the demographic fields of the patient with
// p.ID and keeps the stored clinical lists, so a reception edit never races a
// doctor's report update.
func (s *Store) UpdatePatientDetails(_ context.Context, p Patient) (Patient, error) {
	if err := ValidatePatient(p); err != nil {
		return Patient{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.patients, p.ID, patientID)
	if i < 0 {
		return Patient{}, notFound("patient", p.ID)
	}
	if p.Status == "" {
		p.Status = s.patients[i].Status
	}
	p.ClinicalNotes = cloneNotes(s.patients[i].ClinicalNotes)
	s.patients = withReplaced(s.patients, i, p)
	return clonePatient(p), nil
}

// UpdatePatientReport applies patch to the patient's clinical lists, leaving
// demographics untouched.
func (s *Store) UpdatePatientReport(_ context.Context, id string, patch ReportPatch) (Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.patients, id, patientID)
	if i < 0 {
		return Patient{}, notFound("patient", id)
	}
	p := clonePatient(s.patients[i])
	p.ClinicalNotes = patch.apply(p.ClinicalNotes)
	s.patients = withReplaced(s.patients, i, p)
	return clonePatient(p), nil
}

// Patients lists every patient.
func (s *Store) Patients() []Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.patients, clonePatient)
}

// Patient returns the patient with id.
func (s *Store) Patient(id string) (Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.patients, id, patientID)
	if i < 0 {
		return Patient{}, notFound("patient", id)
	}
	return clonePatient(s.patients[i]), nil
}

// PatientsOfDoctor lists the patients assigned to doctorID.
func (s *Store) PatientsOfDoctor(doctorID string) []Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Patient
	for _, p := range s.patients {
		if p.AssignedDoctorID == doctorID {
			out = append(out, clonePatient(p))
		}
	}
	return out
}

// AddSosPatient appends an emergency admission. Status defaults to Admitted.
func (s *Store) AddSosPatient(_ context.Context, p SosPatient) (SosPatient, error) {
	if err := ValidateSosPatient(p); err != nil {
		return SosPatient{}, err
	}
	if p.Status == "" {
		p.Status = PatientAdmitted
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p = cloneSosPatient(p)
	p.ID = s.ids.nextFree(prefixSosPatient, s.sosIDTaken)
	s.sosPatients = withAppended(s.sosPatients, p)
	return cloneSosPatient(p), nil
}

// UpdateSosPatient replaces the whole record with the same id. A blank status
// keeps the stored one.
func (s *Store) UpdateSosPatient(_ context.Context, p SosPatient) (SosPatient, error) {
	if err := ValidateSosPatient(p); err != nil {
		return SosPatient{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.sosPatients, p.ID, sosPatientID)
	if i < 0 {
		return SosPatient{}, notFound("sos patient", p.ID)
	}
	if p.Status == "" {
		p.Status = s.sosPatients[i].Status
	}
	p = cloneSosPatient(p)
	s.sosPatients = withReplaced(s.sosPatients, i, p)
	return cloneSosPatient(p), nil
}

// UpdateSosPatientDetails replaces the admission fields of the SOS patient
// with p.ID and keeps the stored clinical lists.
func (s *Store) UpdateSosPatientDetails(_ context.Context, p SosPatient) (SosPatient, error) {
	if err := ValidateSosPatient(p); err != nil {
		return SosPatient{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.sosPatients, p.ID, sosPatientID)
	if i < 0 {
		return SosPatient{}, notFound("sos patient", p.ID)
	}
	if p.Status == "" {
		p.Status = s.sosPatients[i].Status
	}
	p.ClinicalNotes = cloneNotes(s.sosPatients[i].ClinicalNotes)
	s.sosPatients = withReplaced(s.sosPatients, i, p)
	return cloneSosPatient(p), nil
}

// UpdateSosPatientReport applies patch to the SOS patient's clinical lists.
func (s *Store) UpdateSosPatientReport(_ context.Context, id string, patch ReportPatch) (SosPatient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.sosPatients, id, sosPatientID)
	if i < 0 {
		return SosPatient{}, notFound("sos patient", id)
	}
	p := cloneSosPatient(s.sosPatients[i])
	p.ClinicalNotes = patch.apply(p.ClinicalNotes)
	s.sosPatients = withReplaced(s.sosPatients, i, p)
	return cloneSosPatient(p), nil
}

// RemoveSosPatient hard-deletes the record; there is no recycle bin for SOS
// patients.
func (s *Store) RemoveSosPatient(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.sosPatients, id, sosPatientID)
	if i < 0 {
		return notFound("sos patient", id)
	}
	s.sosPatients = withRemoved(s.sosPatients, i)
	return nil
}

// ConvertSosPatient turns an SOS admission into a regular admitted patient and
// deletes the SOS record, as one step. Name, gender and ward are carried
// over; contact and email come from details, falling back to the SOS email.
func (s *Store) ConvertSosPatient(_ context.Context, id string, details ConversionDetails) (Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.sosPatients, id, sosPatientID)
	if i < 0 {
		return Patient{}, notFound("sos patient", id)
	}
	src := s.sosPatients[i]
	p := Patient{
		Name:          src.Name,
		Gender:        src.Gender,
		Ward:          src.AdmittedWard,
		Status:        PatientAdmitted,
		Contact:       details.Contact,
		Email:         details.Email,
		ClinicalNotes: cloneNotes(src.ClinicalNotes),
	}
	if p.Email == "" {
		p.Email = src.Email
	}
	p.ID = s.ids.nextFree(prefixPatient, s.patientIDTaken)

	s.patients = withAppended(s.patients, p)
	s.sosPatients = withRemoved(s.sosPatients, i)
	return clonePatient(p), nil
}

// SosPatients lists every SOS patient.
func (s *Store) SosPatients() []SosPatient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.sosPatients, cloneSosPatient)
}

// SosPatient returns the SOS patient with id.
func (s *Store) SosPatient(id string) (SosPatient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.sosPatients, id, sosPatientID)
	if i < 0 {
		return SosPatient{}, notFound("sos patient", id)
	}
	return cloneSosPatient(s.sosPatients[i]), nil
}
