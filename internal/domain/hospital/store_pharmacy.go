package hospital

import (
	"context"
	"fmt"
)

func (s *Store) medicineIDTaken(id string) bool {
	return indexOf(s.medicines, id, medicineID) >= 0 || indexOf(s.recycledMedicines, id, medicineID) >= 0
}

// AddMedicine adds a stock item; the newest item is listed first.
func (s *Store) AddMedicine(_ context.Context, m Medicine) (Medicine, error) {
	if err := ValidateMedicine(m); err != nil {
		return Medicine{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.ids.nextFree(prefixMedicine, s.medicineIDTaken)
	s.medicines = withPrepended(s.medicines, m)
	return m, nil
}

// UpdateMedicine replaces the stock item with m.ID.
func (s *Store) UpdateMedicine(_ context.Context, m Medicine) (Medicine, error) {
	if err := ValidateMedicine(m); err != nil {
		return Medicine{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.medicines, m.ID, medicineID)
	if i < 0 {
		return Medicine{}, notFound("medicine", m.ID)
	}
	s.medicines = withReplaced(s.medicines, i, m)
	return m, nil
}

// RemoveMedicine moves a stock item to the recycle bin.
func (s *Store) RemoveMedicine(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.medicines, id, medicineID)
	if i < 0 {
		return notFound("medicine", id)
	}
	s.recycledMedicines = withAppended(s.recycledMedicines, s.medicines[i])
	s.medicines = withRemoved(s.medicines, i)
	return nil
}

// RestoreMedicine moves a recycled item back into stock.
func (s *Store) RestoreMedicine(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.recycledMedicines, id, medicineID)
	if i < 0 {
		return notFound("recycled medicine", id)
	}
	s.medicines = withAppended(s.medicines, s.recycledMedicines[i])
	s.recycledMedicines = withRemoved(s.recycledMedicines, i)
	return nil
}

// PermanentlyDeleteMedicine drops a recycled item for good. Items still in
// stock are not found.
func (s *Store) PermanentlyDeleteMedicine(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.recycledMedicines, id, medicineID)
	if i < 0 {
		return notFound("recycled medicine", id)
	}
	s.recycledMedicines = withRemoved(s.recycledMedicines, i)
	return nil
}

// Medicines lists the stock, newest first.
func (s *Store) Medicines() []Medicine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.medicines, same[Medicine])
}

// RecycledMedicines lists the medicine recycle bin.
func (s *Store) RecycledMedicines() []Medicine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.recycledMedicines, same[Medicine])
}

// Medicine returns the stock item with id.
func (s *Store) Medicine(id string) (Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.medicines, id, medicineID)
	if i < 0 {
		return Medicine{}, notFound("medicine", id)
	}
	return s.medicines[i], nil
}

// billPatientName resolves the billed patient among regular and SOS patients.
// Caller holds s.mu.
func (s *Store) billPatientName(id string) (string, bool) {
	if i := indexOf(s.patients, id, patientID); i >= 0 {
		return s.patients[i].Name, true
	}
	if i := indexOf(s.sosPatients, id, sosPatientID); i >= 0 {
		return s.sosPatients[i].Name, true
	}
	return "", false
}

// AddBill records a sale and takes the billed quantities out of stock. Every
// line is checked against current stock first; if any line cannot be filled
// nothing changes and an *InsufficientStockError is returned. Lines naming the
// same medicine are summed for the check. The total is the sum of
// quantity x sell price, rounded to cents.
func (s *Store) AddBill(_ context.Context, in BillInput) (Bill, error) {
	if blank(in.PatientID) {
		return Bill{}, invalid("patient_id", "is required")
	}
	if len(in.Lines) == 0 {
		return Bill{}, invalid("lines", "at least one medicine is required")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentCash
	}
	if in.PaymentMethod != PaymentCash && in.PaymentMethod != PaymentOnline {
		return Bill{}, ErrUnsupportedPayment
	}
	for _, l := range in.Lines {
		if blank(l.MedicineID) {
			return Bill{}, invalid("medicine_id", "is required")
		}
		if l.Quantity <= 0 {
			return Bill{}, invalid("quantity", fmt.Sprintf("must be positive for %s", l.MedicineID))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.billPatientName(in.PatientID)
	if !ok {
		return Bill{}, notFound("patient", in.PatientID)
	}

	requested := make(map[string]int, len(in.Lines))
	for _, l := range in.Lines {
		requested[l.MedicineID] += l.Quantity
	}
	stock := make([]Medicine, len(s.medicines))
	copy(stock, s.medicines)
	for id, qty := range requested {
		i := indexOf(stock, id, medicineID)
		if i < 0 {
			return Bill{}, notFound("medicine", id)
		}
		if stock[i].Quantity < qty {
			return Bill{}, &InsufficientStockError{MedicineID: id, Requested: qty, Available: stock[i].Quantity}
		}
	}

	b := Bill{
		ID:            s.ids.Next(prefixBill),
		PatientID:     in.PatientID,
		PatientName:   name,
		PaymentMethod: in.PaymentMethod,
		Timestamp:     s.now(),
	}
	var total float64
	for _, l := range in.Lines {
		i := indexOf(stock, l.MedicineID, medicineID)
		stock[i].Quantity -= l.Quantity
		b.Medicines = append(b.Medicines, BilledMedicine{
			ID:        stock[i].ID,
			Name:      stock[i].Name,
			Quantity:  l.Quantity,
			SellPrice: stock[i].SellPrice,
		})
		total += float64(l.Quantity) * stock[i].SellPrice
	}
	b.TotalAmount = roundCents(total)

	s.medicines = stock
	s.bills = withPrepended(s.bills, b)
	return cloneBill(b), nil
}

// Bills lists every bill, newest first.
func (s *Store) Bills() []Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.bills, cloneBill)
}
