package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"TeleClinic/apperrors"
	"TeleClinic/cache"
	"TeleClinic/models"
	"TeleClinic/notifications"
	"TeleClinic/repositories"
	"TeleClinic/schedule"
	"TeleClinic/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSymmetricKey = "0123456789abcdef0123456789abcdef"

// memStore keeps every table behind one mutex, which gives Book the same
// all-or-nothing behaviour as the database transaction.
type memStore struct {
	mu       sync.Mutex
	doctors  map[string]*models.Doctor
	appts    map[string]*models.Appointment
	patients map[string]*models.Patient
	payments map[string]*models.Payment
	paidRuns int
	// stale doctors are returned by GetByID in place of the live row, like a cache
	// entry that has not been invalidated yet.
	stale map[string]models.Doctor
}

func newMemStore() *memStore {
	return &memStore{
		doctors:  map[string]*models.Doctor{},
		appts:    map[string]*models.Appointment{},
		patients: map[string]*models.Patient{},
		payments: map[string]*models.Payment{},
	}
}

func (s *memStore) slots(doctorID, dateKey string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doctors[doctorID].SlotsBooked.Times(dateKey)
}

func (s *memStore) freeze(doctorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale == nil {
		s.stale = map[string]models.Doctor{}
	}
	d := *s.doctors[doctorID]
	d.SlotsBooked = d.SlotsBooked.Clone()
	s.stale[doctorID] = d
}

func (s *memStore) appointment(id string) models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.appts[id]
}

type memDoctors struct{ *memStore }

var _ repositories.DoctorRepository = memDoctors{}

func (m memDoctors) Create(_ context.Context, doctor *models.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doctor.ID == "" {
		doctor.ID = uuid.New().String()
	}
	for _, d := range m.doctors {
		if d.Email == doctor.Email {
			return apperrors.ErrDoctorExists
		}
	}
	cp := *doctor
	cp.SlotsBooked = doctor.SlotsBooked.Clone()
	m.doctors[doctor.ID] = &cp
	return nil
}

func (m memDoctors) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	m.mu.Lock()
	if d, ok := m.stale[id]; ok {
		m.mu.Unlock()
		cp := d
		cp.SlotsBooked = d.SlotsBooked.Clone()
		return &cp, nil
	}
	m.mu.Unlock()
	return m.GetFresh(ctx, id)
}

func (m memDoctors) GetFresh(_ context.Context, id string) (*models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, apperrors.ErrDoctorNotFound
	}
	cp := *d
	cp.SlotsBooked = d.SlotsBooked.Clone()
	return &cp, nil
}

func (m memDoctors) GetAll(_ context.Context, filter repositories.DoctorFilter) ([]models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Doctor
	for _, d := range m.doctors {
		if filter.OnlyAvailable && !d.Available {
			continue
		}
		if filter.Speciality != "" && !strings.EqualFold(d.Speciality, filter.Speciality) {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memDoctors) UpdateProfile(_ context.Context, doctor *models.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[doctor.ID]
	if !ok {
		return apperrors.ErrDoctorNotFound
	}
	slots, available, status := d.SlotsBooked, d.Available, d.Status
	*d = *doctor
	d.SlotsBooked, d.Available, d.Status = slots, available, status
	return nil
}

func (m memDoctors) SetAvailability(_ context.Context, id string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return apperrors.ErrDoctorNotFound
	}
	d.Available = available
	return nil
}

func (m memDoctors) UpdateStatus(_ context.Context, id, status string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return apperrors.ErrDoctorNotFound
	}
	d.Status = status
	d.StatusUpdatedAt = at
	return nil
}

func (m memDoctors) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.doctors[id]; !ok {
		return apperrors.ErrDoctorNotFound
	}
	for _, a := range m.appts {
		if a.DoctorID == id {
			return apperrors.ErrDoctorInUse
		}
	}
	delete(m.doctors, id)
	return nil
}

type memAppointments struct{ *memStore }

var _ repositories.AppointmentRepository = memAppointments{}

func (m memAppointments) Book(_ context.Context, appt *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[appt.DoctorID]
	switch {
	case !ok:
		return apperrors.ErrDoctorNotFound
	case !d.Available:
		return apperrors.ErrDoctorUnavailable
	case d.SlotsBooked.Has(appt.SlotDate, appt.SlotTime):
		return apperrors.ErrSlotUnavailable
	}

	token := 0
	for _, a := range m.appts {
		if a.DoctorID == appt.DoctorID && a.SlotDate == appt.SlotDate && a.TokenNumber > token {
			token = a.TokenNumber
		}
	}
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	appt.TokenNumber = token + 1
	appt.CreatedAt = time.Now()
	d.SlotsBooked[appt.SlotDate] = append(d.SlotsBooked[appt.SlotDate], appt.SlotTime)
	cp := *appt
	m.appts[appt.ID] = &cp
	return nil
}

func (m memAppointments) transition(id string, fn func(a *models.Appointment, d *models.Doctor)) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, apperrors.ErrAppointmentNotFound
	}
	if a.Cancelled {
		return nil, apperrors.ErrAlreadyCancelled
	}
	if a.Completed {
		return nil, apperrors.ErrAlreadyCompleted
	}
	fn(a, m.doctors[a.DoctorID])
	cp := *a
	return &cp, nil
}

func (m memAppointments) Cancel(_ context.Context, id string, at time.Time) (*models.Appointment, error) {
	return m.transition(id, func(a *models.Appointment, d *models.Doctor) {
		a.Cancelled = true
		a.CancelledAt = &at
		var kept []string
		for _, t := range d.SlotsBooked[a.SlotDate] {
			if t != a.SlotTime {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(d.SlotsBooked, a.SlotDate)
		} else {
			d.SlotsBooked[a.SlotDate] = kept
		}
	})
}

func (m memAppointments) Complete(_ context.Context, id string, at time.Time) (*models.Appointment, error) {
	return m.transition(id, func(a *models.Appointment, _ *models.Doctor) {
		a.Completed = true
		a.CompletedAt = &at
	})
}

func (m memAppointments) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, apperrors.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m memAppointments) filter(keep func(a *models.Appointment) bool) []models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, a := range m.appts {
		if keep(a) {
			out = append(out, *a)
		}
	}
	return out
}

func (m memAppointments) ListByPatient(_ context.Context, patientID string) ([]models.Appointment, error) {
	return m.filter(func(a *models.Appointment) bool { return a.PatientID == patientID }), nil
}

func (m memAppointments) ListDoctorDay(_ context.Context, doctorID, dateKey string) ([]models.Appointment, error) {
	out := m.filter(func(a *models.Appointment) bool {
		return a.DoctorID == doctorID && a.SlotDate == dateKey && !a.Cancelled
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TokenNumber < out[j].TokenNumber })
	return out, nil
}

func (m memAppointments) ListByDoctor(_ context.Context, doctorID string, limit int) ([]models.Appointment, error) {
	out := m.filter(func(a *models.Appointment) bool { return a.DoctorID == doctorID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memPatients struct{ *memStore }

func (m memPatients) Upsert(_ context.Context, patient *models.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *patient
	m.patients[patient.ID] = &cp
	return nil
}

func (m memPatients) GetByID(_ context.Context, id string) (*models.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, apperrors.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

type memPayments struct{ *memStore }

func (m memPayments) Create(_ context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m memPayments) GetByProviderRef(_ context.Context, provider, ref string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.Provider == provider && p.ProviderRef == ref {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrPaymentNotFound
}

func (m memPayments) MarkPaid(_ context.Context, paymentID, eventID string) (*models.Payment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return nil, false, apperrors.ErrPaymentNotFound
	}
	if p.Status == models.PaymentStatusPaid {
		cp := *p
		return &cp, false, nil
	}
	m.paidRuns++
	p.Status = models.PaymentStatusPaid
	p.EventID = eventID
	if a, ok := m.appts[p.AppointmentID]; ok {
		a.PaymentState = models.PaymentPaid
		a.PaymentProvider = p.Provider
		a.PaymentRef = p.ProviderRef
	}
	cp := *p
	return &cp, true, nil
}

func (m memPayments) MarkFailed(_ context.Context, paymentID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[paymentID]; ok && p.Status == models.PaymentStatusCreated {
		p.Status = models.PaymentStatusFailed
		p.EventID = eventID
	}
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notifications.Message
}

func (r *recordingNotifier) Notify(_ context.Context, msg notifications.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingNotifier) events() []notifications.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notifications.Event
	for _, m := range r.msgs {
		out = append(out, m.Event)
	}
	return out
}

type testEnv struct {
	store        *memStore
	doctors      *DoctorService
	booking      *BookingService
	queue        *QueueService
	confirm      *ConfirmationService
	notifier     *recordingNotifier
	tokens       *utils.TokenMaker
	loc          *time.Location
	clock        time.Time
	redis        *miniredis.Miniredis
	cache        *cache.Cache
	appointments memAppointments
}

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

// newTestEnv wires the services over the in-memory store with the clock fixed at
// 2025-06-04 09:00 clinic time.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	loc := kolkata(t)
	store := newMemStore()
	tokens, err := utils.NewTokenMaker(testSymmetricKey)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	c, err := cache.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, err)

	env := &testEnv{
		store:        store,
		notifier:     &recordingNotifier{},
		tokens:       tokens,
		loc:          loc,
		clock:        time.Date(2025, time.June, 4, 9, 0, 0, 0, loc),
		redis:        mr,
		cache:        c,
		appointments: memAppointments{store},
	}
	now := func() time.Time { return env.clock }

	env.doctors = NewDoctorService(memDoctors{store}, schedule.DefaultGenerator(), loc)
	env.doctors.now = now
	env.confirm = NewConfirmationService(tokens, memAppointments{store}, "https://clinic.example.com/")
	env.confirm.now = now
	env.booking = NewBookingService(memDoctors{store}, memAppointments{store}, memPatients{store},
		env.confirm, env.notifier, schedule.DefaultGenerator(), loc, zap.NewNop())
	env.booking.now = now
	env.queue = NewQueueService(memDoctors{store}, memAppointments{store}, schedule.DefaultEstimator(), loc)
	env.queue.now = now
	return env
}

func (e *testEnv) addDoctor(t *testing.T, fee float64) *models.Doctor {
	t.Helper()
	available := true
	d, err := e.doctors.Create(context.Background(), models.DoctorInput{
		Name:       "Dr Meera Rao",
		Email:      uuid.New().String() + "@clinic.example.com",
		Speciality: "General physician",
		Fee:        fee,
		Available:  &available,
	})
	require.NoError(t, err)
	return d
}

func bookingReq(doctorID, date, slot string) models.BookingRequest {
	return models.BookingRequest{DoctorID: doctorID, SlotDate: date, SlotTime: slot, Symptoms: []string{"fever"}}
}

func patient(id string) Actor { return Actor{ID: id, Role: utils.RolePatient} }
