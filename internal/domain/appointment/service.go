package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/hms/internal/domain/doctor"
)

var (
	// ErrNotFound is returned when no appointment matches the lookup.
	ErrNotFound = errors.New("appointment not found")
	// ErrDoctorUnavailable is returned when booking a doctor who is
	// not taking appointments.
	ErrDoctorUnavailable = errors.New("doctor not available")
	// ErrSlotTaken is returned when the requested slot is already booked.
	ErrSlotTaken = errors.New("slot not available")
	// ErrNotOwner is returned when a caller acts on an appointment
	// they did not book.
	ErrNotOwner = errors.New("appointment does not belong to caller")
)

// Booking is a request to reserve a slot. Exactly one of UserID and
// PatientID identifies the booker.
type Booking struct {
	UserID    *uuid.UUID
	PatientID *uuid.UUID
	DoctorID  uuid.UUID
	SlotDate  time.Time
	SlotTime  string
}

type Service struct {
	repo    Repository
	doctors doctor.Repository
}

func NewService(repo Repository, doctors doctor.Repository) *Service {
	return &Service{repo: repo, doctors: doctors}
}

// Book reserves a slot with a doctor. The doctor's fee at booking time
// is frozen into the appointment, and the slot is recorded on the
// doctor so later bookings see it as taken.
func (s *Service) Book(ctx context.Context, b Booking) (*Appointment, error) {
	if (b.UserID == nil) == (b.PatientID == nil) {
		return nil, fmt.Errorf("exactly one of user_id and patient_id must be set")
	}
	if b.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if b.SlotTime == "" {
		return nil, fmt.Errorf("slot_time is required")
	}
	if b.SlotDate.IsZero() {
		return nil, fmt.Errorf("slot_date is required")
	}

	doc, err := s.doctors.GetByID(ctx, b.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doc.Available {
		return nil, ErrDoctorUnavailable
	}

	dateKey := b.SlotDate.Format(SlotDateFormat)
	slots := doc.SlotsBooked
	if slots == nil {
		slots = map[string][]string{}
	}
	for _, taken := range slots[dateKey] {
		if taken == b.SlotTime {
			return nil, ErrSlotTaken
		}
	}
	slots[dateKey] = append(slots[dateKey], b.SlotTime)

	appt := &Appointment{
		UserID:     b.UserID,
		PatientID:  b.PatientID,
		DoctorID:   doc.ID,
		DoctorName: doc.Name,
		SlotDate:   b.SlotDate,
		SlotTime:   b.SlotTime,
		Amount:     doc.Fees,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	if err := s.doctors.UpdateSlots(ctx, doc.ID, slots); err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel flips the cancelled flag and releases the slot. When
// requester is non-nil the appointment must belong to that identity.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, requester *uuid.UUID) error {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if requester != nil && appt.IdentityID() != *requester {
		return ErrNotOwner
	}
	if err := s.repo.SetCancelled(ctx, id, true); err != nil {
		return err
	}
	return s.releaseSlot(ctx, appt)
}

func (s *Service) releaseSlot(ctx context.Context, appt *Appointment) error {
	doc, err := s.doctors.GetByID(ctx, appt.DoctorID)
	if err != nil {
		return err
	}
	dateKey := appt.SlotDate.Format(SlotDateFormat)
	if doc.SlotsBooked == nil {
		return nil
	}
	taken := doc.SlotsBooked[dateKey]
	kept := taken[:0]
	for _, t := range taken {
		if t != appt.SlotTime {
			kept = append(kept, t)
		}
	}
	doc.SlotsBooked[dateKey] = kept
	return s.doctors.UpdateSlots(ctx, doc.ID, doc.SlotsBooked)
}

// Complete marks the appointment finished.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetCompleted(ctx, id, true)
}

// Activate undoes a cancellation.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetCancelled(ctx, id, false)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListForIdentity returns the identity's appointments, newest slot first.
func (s *Service) ListForIdentity(ctx context.Context, identityID uuid.UUID) ([]*Appointment, error) {
	return s.repo.ListByIdentity(ctx, identityID)
}

// ListAll returns every appointment plus the revenue breakdown over
// the full set.
func (s *Service) ListAll(ctx context.Context, now time.Time) ([]*Appointment, RevenueStats, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, RevenueStats{}, err
	}
	return appts, ComputeRevenueStats(appts, now), nil
}

// DoctorDashboard summarizes a doctor's activity: earnings count paid
// or completed appointments, patients are distinct booker identities.
type DoctorDashboard struct {
	Earnings     float64        `json:"earnings"`
	Appointments int            `json:"appointments"`
	Patients     int            `json:"patients"`
	Latest       []*Appointment `json:"latest_appointments"`
}

func (s *Service) DashboardForDoctor(ctx context.Context, doctorID uuid.UUID) (*DoctorDashboard, error) {
	appts, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	dash := &DoctorDashboard{Appointments: len(appts)}
	seen := map[uuid.UUID]bool{}
	for _, a := range appts {
		if a.IsCompleted || a.Payment {
			dash.Earnings += a.Amount
		}
		if id := a.IdentityID(); id != uuid.Nil && !seen[id] {
			seen[id] = true
			dash.Patients++
		}
	}
	n := len(appts)
	if n > 5 {
		n = 5
	}
	dash.Latest = appts[:n]
	return dash, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}
