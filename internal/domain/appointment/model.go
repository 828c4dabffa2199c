package appointment

import (
	"time"

	"github.com/google/uuid"
)

// SlotDateFormat is the calendar-day key used for slot bookkeeping.
const SlotDateFormat = "2006-01-02"

// Appointment is a booked visit. Exactly one of UserID/PatientID is
// set, depending on which identity schema the booker lives in. Rows
// are never deleted; cancellation and completion are flag flips.
type Appointment struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	PatientID   *uuid.UUID `json:"patient_id,omitempty"`
	DoctorID    uuid.UUID  `json:"doctor_id"`
	DoctorName  string     `json:"doctor_name,omitempty"`
	SlotDate    time.Time  `json:"slot_date"`
	SlotTime    string     `json:"slot_time"`
	Amount      float64    `json:"amount"`
	Cancelled   bool       `json:"cancelled"`
	IsCompleted bool       `json:"is_completed"`
	Payment     bool       `json:"payment"`
	BookedAt    time.Time  `json:"booked_at"`
}

// IdentityID returns whichever identity reference is set.
func (a *Appointment) IdentityID() uuid.UUID {
	if a.UserID != nil {
		return *a.UserID
	}
	if a.PatientID != nil {
		return *a.PatientID
	}
	return uuid.Nil
}
