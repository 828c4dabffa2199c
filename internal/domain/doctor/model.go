package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Address is the practice address shown in the public directory.
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2,omitempty"`
}

// Doctor is a practitioner who can receive bookings and author
// clinical records. SlotsBooked maps a slot date (YYYY-MM-DD) to the
// times already taken on that date.
type Doctor struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	PasswordHash string              `json:"-"`
	ImageURL     string              `json:"image_url,omitempty"`
	Speciality   string              `json:"speciality"`
	Degree       string              `json:"degree"`
	Experience   string              `json:"experience"`
	About        string              `json:"about,omitempty"`
	Available    bool                `json:"available"`
	Fees         float64             `json:"fees"`
	Address      Address             `json:"address"`
	SlotsBooked  map[string][]string `json:"slots_booked,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}
