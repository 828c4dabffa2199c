package identity

import (
	"time"

	"github.com/google/uuid"
)

// Source tags which schema an identity was resolved from.
type Source string

const (
	SourceUser    Source = "user"
	SourcePatient Source = "patient"
)

type Address struct {
	Line1   string `json:"line1,omitempty"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}

type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

type MedicalInfo struct {
	Height             float64          `json:"height,omitempty"`
	Weight             float64          `json:"weight,omitempty"`
	Allergies          string           `json:"allergies,omitempty"`
	ChronicConditions  string           `json:"chronic_conditions,omitempty"`
	CurrentMedications string           `json:"current_medications,omitempty"`
	EmergencyContact   EmergencyContact `json:"emergency_contact"`
}

// User is the generic identity created by self-signup. Dates of birth
// arrive as free text from the signup form and are kept as entered;
// age is always derived at read time.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	DOB          string    `json:"dob,omitempty"`
	Address      Address   `json:"address"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PatientRecord is the dedicated clinical identity entered by admins.
type PatientRecord struct {
	ID               uuid.UUID   `json:"id"`
	UHID             string      `json:"uhid"`
	AlternateUHID    string      `json:"alternate_uhid,omitempty"`
	PatientName      string      `json:"patient_name"`
	Email            string      `json:"email"`
	Phone            string      `json:"phone"`
	DateOfBirth      string      `json:"date_of_birth,omitempty"`
	Gender           string      `json:"gender"`
	BloodGroup       string      `json:"blood_group,omitempty"`
	Occupation       string      `json:"occupation,omitempty"`
	Address          Address     `json:"address"`
	MedicalInfo      MedicalInfo `json:"medical_info"`
	InsuranceStatus  string      `json:"insurance_status"`
	OrganDonorStatus string      `json:"organ_donor_status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// Identity is the tagged union produced by resolution: exactly one of
// User and Patient is set, per Source.
type Identity struct {
	Source  Source         `json:"source"`
	User    *User          `json:"user,omitempty"`
	Patient *PatientRecord `json:"patient,omitempty"`
}

// ID returns the identifier of whichever record is set.
func (i Identity) ID() uuid.UUID {
	switch i.Source {
	case SourceUser:
		if i.User != nil {
			return i.User.ID
		}
	case SourcePatient:
		if i.Patient != nil {
			return i.Patient.ID
		}
	}
	return uuid.Nil
}

// Allowed enum values for patient fields.
var (
	validGenders = map[string]bool{"Male": true, "Female": true, "Other": true}

	validBloodGroups = map[string]bool{
		"A+": true, "A-": true, "B+": true, "B-": true,
		"AB+": true, "AB-": true, "O+": true, "O-": true,
	}

	validInsuranceStatuses = map[string]bool{
		"Insured": true, "Not Insured": true, "Pending": true,
	}

	validOrganDonorStatuses = map[string]bool{"Yes": true, "No": true}
)
