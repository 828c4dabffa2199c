package clinical

import (
	"time"

	"github.com/google/uuid"
)

// Clinical status values a record may carry.
const (
	StatusStable           = "Stable"
	StatusCritical         = "Critical"
	StatusImproving        = "Improving"
	StatusDeteriorating    = "Deteriorating"
	StatusResolved         = "Resolved"
	StatusUnderObservation = "Under Observation"
)

var validStatuses = map[string]bool{
	StatusStable:           true,
	StatusCritical:         true,
	StatusImproving:        true,
	StatusDeteriorating:    true,
	StatusResolved:         true,
	StatusUnderObservation: true,
}

// VitalSigns captured during an encounter. All fields are optional.
type VitalSigns struct {
	BloodPressure    string `json:"blood_pressure,omitempty"`
	HeartRate        string `json:"heart_rate,omitempty"`
	Temperature      string `json:"temperature,omitempty"`
	RespiratoryRate  string `json:"respiratory_rate,omitempty"`
	OxygenSaturation string `json:"oxygen_saturation,omitempty"`
}

type Prescription struct {
	Medicine  string `json:"medicine"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type LabTest struct {
	Name           string `json:"name"`
	Result         string `json:"result,omitempty"`
	Date           string `json:"date,omitempty"`
	NormalRange    string `json:"normal_range,omitempty"`
	Interpretation string `json:"interpretation,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ClinicalRecord is one encounter's documentation. Records are
// immutable after creation; corrections are new records.
type ClinicalRecord struct {
	ID                    uuid.UUID      `json:"id"`
	PatientID             uuid.UUID      `json:"patient_id"`
	DoctorID              uuid.UUID      `json:"doctor_id"`
	EncounterType         string         `json:"encounter_type"`
	EncounterDate         time.Time      `json:"encounter_date"`
	ReasonForVisit        string         `json:"reason_for_visit,omitempty"`
	Diagnosis             string         `json:"diagnosis,omitempty"`
	Treatment             string         `json:"treatment,omitempty"`
	VitalSigns            VitalSigns     `json:"vital_signs"`
	Prescriptions         []Prescription `json:"prescriptions,omitempty"`
	LabTests              []LabTest      `json:"lab_tests,omitempty"`
	Notes                 string         `json:"notes,omitempty"`
	FollowUpDate          *time.Time     `json:"follow_up_date,omitempty"`
	Attachments           []Attachment   `json:"attachments,omitempty"`
	CurrentClinicalStatus string         `json:"current_clinical_status"`
	CreatedAt             time.Time      `json:"created_at"`
}
