package identity

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NoneReported is the placeholder for absent medical-info fields.
const NoneReported = "None reported"

// PatientView is the canonical read-time projection over both schemas.
// Every field is guaranteed present; callers never need to know which
// schema the identity came from.
type PatientView struct {
	ID               uuid.UUID   `json:"id"`
	Source           Source      `json:"source"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Phone            string      `json:"phone"`
	UHID             string      `json:"uhid"`
	Gender           string      `json:"gender"`
	BloodGroup       string      `json:"blood_group"`
	DateOfBirth      string      `json:"date_of_birth"`
	Age              string      `json:"age"`
	Address          Address     `json:"address"`
	MedicalInfo      MedicalInfo `json:"medical_info"`
	InsuranceStatus  string      `json:"insurance_status"`
	OrganDonorStatus string      `json:"organ_donor_status"`
	ImageURL         string      `json:"image_url,omitempty"`
}

// Normalize maps a resolved identity to the canonical view, filling
// placeholders for anything the source schema lacks. Age is derived
// for now and never persisted.
func Normalize(ident Identity, now time.Time) PatientView {
	var v PatientView
	v.Source = ident.Source

	switch ident.Source {
	case SourceUser:
		u := ident.User
		v.ID = u.ID
		v.Name = u.Name
		v.Email = u.Email
		v.Phone = u.Phone
		v.Gender = u.Gender
		v.DateOfBirth = u.DOB
		v.Address = u.Address
		v.ImageURL = u.ImageURL
		v.InsuranceStatus = "Not Insured"
		v.OrganDonorStatus = "No"
	case SourcePatient:
		p := ident.Patient
		v.ID = p.ID
		v.Name = p.PatientName
		v.Email = p.Email
		v.Phone = p.Phone
		v.UHID = p.UHID
		v.Gender = p.Gender
		v.BloodGroup = p.BloodGroup
		v.DateOfBirth = p.DateOfBirth
		v.Address = p.Address
		v.MedicalInfo = p.MedicalInfo
		v.InsuranceStatus = p.InsuranceStatus
		v.OrganDonorStatus = p.OrganDonorStatus
	}

	if v.InsuranceStatus == "" {
		v.InsuranceStatus = "Not Insured"
	}
	if v.OrganDonorStatus == "" {
		v.OrganDonorStatus = "No"
	}
	if v.MedicalInfo.Allergies == "" {
		v.MedicalInfo.Allergies = NoneReported
	}
	if v.MedicalInfo.ChronicConditions == "" {
		v.MedicalInfo.ChronicConditions = NoneReported
	}
	if v.MedicalInfo.CurrentMedications == "" {
		v.MedicalInfo.CurrentMedications = NoneReported
	}
	v.Age = Age(v.DateOfBirth, now)
	return v
}

var dobLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"01/02/2006",
}

// Age derives whole years from a free-text date of birth. Absent,
// unparsable, or future dates yield "N/A". The year count decrements
// by one when the birthday has not yet been reached this year.
func Age(dob string, now time.Time) string {
	if dob == "" {
		return "N/A"
	}
	var born time.Time
	var err error
	for _, layout := range dobLayouts {
		born, err = time.Parse(layout, dob)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "N/A"
	}

	years := now.Year() - born.Year()
	if now.Month() < born.Month() ||
		(now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	if years < 0 {
		return "N/A"
	}
	return strconv.Itoa(years)
}
