package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAge_Fixtures(t *testing.T) {
	cases := []struct {
		name string
		dob  string
		now  time.Time
		want string
	}{
		{"day before birthday", "2000-06-15", time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), "23"},
		{"on birthday", "2000-06-15", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "24"},
		{"month before birthday", "2000-06-15", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), "23"},
		{"rfc3339 dob", "2000-06-15T00:00:00Z", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "24"},
		{"us format dob", "06/15/2000", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "24"},
		{"newborn", "2024-06-01", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "0"},
		{"empty", "", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "N/A"},
		{"garbage", "not-a-date", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "N/A"},
		{"future dob", "2030-01-01", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "N/A"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Age(tc.dob, tc.now); got != tc.want {
				t.Errorf("Age(%q) = %q, want %q", tc.dob, got, tc.want)
			}
		})
	}
}

func TestNormalize_UserSource(t *testing.T) {
	u := &User{
		ID:    uuid.New(),
		Name:  "Asha Verma",
		Email: "asha@example.test",
		Phone: "9876543210",
		DOB:   "2000-06-15",
	}
	v := Normalize(Identity{Source: SourceUser, User: u}, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	if v.Source != SourceUser {
		t.Errorf("expected source user, got %s", v.Source)
	}
	if v.UHID != "" {
		t.Errorf("user-source identities have no UHID, got %q", v.UHID)
	}
	if v.Age != "24" {
		t.Errorf("expected age 24, got %q", v.Age)
	}
	if v.MedicalInfo.Allergies != NoneReported {
		t.Errorf("expected %q placeholder, got %q", NoneReported, v.MedicalInfo.Allergies)
	}
	if v.MedicalInfo.ChronicConditions != NoneReported || v.MedicalInfo.CurrentMedications != NoneReported {
		t.Error("expected placeholders for all medical-info text fields")
	}
	if v.InsuranceStatus != "Not Insured" {
		t.Errorf("expected default insurance status, got %q", v.InsuranceStatus)
	}
	if v.OrganDonorStatus != "No" {
		t.Errorf("expected default organ donor status, got %q", v.OrganDonorStatus)
	}
}

func TestNormalize_PatientSource(t *testing.T) {
	p := &PatientRecord{
		ID:          uuid.New(),
		UHID:        "UH-1001",
		PatientName: "Ravi Kumar",
		Email:       "ravi@example.test",
		Phone:       "9876543210",
		Gender:      "Male",
		BloodGroup:  "O+",
		DateOfBirth: "1990-01-01",
		MedicalInfo: MedicalInfo{Allergies: "Penicillin"},
	}
	v := Normalize(Identity{Source: SourcePatient, Patient: p}, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	if v.Source != SourcePatient {
		t.Errorf("expected source patient, got %s", v.Source)
	}
	if v.Name != "Ravi Kumar" {
		t.Errorf("expected patient_name mapped to name, got %q", v.Name)
	}
	if v.UHID != "UH-1001" {
		t.Errorf("expected UHID carried over, got %q", v.UHID)
	}
	if v.Age != "34" {
		t.Errorf("expected age 34, got %q", v.Age)
	}
	if v.MedicalInfo.Allergies != "Penicillin" {
		t.Errorf("reported allergies must stay, got %q", v.MedicalInfo.Allergies)
	}
	if v.MedicalInfo.ChronicConditions != NoneReported {
		t.Errorf("absent chronic conditions should default, got %q", v.MedicalInfo.ChronicConditions)
	}
}
