package clinical

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func fixtureRecords() []*ClinicalRecord {
	return []*ClinicalRecord{
		{EncounterType: "Consultation", EncounterDate: day(3), CurrentClinicalStatus: StatusStable, Diagnosis: "a"},
		{EncounterType: "Emergency", EncounterDate: day(1), CurrentClinicalStatus: StatusCritical, Diagnosis: "b"},
		{EncounterType: "Follow-up", EncounterDate: day(2), CurrentClinicalStatus: StatusStable, Diagnosis: "c"},
		{EncounterType: "Consultation", EncounterDate: day(2), CurrentClinicalStatus: StatusImproving, Diagnosis: "d"},
	}
}

func diagnoses(recs []*ClinicalRecord) string {
	var s string
	for _, r := range recs {
		s += r.Diagnosis
	}
	return s
}

func TestFilterSort_Defaults(t *testing.T) {
	got := FilterSort(fixtureRecords(), Options{})
	// newest first; the two day-2 records keep their input order
	if want := "acdb"; diagnoses(got) != want {
		t.Errorf("expected order %s, got %s", want, diagnoses(got))
	}
}

func TestFilterSort_DateAscending(t *testing.T) {
	got := FilterSort(fixtureRecords(), Options{SortBy: "date", Order: "asc"})
	if want := "bcda"; diagnoses(got) != want {
		t.Errorf("expected order %s, got %s", want, diagnoses(got))
	}
}

func TestFilterSort_StatusFilterCaseInsensitive(t *testing.T) {
	got := FilterSort(fixtureRecords(), Options{Status: "stable", Order: "asc"})
	if len(got) != 2 {
		t.Fatalf("expected 2 stable records, got %d", len(got))
	}
	if want := "ca"; diagnoses(got) != want {
		t.Errorf("expected order %s, got %s", want, diagnoses(got))
	}
}

func TestFilterSort_TypeFilterPreservesOrder(t *testing.T) {
	got := FilterSort(fixtureRecords(), Options{EncounterType: "consultation", SortBy: "status"})
	if len(got) != 2 {
		t.Fatalf("expected 2 consultations, got %d", len(got))
	}
	// desc status sort: Stable > Improving
	if want := "ad"; diagnoses(got) != want {
		t.Errorf("expected order %s, got %s", want, diagnoses(got))
	}
}

func TestFilterSort_AllDisablesFilters(t *testing.T) {
	got := FilterSort(fixtureRecords(), Options{Status: "ALL", EncounterType: "All"})
	if len(got) != 4 {
		t.Errorf("expected all 4 records, got %d", len(got))
	}
}

func TestFilterSort_InputUntouched(t *testing.T) {
	in := fixtureRecords()
	FilterSort(in, Options{SortBy: "date", Order: "asc"})
	if want := "abcd"; diagnoses(in) != want {
		t.Errorf("input slice was reordered: %s", diagnoses(in))
	}
}

func TestFilterSort_StatusSortStable(t *testing.T) {
	in := []*ClinicalRecord{
		{CurrentClinicalStatus: StatusStable, Diagnosis: "x"},
		{CurrentClinicalStatus: StatusStable, Diagnosis: "y"},
		{CurrentClinicalStatus: StatusCritical, Diagnosis: "z"},
	}
	got := FilterSort(in, Options{SortBy: "status", Order: "asc"})
	if want := "zxy"; diagnoses(got) != want {
		t.Errorf("expected order %s, got %s", want, diagnoses(got))
	}
}

func TestFilterSort_EmptyInput(t *testing.T) {
	got := FilterSort(nil, Options{})
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}
