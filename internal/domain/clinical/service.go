package clinical

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("clinical record not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateRecord validates and stores a new encounter record. Records
// cannot be edited afterwards.
func (s *Service) CreateRecord(ctx context.Context, rec *ClinicalRecord) error {
	if rec.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if rec.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if rec.EncounterType == "" {
		return fmt.Errorf("encounter_type is required")
	}
	if rec.CurrentClinicalStatus == "" {
		rec.CurrentClinicalStatus = StatusStable
	}
	if !validStatuses[rec.CurrentClinicalStatus] {
		return fmt.Errorf("invalid clinical status: %s", rec.CurrentClinicalStatus)
	}
	if rec.EncounterDate.IsZero() {
		rec.EncounterDate = time.Now().UTC()
	}
	for i, p := range rec.Prescriptions {
		if p.Medicine == "" {
			return fmt.Errorf("prescription %d: medicine is required", i+1)
		}
	}
	for i, lt := range rec.LabTests {
		if lt.Name == "" {
			return fmt.Errorf("lab test %d: name is required", i+1)
		}
	}
	return s.repo.Create(ctx, rec)
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*ClinicalRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// ListForPatient returns the patient's records newest first, narrowed
// and reordered per opts.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, opts Options) ([]*ClinicalRecord, error) {
	recs, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return FilterSort(recs, opts), nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*ClinicalRecord, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}
