package clinical

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, rec *ClinicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClinicalRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ClinicalRecord, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*ClinicalRecord, error)
}
