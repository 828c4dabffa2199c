package clinical

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/hms/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recCols = `id, patient_id, doctor_id, encounter_type, encounter_date,
	reason_for_visit, diagnosis, treatment, vital_signs, prescriptions,
	lab_tests, notes, follow_up_date, attachments, current_clinical_status,
	created_at`

func (r *repoPG) Create(ctx context.Context, rec *ClinicalRecord) error {
	rec.ID = uuid.New()
	vitals, err := json.Marshal(rec.VitalSigns)
	if err != nil {
		return fmt.Errorf("marshal vital signs: %w", err)
	}
	rx, err := json.Marshal(orEmpty(rec.Prescriptions))
	if err != nil {
		return fmt.Errorf("marshal prescriptions: %w", err)
	}
	labs, err := json.Marshal(orEmpty(rec.LabTests))
	if err != nil {
		return fmt.Errorf("marshal lab tests: %w", err)
	}
	files, err := json.Marshal(orEmpty(rec.Attachments))
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO clinical_records (
			id, patient_id, doctor_id, encounter_type, encounter_date,
			reason_for_visit, diagnosis, treatment, vital_signs, prescriptions,
			lab_tests, notes, follow_up_date, attachments, current_clinical_status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		rec.ID, rec.PatientID, rec.DoctorID, rec.EncounterType, rec.EncounterDate,
		rec.ReasonForVisit, rec.Diagnosis, rec.Treatment, vitals, rx,
		labs, rec.Notes, rec.FollowUpDate, files, rec.CurrentClinicalStatus,
	)
	return err
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ClinicalRecord, error) {
	return scanRec(r.conn(ctx).QueryRow(ctx, `SELECT `+recCols+` FROM clinical_records WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ClinicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recCols+` FROM clinical_records WHERE patient_id = $1 ORDER BY created_at DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecs(rows)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*ClinicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recCols+` FROM clinical_records WHERE doctor_id = $1 ORDER BY created_at DESC`,
		doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecs(rows)
}

func scanRec(row pgx.Row) (*ClinicalRecord, error) {
	var rec ClinicalRecord
	var vitals, rx, labs, files []byte
	err := row.Scan(
		&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.EncounterType, &rec.EncounterDate,
		&rec.ReasonForVisit, &rec.Diagnosis, &rec.Treatment, &vitals, &rx,
		&labs, &rec.Notes, &rec.FollowUpDate, &files, &rec.CurrentClinicalStatus,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	for _, f := range []struct {
		raw []byte
		dst interface{}
	}{
		{vitals, &rec.VitalSigns},
		{rx, &rec.Prescriptions},
		{labs, &rec.LabTests},
		{files, &rec.Attachments},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("unmarshal record field: %w", err)
		}
	}
	return &rec, nil
}

func collectRecs(rows pgx.Rows) ([]*ClinicalRecord, error) {
	var recs []*ClinicalRecord
	for rows.Next() {
		rec, err := scanRec(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
