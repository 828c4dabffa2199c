package appointment

import (
	"context"
	"errors"

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

const apptCols = `a.id, a.user_id, a.patient_id, a.doctor_id, d.name, a.slot_date,
	a.slot_time, a.amount, a.cancelled, a.is_completed, a.payment, a.booked_at`

const apptFrom = ` FROM appointments a JOIN doctors d ON d.id = a.doctor_id `

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (
			id, user_id, patient_id, doctor_id, slot_date, slot_time,
			amount, cancelled, is_completed, payment
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.UserID, a.PatientID, a.DoctorID, a.SlotDate, a.SlotTime,
		a.Amount, a.Cancelled, a.IsCompleted, a.Payment,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+apptFrom+`WHERE a.id = $1`, id))
}

func (r *repoPG) List(ctx context.Context) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+apptFrom+`ORDER BY a.booked_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppts(rows)
}

func (r *repoPG) ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+apptFrom+`WHERE a.user_id = $1 OR a.patient_id = $1 ORDER BY a.slot_date DESC`,
		identityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppts(rows)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+apptFrom+`WHERE a.doctor_id = $1 ORDER BY a.slot_date DESC`,
		doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppts(rows)
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&n)
	return n, err
}

func (r *repoPG) Latest(ctx context.Context, n int) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+apptFrom+`ORDER BY a.booked_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppts(rows)
}

func (r *repoPG) SetCancelled(ctx context.Context, id uuid.UUID, cancelled bool) error {
	return r.setFlag(ctx, `UPDATE appointments SET cancelled = $2 WHERE id = $1`, id, cancelled)
}

func (r *repoPG) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	return r.setFlag(ctx, `UPDATE appointments SET is_completed = $2 WHERE id = $1`, id, completed)
}

func (r *repoPG) setFlag(ctx context.Context, sql string, id uuid.UUID, val bool) error {
	tag, err := r.conn(ctx).Exec(ctx, sql, id, val)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.UserID, &a.PatientID, &a.DoctorID, &a.DoctorName, &a.SlotDate,
		&a.SlotTime, &a.Amount, &a.Cancelled, &a.IsCompleted, &a.Payment, &a.BookedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func collectAppts(rows pgx.Rows) ([]*Appointment, error) {
	var appts []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}
