package record

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

const recordCols = `id, patient_id, visit_date, diagnosis, symptoms, treatment,
	notes, doctor_name, created_at, updated_at`

func (r *recordRepoPG) scanRow(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(&m.ID, &m.PatientID, &m.VisitDate, &m.Diagnosis, &m.Symptoms,
		&m.Treatment, &m.Notes, &m.DoctorName, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &m, err
}

func (r *recordRepoPG) Create(ctx context.Context, m *MedicalRecord) error {
	m.ID = uuid.New()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO medical_records (id, patient_id, diagnosis, symptoms, treatment, notes, doctor_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING visit_date, created_at, updated_at`,
		m.ID, m.PatientID, m.Diagnosis, m.Symptoms, m.Treatment, m.Notes, m.DoctorName)
	return row.Scan(&m.VisitDate, &m.CreatedAt, &m.UpdatedAt)
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id))
}

func (r *recordRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordCols+` FROM medical_records WHERE patient_id = $1 ORDER BY visit_date DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*MedicalRecord
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *recordRepoPG) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM medical_records WHERE patient_id = $1`, patientID)
	return err
}
