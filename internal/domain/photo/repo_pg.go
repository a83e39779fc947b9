package photo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type photoRepoPG struct{ pool *pgxpool.Pool }

func NewPhotoRepoPG(pool *pgxpool.Pool) PhotoRepository {
	return &photoRepoPG{pool: pool}
}

const photoCols = `id, patient_id, file_name, file_path, file_size, mime_type,
	description, photo_type, taken_date, uploaded_by, created_at, updated_at`

func (r *photoRepoPG) scanRow(row pgx.Row) (*MedicalPhoto, error) {
	var p MedicalPhoto
	err := row.Scan(&p.ID, &p.PatientID, &p.FileName, &p.FilePath, &p.FileSize, &p.MimeType,
		&p.Description, &p.PhotoType, &p.TakenDate, &p.UploadedBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *photoRepoPG) Create(ctx context.Context, p *MedicalPhoto) error {
	p.ID = uuid.New()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO medical_photos (id, patient_id, file_name, file_path, file_size,
			mime_type, description, photo_type, uploaded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING taken_date, created_at, updated_at`,
		p.ID, p.PatientID, p.FileName, p.FilePath, p.FileSize,
		p.MimeType, p.Description, p.PhotoType, p.UploadedBy)
	return row.Scan(&p.TakenDate, &p.CreatedAt, &p.UpdatedAt)
}

func (r *photoRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalPhoto, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+photoCols+` FROM medical_photos WHERE id = $1`, id))
}

func (r *photoRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_photos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *photoRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalPhoto, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+photoCols+` FROM medical_photos WHERE patient_id = $1 ORDER BY taken_date DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*MedicalPhoto
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *photoRepoPG) ListFilePaths(ctx context.Context, patientID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT file_path FROM medical_photos WHERE patient_id = $1`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (r *photoRepoPG) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM medical_photos WHERE patient_id = $1`, patientID)
	return err
}
