package record

import (
	"context"

	"github.com/google/uuid"
)

type RecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByPatient returns a patient's records ordered by visit date,
	// newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error)
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
}
