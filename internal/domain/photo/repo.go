package photo

import (
	"context"

	"github.com/google/uuid"
)

type PhotoRepository interface {
	Create(ctx context.Context, p *MedicalPhoto) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalPhoto, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByPatient returns a patient's photos ordered by taken date,
	// newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalPhoto, error)
	ListFilePaths(ctx context.Context, patientID uuid.UUID) ([]string, error)
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
}
