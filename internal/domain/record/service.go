package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medvault/medvault/internal/platform/auth"
)

type Service struct {
	repo   RecordRepository
	logger zerolog.Logger
}

func NewService(repo RecordRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// DeleteByPatient satisfies the patient cascade.
func (s *Service) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	return s.repo.DeleteByPatient(ctx, patientID)
}

// CreateRecord stamps the authoring doctor's name from the session when the
// request does not carry one.
func (s *Service) CreateRecord(ctx context.Context, m *MedicalRecord) error {
	if m.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient id is required", ErrValidation)
	}
	if m.DoctorName == nil {
		if sess := auth.SessionFromContext(ctx); sess != nil && sess.FullName != "" {
			name := sess.FullName
			m.DoctorName = &name
		}
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
