package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medvault/medvault/internal/platform/auth"
	"github.com/medvault/medvault/internal/platform/storage"
)

// PhotoCascade is the slice of the photo domain the cascade delete needs:
// the stored file paths and bulk metadata removal for one patient.
type PhotoCascade interface {
	ListFilePaths(ctx context.Context, patientID uuid.UUID) ([]string, error)
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
}

// RecordCascade removes a patient's medical record rows.
type RecordCascade interface {
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
}

type Service struct {
	repo    PatientRepository
	photos  PhotoCascade
	records RecordCascade
	store   storage.ObjectStore
	logger  zerolog.Logger
}

func NewService(repo PatientRepository, photos PhotoCascade, records RecordCascade, store storage.ObjectStore, logger zerolog.Logger) *Service {
	return &Service{repo: repo, photos: photos, records: records, store: store, logger: logger}
}

// CreatePatient validates input, stamps the creator from the active session,
// and inserts the patient. A duplicate file number surfaces as
// ErrDuplicateFileNumber.
func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	p.FullName = strings.TrimSpace(p.FullName)
	p.FileNumber = strings.TrimSpace(p.FileNumber)

	if p.FullName == "" {
		return fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if p.Age <= 0 {
		return fmt.Errorf("%w: age must be a positive integer", ErrValidation)
	}
	if p.FileNumber == "" {
		return fmt.Errorf("%w: file number is required", ErrValidation)
	}

	if sess := auth.SessionFromContext(ctx); sess != nil {
		if id, err := uuid.Parse(sess.UserID); err == nil {
			p.CreatedByDoctorID = &id
		}
		if sess.FullName != "" {
			name := sess.FullName
			p.CreatedByDoctorName = &name
		}
		if sess.Email != "" {
			email := sess.Email
			p.CreatedByDoctorEmail = &email
		}
	}

	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	p.FullName = strings.TrimSpace(p.FullName)
	p.FileNumber = strings.TrimSpace(p.FileNumber)

	if p.FullName == "" {
		return fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if p.Age <= 0 {
		return fmt.Errorf("%w: age must be a positive integer", ErrValidation)
	}
	if p.FileNumber == "" {
		return fmt.Errorf("%w: file number is required", ErrValidation)
	}
	return s.repo.Update(ctx, p)
}

// ListPatients returns all patients, newest first, filtered by a
// case-insensitive substring match on full name or file number. The dataset
// is expected to be small, so filtering happens after the fetch and no
// pagination is applied.
func (s *Service) ListPatients(ctx context.Context, query string) ([]*Patient, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}

	filtered := make([]*Patient, 0, len(all))
	for _, p := range all {
		if p.MatchesQuery(query) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// DeletePatient removes a patient and everything hanging off it as an
// explicit ordered saga: photo blobs, photo rows, record rows, then the
// patient row. The object store cannot join a database transaction, so a
// failure partway stops the saga and is logged with how far it got; earlier
// steps stay committed.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	paths, err := s.photos.ListFilePaths(ctx, id)
	if err != nil {
		return fmt.Errorf("list photo paths: %w", err)
	}

	steps := 0
	fail := func(step string, err error) error {
		s.logger.Error().Err(err).
			Str("patient_id", id.String()).
			Str("file_number", p.FileNumber).
			Str("step", step).
			Int("completed_steps", steps).
			Msg("cascade delete aborted")
		return fmt.Errorf("%s: %w", step, err)
	}

	if len(paths) > 0 {
		if err := s.store.Remove(ctx, paths); err != nil {
			return fail("remove photo blobs", err)
		}
	}
	steps++

	if err := s.photos.DeleteByPatient(ctx, id); err != nil {
		return fail("delete photo rows", err)
	}
	steps++

	if err := s.records.DeleteByPatient(ctx, id); err != nil {
		return fail("delete record rows", err)
	}
	steps++

	if err := s.repo.Delete(ctx, id); err != nil {
		return fail("delete patient row", err)
	}

	s.logger.Info().
		Str("patient_id", id.String()).
		Str("file_number", p.FileNumber).
		Int("photos_removed", len(paths)).
		Msg("patient deleted")
	return nil
}
