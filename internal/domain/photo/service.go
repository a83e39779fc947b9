package photo

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/medvault/medvault/internal/platform/auth"
	"github.com/medvault/medvault/internal/platform/storage"
)

// ErrPatientNotFound is returned when the owning patient does not exist.
var ErrPatientNotFound = errors.New("patient not found")

// PatientInfo is the slice of the patient domain the photo workflow needs.
type PatientInfo struct {
	ID         uuid.UUID
	FileNumber string
}

// PatientLookup resolves a patient id to its info, returning
// ErrPatientNotFound when no such patient exists.
type PatientLookup interface {
	Lookup(ctx context.Context, id uuid.UUID) (*PatientInfo, error)
}

// UploadFile is one file in a batch upload request.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadResult is the per-file outcome of a batch upload. Failed items carry
// an error; succeeded items stay persisted regardless of sibling failures.
type UploadResult struct {
	FileName string        `json:"file_name"`
	Photo    *MedicalPhoto `json:"photo,omitempty"`
	Error    string        `json:"error,omitempty"`

	err error
}

// Err returns the underlying error for a failed item.
func (r *UploadResult) Err() error { return r.err }

type Service struct {
	repo      PhotoRepository
	store     storage.ObjectStore
	patients  PatientLookup
	signedTTL time.Duration
	logger    zerolog.Logger
}

func NewService(repo PhotoRepository, store storage.ObjectStore, patients PatientLookup, signedTTL time.Duration, logger zerolog.Logger) *Service {
	if signedTTL <= 0 {
		signedTTL = time.Hour
	}
	return &Service{repo: repo, store: store, patients: patients, signedTTL: signedTTL, logger: logger}
}

// ListFilePaths and DeleteByPatient expose the repository to the patient
// cascade without the patient domain importing this package's repository.
func (s *Service) ListFilePaths(ctx context.Context, patientID uuid.UUID) ([]string, error) {
	return s.repo.ListFilePaths(ctx, patientID)
}

func (s *Service) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	return s.repo.DeleteByPatient(ctx, patientID)
}

// ListForPatient returns a patient's photos newest-first, each with an
// access URL. Signed URLs are resolved concurrently; when signing fails for
// a photo the public URL is used instead, so the listing never fails on a
// signing error.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*PhotoWithURL, error) {
	if _, err := s.patients.Lookup(ctx, patientID); err != nil {
		return nil, err
	}

	photos, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	items := make([]*PhotoWithURL, len(photos))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range photos {
		i, p := i, p
		g.Go(func() error {
			url, err := s.store.SignedURL(gctx, p.FilePath, s.signedTTL)
			if err != nil {
				s.logger.Warn().Err(err).
					Str("photo_id", p.ID.String()).
					Str("file_path", p.FilePath).
					Msg("signing failed, falling back to public URL")
				url = s.store.PublicURL(p.FilePath)
			}
			items[i] = &PhotoWithURL{MedicalPhoto: *p, URL: url}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// UploadBatch stores N image files for a patient, all sharing one
// description and photo type. Per-file upload+insert pairs run concurrently;
// the returned slice has one entry per input file in order. When a metadata
// insert fails the just-uploaded blob is removed again so no orphan is left
// behind. The aggregate error names the first failed file; successes are
// already persisted and stay that way.
func (s *Service) UploadBatch(ctx context.Context, patientID uuid.UUID, files []UploadFile, description, photoType string) ([]UploadResult, error) {
	if photoType == "" {
		photoType = "general"
	}
	if !validPhotoTypes[photoType] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPhotoType, photoType)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	p, err := s.patients.Lookup(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var uploadedBy *uuid.UUID
	if sess := auth.SessionFromContext(ctx); sess != nil {
		if id, err := uuid.Parse(sess.UserID); err == nil {
			uploadedBy = &id
		}
	}

	results := make([]UploadResult, len(files))
	g := new(errgroup.Group)
	for i := range files {
		i := i
		f := files[i]
		g.Go(func() error {
			results[i] = s.uploadOne(ctx, p, f, description, photoType, uploadedBy)
			return nil
		})
	}
	g.Wait()

	for i := range results {
		if results[i].err != nil {
			return results, results[i].err
		}
	}
	return results, nil
}

func (s *Service) uploadOne(ctx context.Context, p *PatientInfo, f UploadFile, description, photoType string, uploadedBy *uuid.UUID) UploadResult {
	result := UploadResult{FileName: f.Name}
	fail := func(err error) UploadResult {
		result.err = err
		result.Error = err.Error()
		return result
	}

	storedName := storedFileName(p.FileNumber, f.Name)
	path := fmt.Sprintf("medical-photos/%s/%s", p.ID, storedName)

	if err := s.store.Upload(ctx, path, f.Content, f.ContentType); err != nil {
		return fail(fmt.Errorf("upload failed for %s: %w", f.Name, err))
	}

	photo := &MedicalPhoto{
		PatientID:  p.ID,
		FileName:   storedName,
		FilePath:   path,
		PhotoType:  photoType,
		UploadedBy: uploadedBy,
	}
	if f.Size > 0 {
		size := f.Size
		photo.FileSize = &size
	}
	if f.ContentType != "" {
		mime := f.ContentType
		photo.MimeType = &mime
	}
	if description != "" {
		desc := description
		photo.Description = &desc
	}

	if err := s.repo.Create(ctx, photo); err != nil {
		// The blob made it in but the row did not; remove the blob so the
		// metadata stays the source of truth.
		if remErr := s.store.Remove(ctx, []string{path}); remErr != nil {
			s.logger.Error().Err(remErr).
				Str("file_path", path).
				Msg("failed to remove blob after metadata insert failure")
		}
		return fail(fmt.Errorf("database error for %s: %w", f.Name, err))
	}

	result.Photo = photo
	return result
}

// DeletePhoto removes the blob first and the metadata row second, stopping
// at the first failure so the two error cases stay distinguishable.
func (s *Service) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Remove(ctx, []string{p.FilePath}); err != nil {
		return fmt.Errorf("%w: %s", ErrStorageRemove, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %s", ErrMetadataRemove, err)
	}
	return nil
}

// storedFileName builds the storage key for an uploaded file:
// {fileNumber}_{timestamp}_{randomToken}.{ext}.
func storedFileName(fileNumber, original string) string {
	ext := strings.TrimPrefix(filepath.Ext(original), ".")

	var buf [4]byte
	_, _ = crand.Read(buf[:])
	token := hex.EncodeToString(buf[:])

	name := fmt.Sprintf("%s_%d_%s", fileNumber, time.Now().UnixMilli(), token)
	if ext != "" {
		name += "." + ext
	}
	return name
}
