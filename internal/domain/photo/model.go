package photo

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("photo not found")
	ErrInvalidPhotoType = errors.New("invalid photo type")
	ErrStorageRemove    = errors.New("failed to delete file from storage")
	ErrMetadataRemove   = errors.New("failed to delete photo record")
)

// validPhotoTypes is the closed category set for medical photos.
var validPhotoTypes = map[string]bool{
	"general":        true,
	"x-ray":          true,
	"wound":          true,
	"skin-condition": true,
	"surgical":       true,
	"diagnostic":     true,
	"treatment":      true,
	"other":          true,
}

// MedicalPhoto maps to the medical_photos table.
type MedicalPhoto struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	FileName    string     `db:"file_name" json:"file_name"`
	FilePath    string     `db:"file_path" json:"file_path"`
	FileSize    *int64     `db:"file_size" json:"file_size,omitempty"`
	MimeType    *string    `db:"mime_type" json:"mime_type,omitempty"`
	Description *string    `db:"description" json:"description,omitempty"`
	PhotoType   string     `db:"photo_type" json:"photo_type"`
	TakenDate   time.Time  `db:"taken_date" json:"taken_date"`
	UploadedBy  *uuid.UUID `db:"uploaded_by" json:"uploaded_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// PhotoWithURL is a photo plus its resolved access URL: a time-limited
// signed URL when signing succeeds, the public URL otherwise.
type PhotoWithURL struct {
	MedicalPhoto
	URL string `json:"url"`
}
