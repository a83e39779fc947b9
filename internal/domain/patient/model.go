package patient

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("patient not found")
	ErrDuplicateFileNumber = errors.New("a patient with this file number already exists")
	ErrValidation          = errors.New("validation failed")
)

// Patient maps to the patients table. The creator fields are denormalized
// from the identity provider at create time so the directory can show who
// registered a patient without a provider round trip.
type Patient struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	FullName             string     `db:"full_name" json:"full_name"`
	Age                  int        `db:"age" json:"age"`
	FileNumber           string     `db:"file_number" json:"file_number"`
	Gender               *string    `db:"gender" json:"gender,omitempty"`
	AdditionalNotes      *string    `db:"additional_notes" json:"additional_notes,omitempty"`
	CreatedByDoctorID    *uuid.UUID `db:"created_by_doctor_id" json:"created_by_doctor_id,omitempty"`
	CreatedByDoctorName  *string    `db:"created_by_doctor_name" json:"created_by_doctor_name,omitempty"`
	CreatedByDoctorEmail *string    `db:"created_by_doctor_email" json:"created_by_doctor_email,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// MatchesQuery reports whether the patient matches a case-insensitive
// substring query against the full name or file number. An empty query
// matches everything.
func (p *Patient) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.FullName), q) ||
		strings.Contains(strings.ToLower(p.FileNumber), q)
}
