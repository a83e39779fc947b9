package record

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("medical record not found")
	ErrValidation = errors.New("validation failed")
)

// MedicalRecord maps to the medical_records table. One row per visit.
type MedicalRecord struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	VisitDate  time.Time `db:"visit_date" json:"visit_date"`
	Diagnosis  *string   `db:"diagnosis" json:"diagnosis,omitempty"`
	Symptoms   *string   `db:"symptoms" json:"symptoms,omitempty"`
	Treatment  *string   `db:"treatment" json:"treatment,omitempty"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	DoctorName *string   `db:"doctor_name" json:"doctor_name,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
