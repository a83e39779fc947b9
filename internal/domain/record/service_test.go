package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medvault/medvault/internal/platform/auth"
	"github.com/medvault/medvault/internal/platform/identity"
)

type mockRecordRepo struct {
	records map[uuid.UUID]*MedicalRecord
	order   []uuid.UUID
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[uuid.UUID]*MedicalRecord)}
}

func (m *mockRecordRepo) Create(_ context.Context, r *MedicalRecord) error {
	r.ID = uuid.New()
	r.VisitDate = time.Now().UTC()
	m.records[r.ID] = r
	m.order = append(m.order, r.ID)
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*MedicalRecord, error) {
	var out []*MedicalRecord
	for i := len(m.order) - 1; i >= 0; i-- {
		if r, ok := m.records[m.order[i]]; ok && r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRecordRepo) DeleteByPatient(_ context.Context, patientID uuid.UUID) error {
	for id, r := range m.records {
		if r.PatientID == patientID {
			delete(m.records, id)
		}
	}
	return nil
}

func TestCreateRecordStampsDoctorName(t *testing.T) {
	repo := newMockRecordRepo()
	svc := NewService(repo, zerolog.Nop())
	ctx := auth.WithSession(context.Background(), &auth.Session{
		UserID:   uuid.NewString(),
		FullName: "Dr. Test",
		Role:     identity.RoleDoctor,
	})

	diag := "sprained ankle"
	m := &MedicalRecord{PatientID: uuid.New(), Diagnosis: &diag}
	if err := svc.CreateRecord(ctx, m); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if m.DoctorName == nil || *m.DoctorName != "Dr. Test" {
		t.Errorf("doctor name = %v, want Dr. Test", m.DoctorName)
	}
}

func TestCreateRecordKeepsExplicitDoctorName(t *testing.T) {
	repo := newMockRecordRepo()
	svc := NewService(repo, zerolog.Nop())
	ctx := auth.WithSession(context.Background(), &auth.Session{FullName: "Dr. Session"})

	name := "Dr. Referral"
	m := &MedicalRecord{PatientID: uuid.New(), DoctorName: &name}
	if err := svc.CreateRecord(ctx, m); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if *m.DoctorName != "Dr. Referral" {
		t.Errorf("doctor name = %q, want Dr. Referral", *m.DoctorName)
	}
}

func TestCreateRecordRequiresPatient(t *testing.T) {
	svc := NewService(newMockRecordRepo(), zerolog.Nop())
	err := svc.CreateRecord(context.Background(), &MedicalRecord{})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}
}

func TestDeleteByPatientRemovesOnlyThatPatient(t *testing.T) {
	repo := newMockRecordRepo()
	svc := NewService(repo, zerolog.Nop())
	ctx := context.Background()

	p1, p2 := uuid.New(), uuid.New()
	for _, pid := range []uuid.UUID{p1, p1, p2} {
		if err := svc.CreateRecord(ctx, &MedicalRecord{PatientID: pid}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := svc.DeleteByPatient(ctx, p1); err != nil {
		t.Fatalf("DeleteByPatient: %v", err)
	}

	left, _ := svc.ListForPatient(ctx, p1)
	if len(left) != 0 {
		t.Errorf("patient 1 still has %d records", len(left))
	}
	kept, _ := svc.ListForPatient(ctx, p2)
	if len(kept) != 1 {
		t.Errorf("patient 2 has %d records, want 1", len(kept))
	}
}
