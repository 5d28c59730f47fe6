package visit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/patient"
)

type mockRepo struct {
	visits map[uuid.UUID]*Visit
}

func newMockRepo() *mockRepo {
	return &mockRepo{visits: make(map[uuid.UUID]*Visit)}
}

func (m *mockRepo) Create(_ context.Context, v *Visit) error {
	v.ID = uuid.New()
	v.CreatedAt = time.Now()
	m.visits[v.ID] = v
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Visit, error) {
	v, ok := m.visits[id]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.visits[id]; !ok {
		return ErrNotFound
	}
	delete(m.visits, id)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	var result []*Visit
	for _, v := range m.visits {
		if v.PatientID == patientID {
			result = append(result, v)
		}
	}
	return result, len(result), nil
}

// mockRegistry stands in for the patient service.
type mockRegistry struct {
	patients    map[uuid.UUID]*patient.Patient
	repeatCalls int
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{patients: make(map[uuid.UUID]*patient.Patient)}
}

func (m *mockRegistry) add() uuid.UUID {
	id := uuid.New()
	m.patients[id] = &patient.Patient{ID: id, PatientType: patient.TypeNew}
	return id
}

func (m *mockRegistry) Get(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (m *mockRegistry) MarkRepeat(_ context.Context, id uuid.UUID) error {
	p, ok := m.patients[id]
	if !ok {
		return patient.ErrNotFound
	}
	p.PatientType = patient.TypeRepeat
	m.repeatCalls++
	return nil
}

func TestRecord(t *testing.T) {
	repo := newMockRepo()
	registry := newMockRegistry()
	svc := NewService(repo, registry)

	patientID := registry.add()
	v, err := svc.Record(context.Background(), &CreateRequest{
		PatientID:  patientID,
		SystolicBP: Vital{Value: 135, Valid: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if registry.patients[patientID].PatientType != patient.TypeRepeat {
		t.Error("expected patient marked Repeat after first visit")
	}
}

func TestRecord_UnknownPatient(t *testing.T) {
	svc := NewService(newMockRepo(), newMockRegistry())

	_, err := svc.Record(context.Background(), &CreateRequest{PatientID: uuid.New()})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestRecord_MissingPatientID(t *testing.T) {
	svc := NewService(newMockRepo(), newMockRegistry())

	_, err := svc.Record(context.Background(), &CreateRequest{})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestRecord_BackdatedStillMarksRepeat(t *testing.T) {
	registry := newMockRegistry()
	svc := NewService(newMockRepo(), registry)

	patientID := registry.add()
	_, err := svc.Record(context.Background(), &CreateRequest{
		PatientID: patientID,
		VisitDate: "2020-06-01",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if registry.patients[patientID].PatientType != patient.TypeRepeat {
		t.Error("expected backdated visit to mark patient Repeat")
	}
}

func TestRecord_MalformedDate(t *testing.T) {
	registry := newMockRegistry()
	svc := NewService(newMockRepo(), registry)

	patientID := registry.add()
	_, err := svc.Record(context.Background(), &CreateRequest{
		PatientID: patientID,
		VisitDate: "June 1st",
	})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	if registry.repeatCalls != 0 {
		t.Error("rejected visit must not flip the patient")
	}
}

func TestDelete_DoesNotRevertPatientType(t *testing.T) {
	repo := newMockRepo()
	registry := newMockRegistry()
	svc := NewService(repo, registry)

	patientID := registry.add()
	v, err := svc.Record(context.Background(), &CreateRequest{PatientID: patientID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), v.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if registry.patients[patientID].PatientType != patient.TypeRepeat {
		t.Error("deleting the only visit must not revert the patient to New")
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := NewService(newMockRepo(), newMockRegistry())

	err := svc.Delete(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListByPatient(t *testing.T) {
	repo := newMockRepo()
	registry := newMockRegistry()
	svc := NewService(repo, registry)

	a := registry.add()
	b := registry.add()
	svc.Record(context.Background(), &CreateRequest{PatientID: a})
	svc.Record(context.Background(), &CreateRequest{PatientID: a})
	svc.Record(context.Background(), &CreateRequest{PatientID: b})

	visits, total, err := svc.ListByPatient(context.Background(), a, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(visits) != 2 {
		t.Errorf("expected 2 visits for patient a, got %d", total)
	}
}
