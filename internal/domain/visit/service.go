package visit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/domain/patient"
)

// PatientRegistry is the slice of the patient domain the visit service
// needs: existence checks and the New->Repeat transition.
type PatientRegistry interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	MarkRepeat(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     Repository
	patients PatientRegistry
}

func NewService(repo Repository, patients PatientRegistry) *Service {
	return &Service{repo: repo, patients: patients}
}

// Record persists a visit and marks the owning patient Repeat. The mark is
// unconditional: recording a backdated visit still flips the patient, and
// deleting visits later never flips them back.
func (s *Service) Record(ctx context.Context, req *CreateRequest) (*Visit, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id is required", ErrInvalid)
	}

	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, fmt.Errorf("%w: no patient with id %s", ErrInvalid, req.PatientID)
		}
		return nil, err
	}

	v, err := req.ToVisit()
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	if err := s.patients.MarkRepeat(ctx, v.PatientID); err != nil {
		return nil, fmt.Errorf("mark patient repeat: %w", err)
	}

	return v, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes a single visit. The owning patient stays Repeat.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
