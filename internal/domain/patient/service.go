package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/db"
)

// mrnAttempts bounds the retry loop for generated MRNs. A collision among
// one million values is rare at clinic scale; three tries is plenty.
const mrnAttempts = 3

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register validates and persists a new patient. When no MRN is supplied a
// pseudo-random 6-digit one is generated, retrying on the off chance it
// collides with an existing patient. An explicit duplicate MRN is the
// caller's mistake and is reported as ErrDuplicateMRN.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	p.Normalize()
	if p.PatientType == "" {
		p.PatientType = TypeNew
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if p.MRN != "" {
		err := s.repo.Create(ctx, p)
		if db.IsUniqueViolation(err) {
			return ErrDuplicateMRN
		}
		return err
	}

	var err error
	for i := 0; i < mrnAttempts; i++ {
		p.MRN = GenerateMRN()
		err = s.repo.Create(ctx, p)
		if !db.IsUniqueViolation(err) {
			return err
		}
	}
	return fmt.Errorf("could not allocate a unique MRN after %d attempts: %w", mrnAttempts, err)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces the mutable fields of an existing patient. The MRN on
// the incoming record is ignored; identifiers never change. A Repeat
// patient stays Repeat no matter what patient_type the caller sends.
func (s *Service) Update(ctx context.Context, p *Patient) error {
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if existing.PatientType == TypeRepeat {
		p.PatientType = TypeRepeat
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a patient and all of their visits atomically.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteWithVisits(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, query, limit, offset)
}

// MarkRepeat records that the patient now has at least one visit. The
// transition is one-way: repeated calls keep the patient Repeat.
func (s *Service) MarkRepeat(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRepeat(ctx, id)
}
