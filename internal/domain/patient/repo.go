package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// DeleteWithVisits removes the patient and all of their visits in a
	// single transaction. Returns ErrNotFound when the patient does not
	// exist; in that case nothing is deleted.
	DeleteWithVisits(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error)
	// MarkRepeat flips patient_type to Repeat. Idempotent.
	MarkRepeat(ctx context.Context, id uuid.UUID) error
}
