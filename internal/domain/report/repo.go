package report

import "context"

type Repository interface {
	// PatientFacts returns gender, conditions and patient_type for every
	// patient registered inside the window (all patients when zero).
	PatientFacts(ctx context.Context, w Window) ([]PatientFact, error)
	// RecentVisits returns the most recent visits by visit_date inside the
	// window, newest first, annotated with the owning patient.
	RecentVisits(ctx context.Context, w Window, limit int) ([]RecentVisit, error)
}
