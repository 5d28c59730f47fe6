package report

import (
	"context"
	"strings"
)

// Tracked chronic conditions. Matching is substring containment over the
// free-text conditions field, so "Hypertension, Diabetes" counts for both.
const (
	conditionHypertension = "hypertension"
	conditionDiabetes     = "diabetes"
)

const (
	DefaultRecentVisits = 10
	MaxRecentVisits     = 50
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Summarize computes the dashboard summary for the window. The patient
// counts bucket on the registration timestamp, the recent visits on the
// visit date.
func (s *Service) Summarize(ctx context.Context, w Window, recentLimit int) (*Summary, error) {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentVisits
	}
	if recentLimit > MaxRecentVisits {
		recentLimit = MaxRecentVisits
	}

	facts, err := s.repo.PatientFacts(ctx, w)
	if err != nil {
		return nil, err
	}

	summary := Aggregate(facts)

	visits, err := s.repo.RecentVisits(ctx, w, recentLimit)
	if err != nil {
		return nil, err
	}
	if visits == nil {
		visits = []RecentVisit{}
	}
	summary.RecentVisits = visits

	return summary, nil
}

// Aggregate folds patient facts into the summary counters. Patients with
// no gender or no conditions simply contribute nothing to those buckets,
// so newPatients+repeatPatients always equals totalPatients while the
// condition and gender buckets may sum to less.
func Aggregate(facts []PatientFact) *Summary {
	summary := &Summary{TotalPatients: len(facts)}

	for _, f := range facts {
		if f.PatientType == "Repeat" {
			summary.RepeatPatients++
		} else {
			summary.NewPatients++
		}

		hasHypertension := hasCondition(f.Conditions, conditionHypertension)
		hasDiabetes := hasCondition(f.Conditions, conditionDiabetes)
		switch {
		case hasHypertension && hasDiabetes:
			summary.ConditionCounts.Both++
		case hasHypertension:
			summary.ConditionCounts.HypertensionOnly++
		case hasDiabetes:
			summary.ConditionCounts.DiabetesOnly++
		}

		bumpGender(&summary.GenderDistribution, f.Gender)
		if hasHypertension {
			bumpGender(&summary.GenderByCondition.Hypertension, f.Gender)
		}
		if hasDiabetes {
			bumpGender(&summary.GenderByCondition.Diabetes, f.Gender)
		}
	}

	return summary
}

func hasCondition(conditions *string, name string) bool {
	if conditions == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*conditions), name)
}

func bumpGender(counts *GenderCounts, gender *string) {
	if gender == nil {
		return
	}
	switch strings.ToLower(*gender) {
	case "male":
		counts.Male++
	case "female":
		counts.Female++
	case "other":
		counts.Other++
	}
}
