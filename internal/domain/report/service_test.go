package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func strp(s string) *string { return &s }

func fact(gender, conditions, patientType string) PatientFact {
	return PatientFact{Gender: strp(gender), Conditions: strp(conditions), PatientType: patientType}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	if s.TotalPatients != 0 || s.NewPatients != 0 || s.RepeatPatients != 0 {
		t.Errorf("expected all-zero summary, got %+v", s)
	}
}

func TestAggregate_ConditionBuckets(t *testing.T) {
	facts := []PatientFact{
		fact("Male", "Hypertension", "New"),
		fact("Female", "Diabetes", "New"),
		fact("Male", "Hypertension, Diabetes", "Repeat"),
		fact("Female", "Asthma", "New"),
	}

	s := Aggregate(facts)

	if s.TotalPatients != 4 {
		t.Errorf("total: got %d", s.TotalPatients)
	}
	if s.ConditionCounts.HypertensionOnly != 1 {
		t.Errorf("hypertensionOnly: got %d", s.ConditionCounts.HypertensionOnly)
	}
	if s.ConditionCounts.DiabetesOnly != 1 {
		t.Errorf("diabetesOnly: got %d", s.ConditionCounts.DiabetesOnly)
	}
	if s.ConditionCounts.Both != 1 {
		t.Errorf("both: got %d", s.ConditionCounts.Both)
	}
}

func TestAggregate_BothIsExclusive(t *testing.T) {
	// A patient with both conditions lands only in Both, never double
	// counted in the only-buckets.
	s := Aggregate([]PatientFact{fact("Male", "Hypertension, Diabetes", "New")})

	if s.ConditionCounts.Both != 1 {
		t.Errorf("both: got %d", s.ConditionCounts.Both)
	}
	if s.ConditionCounts.HypertensionOnly != 0 || s.ConditionCounts.DiabetesOnly != 0 {
		t.Errorf("only-buckets should be empty: %+v", s.ConditionCounts)
	}
	// The cross-tab, by contrast, counts them under each condition.
	if s.GenderByCondition.Hypertension.Male != 1 {
		t.Errorf("hypertension.male: got %d", s.GenderByCondition.Hypertension.Male)
	}
	if s.GenderByCondition.Diabetes.Male != 1 {
		t.Errorf("diabetes.male: got %d", s.GenderByCondition.Diabetes.Male)
	}
}

func TestAggregate_CaseInsensitiveMatch(t *testing.T) {
	s := Aggregate([]PatientFact{
		fact("Female", "HYPERTENSION", "New"),
		fact("male", "diabetes mellitus type 2", "New"),
	})

	if s.ConditionCounts.HypertensionOnly != 1 {
		t.Errorf("hypertensionOnly: got %d", s.ConditionCounts.HypertensionOnly)
	}
	if s.ConditionCounts.DiabetesOnly != 1 {
		t.Errorf("diabetesOnly: got %d", s.ConditionCounts.DiabetesOnly)
	}
	if s.GenderDistribution.Male != 1 || s.GenderDistribution.Female != 1 {
		t.Errorf("gender distribution: %+v", s.GenderDistribution)
	}
}

func TestAggregate_NewRepeatPartition(t *testing.T) {
	facts := []PatientFact{
		fact("Male", "Hypertension", "New"),
		fact("Female", "Diabetes", "Repeat"),
		fact("Male", "Diabetes", "Repeat"),
		// Unknown type counts as New so the partition always holds.
		{Gender: strp("Other"), Conditions: nil, PatientType: ""},
	}

	s := Aggregate(facts)

	if s.NewPatients+s.RepeatPatients != s.TotalPatients {
		t.Errorf("partition broken: %d + %d != %d", s.NewPatients, s.RepeatPatients, s.TotalPatients)
	}
	if s.NewPatients != 2 || s.RepeatPatients != 2 {
		t.Errorf("got new=%d repeat=%d", s.NewPatients, s.RepeatPatients)
	}
}

func TestAggregate_MissingFieldsContributeNothing(t *testing.T) {
	s := Aggregate([]PatientFact{
		{Gender: nil, Conditions: nil, PatientType: "New"},
		{Gender: strp("Unknown"), Conditions: strp(""), PatientType: "New"},
	})

	if s.TotalPatients != 2 {
		t.Errorf("total: got %d", s.TotalPatients)
	}
	if s.GenderDistribution != (GenderCounts{}) {
		t.Errorf("gender distribution should be empty: %+v", s.GenderDistribution)
	}
	if s.ConditionCounts != (ConditionCounts{}) {
		t.Errorf("condition counts should be empty: %+v", s.ConditionCounts)
	}
}

func TestAggregate_CrossTab(t *testing.T) {
	facts := []PatientFact{
		fact("Male", "Hypertension", "New"),
		fact("Female", "Hypertension", "New"),
		fact("Female", "Hypertension, Diabetes", "Repeat"),
		fact("Other", "Diabetes", "New"),
	}

	s := Aggregate(facts)

	if s.GenderByCondition.Hypertension.Male != 1 {
		t.Errorf("hypertension.male: got %d", s.GenderByCondition.Hypertension.Male)
	}
	if s.GenderByCondition.Hypertension.Female != 2 {
		t.Errorf("hypertension.female: got %d", s.GenderByCondition.Hypertension.Female)
	}
	if s.GenderByCondition.Diabetes.Female != 1 {
		t.Errorf("diabetes.female: got %d", s.GenderByCondition.Diabetes.Female)
	}
	if s.GenderByCondition.Diabetes.Other != 1 {
		t.Errorf("diabetes.other: got %d", s.GenderByCondition.Diabetes.Other)
	}
}

func TestNewWindow(t *testing.T) {
	if _, err := NewWindow(0, 0); err != nil {
		t.Errorf("all-time window: %v", err)
	}
	if _, err := NewWindow(0, 2026); err != nil {
		t.Errorf("year-only window: %v", err)
	}
	if _, err := NewWindow(3, 2026); err != nil {
		t.Errorf("month window: %v", err)
	}
	if _, err := NewWindow(13, 2026); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for month 13, got %v", err)
	}
	if _, err := NewWindow(-1, 2026); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for month -1, got %v", err)
	}
	if _, err := NewWindow(3, 0); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for month without year, got %v", err)
	}
}

func TestWindowRange(t *testing.T) {
	w, _ := NewWindow(12, 2025)
	start, end := w.Range()
	if !start.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start: %v", start)
	}
	if !end.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end should roll into next year: %v", end)
	}

	w, _ = NewWindow(0, 2026)
	start, end = w.Range()
	if !start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start: %v", start)
	}
	if !end.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end: %v", end)
	}
}

// -- Summarize with a mock repository --

type mockRepo struct {
	facts  []PatientFact
	visits []RecentVisit

	gotWindow Window
	gotLimit  int
}

func (m *mockRepo) PatientFacts(_ context.Context, w Window) ([]PatientFact, error) {
	m.gotWindow = w
	return m.facts, nil
}

func (m *mockRepo) RecentVisits(_ context.Context, w Window, limit int) ([]RecentVisit, error) {
	m.gotLimit = limit
	return m.visits, nil
}

func TestSummarize(t *testing.T) {
	repo := &mockRepo{
		facts: []PatientFact{fact("Male", "Hypertension, Diabetes", "New")},
		visits: []RecentVisit{{
			ID:          uuid.New(),
			PatientID:   uuid.New(),
			PatientName: "Abebe Kebede",
			MRN:         "482915",
			VisitDate:   time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		}},
	}
	svc := NewService(repo)

	w, _ := NewWindow(8, 2026)
	s, err := svc.Summarize(context.Background(), w, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotWindow != w {
		t.Errorf("window not passed through: %+v", repo.gotWindow)
	}
	if repo.gotLimit != DefaultRecentVisits {
		t.Errorf("expected default limit, got %d", repo.gotLimit)
	}
	if s.TotalPatients != 1 || s.ConditionCounts.Both != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.GenderByCondition.Hypertension.Male != 1 {
		t.Errorf("hypertension.male: got %d", s.GenderByCondition.Hypertension.Male)
	}
	if len(s.RecentVisits) != 1 || s.RecentVisits[0].MRN != "482915" {
		t.Errorf("recent visits: %+v", s.RecentVisits)
	}
}

func TestSummarize_ClampsLimit(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	if _, err := svc.Summarize(context.Background(), Window{}, 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotLimit != MaxRecentVisits {
		t.Errorf("expected limit clamped to %d, got %d", MaxRecentVisits, repo.gotLimit)
	}
}

func TestSummarize_NilVisitsBecomeEmptySlice(t *testing.T) {
	svc := NewService(&mockRepo{})

	s, err := svc.Summarize(context.Background(), Window{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RecentVisits == nil {
		t.Error("recentVisits must serialize as [], not null")
	}
}
