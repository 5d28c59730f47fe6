package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalid wraps bad window parameters.
var ErrInvalid = errors.New("invalid report window")

// Window is the optional (month, year) filter for summary queries. A zero
// Window means all-time. Year alone covers the whole year; month requires
// a year.
type Window struct {
	Month int
	Year  int
}

func NewWindow(month, year int) (Window, error) {
	if month != 0 && (month < 1 || month > 12) {
		return Window{}, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalid)
	}
	if month != 0 && year == 0 {
		return Window{}, fmt.Errorf("%w: month requires a year", ErrInvalid)
	}
	return Window{Month: month, Year: year}, nil
}

// IsZero reports whether the window filters nothing.
func (w Window) IsZero() bool {
	return w.Year == 0
}

// Range returns the half-open [start, end) interval the window covers.
// Only meaningful when the window is not zero.
func (w Window) Range() (time.Time, time.Time) {
	if w.Month != 0 {
		start := time.Date(w.Year, time.Month(w.Month), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start := time.Date(w.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// PatientFact is the slice of a patient row the aggregation needs.
type PatientFact struct {
	Gender      *string
	Conditions  *string
	PatientType string
}

// RecentVisit is a visit row annotated with its owner for the dashboard.
type RecentVisit struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	MRN         string    `json:"mrn"`
	VisitDate   time.Time `json:"visit_date"`
}

// GenderCounts is a male/female/other breakdown.
type GenderCounts struct {
	Male   int `json:"male"`
	Female int `json:"female"`
	Other  int `json:"other"`
}

// ConditionCounts partitions patients by tracked condition. A patient with
// both conditions lands in Both and in neither only-bucket.
type ConditionCounts struct {
	HypertensionOnly int `json:"hypertensionOnly"`
	DiabetesOnly     int `json:"diabetesOnly"`
	Both             int `json:"both"`
}

// GenderByCondition cross-tabulates gender with condition containment, so
// a patient with both conditions appears under each.
type GenderByCondition struct {
	Hypertension GenderCounts `json:"hypertension"`
	Diabetes     GenderCounts `json:"diabetes"`
}

// Summary is the dashboard payload.
type Summary struct {
	TotalPatients      int               `json:"totalPatients"`
	NewPatients        int               `json:"newPatients"`
	RepeatPatients     int               `json:"repeatPatients"`
	ConditionCounts    ConditionCounts   `json:"conditionCounts"`
	GenderDistribution GenderCounts      `json:"genderDistribution"`
	GenderByCondition  GenderByCondition `json:"genderByCondition"`
	RecentVisits       []RecentVisit     `json:"recentVisits"`
}
