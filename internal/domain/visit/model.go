package visit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("visit not found")
	// ErrInvalid wraps all validation failures.
	ErrInvalid = errors.New("invalid visit")
)

// Visit maps to the visit table.
type Visit struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	VisitDate       time.Time `db:"visit_date" json:"visit_date"`
	SystolicBP      *float64  `db:"systolic_bp" json:"systolic_bp"`
	DiastolicBP     *float64  `db:"diastolic_bp" json:"diastolic_bp"`
	HeartRate       *float64  `db:"heart_rate" json:"heart_rate"`
	Temperature     *float64  `db:"temperature" json:"temperature"`
	RespiratoryRate *float64  `db:"respiratory_rate" json:"respiratory_rate"`
	SpO2            *float64  `db:"spo2" json:"spo2"`
	BloodSugar      *float64  `db:"blood_sugar" json:"blood_sugar"`
	HbA1c           *float64  `db:"hba1c" json:"hba1c"`
	Creatinine      *float64  `db:"creatinine" json:"creatinine"`
	Cholesterol     *float64  `db:"cholesterol" json:"cholesterol"`
	Triglycerides   *float64  `db:"triglycerides" json:"triglycerides"`
	Weight          *float64  `db:"weight" json:"weight"`
	Urinalysis      *string   `db:"urinalysis" json:"urinalysis,omitempty"`
	Complications   *string   `db:"complications" json:"complications,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Vital is a lab or vital-sign field as submitted by a form. Forms send
// numbers, numeric strings, empty strings, or nothing at all; an empty
// string means the value was not taken, never an explicit zero.
type Vital struct {
	Value float64
	Valid bool
}

func (v *Vital) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*v = Vital{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*v = Vital{}
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*v = Vital{Value: f, Valid: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Vital{Value: f, Valid: true}
	return nil
}

func (v Vital) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Value)
}

// Ptr returns the value for persistence, nil when not recorded.
func (v Vital) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Value
	return &f
}

// CreateRequest is the wire shape of a visit submission.
type CreateRequest struct {
	PatientID       uuid.UUID `json:"patient_id"`
	VisitDate       string    `json:"visit_date"`
	SystolicBP      Vital     `json:"systolic_bp"`
	DiastolicBP     Vital     `json:"diastolic_bp"`
	HeartRate       Vital     `json:"heart_rate"`
	Temperature     Vital     `json:"temperature"`
	RespiratoryRate Vital     `json:"respiratory_rate"`
	SpO2            Vital     `json:"spo2"`
	BloodSugar      Vital     `json:"blood_sugar"`
	HbA1c           Vital     `json:"hba1c"`
	Creatinine      Vital     `json:"creatinine"`
	Cholesterol     Vital     `json:"cholesterol"`
	Triglycerides   Vital     `json:"triglycerides"`
	Weight          Vital     `json:"weight"`
	Urinalysis      *string   `json:"urinalysis"`
	Complications   *string   `json:"complications"`
	Notes           *string   `json:"notes"`
}

// ToVisit converts the request into a Visit record. The visit date defaults
// to today when absent; a malformed date is a validation error.
func (r *CreateRequest) ToVisit() (*Visit, error) {
	visitDate := time.Now().UTC().Truncate(24 * time.Hour)
	if r.VisitDate != "" {
		parsed, err := time.Parse("2006-01-02", r.VisitDate)
		if err != nil {
			return nil, fmt.Errorf("%w: visit_date must be YYYY-MM-DD", ErrInvalid)
		}
		visitDate = parsed
	}
	return &Visit{
		PatientID:       r.PatientID,
		VisitDate:       visitDate,
		SystolicBP:      r.SystolicBP.Ptr(),
		DiastolicBP:     r.DiastolicBP.Ptr(),
		HeartRate:       r.HeartRate.Ptr(),
		Temperature:     r.Temperature.Ptr(),
		RespiratoryRate: r.RespiratoryRate.Ptr(),
		SpO2:            r.SpO2.Ptr(),
		BloodSugar:      r.BloodSugar.Ptr(),
		HbA1c:           r.HbA1c.Ptr(),
		Creatinine:      r.Creatinine.Ptr(),
		Cholesterol:     r.Cholesterol.Ptr(),
		Triglycerides:   r.Triglycerides.Ptr(),
		Weight:          r.Weight.Ptr(),
		Urinalysis:      emptyToNil(r.Urinalysis),
		Complications:   emptyToNil(r.Complications),
		Notes:           emptyToNil(r.Notes),
	}, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
