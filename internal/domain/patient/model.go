package patient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Patient type values. A patient is New until their first visit is
// recorded, Repeat forever after.
const (
	TypeNew    = "New"
	TypeRepeat = "Repeat"
)

var (
	ErrNotFound     = errors.New("patient not found")
	ErrDuplicateMRN = errors.New("a patient with this MRN already exists")
	// ErrInvalid wraps all validation failures.
	ErrInvalid = errors.New("invalid patient")
)

var validGenders = map[string]bool{
	"Male":   true,
	"Female": true,
	"Other":  true,
}

// Patient maps to the patient table.
type Patient struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	MRN                string    `db:"mrn" json:"mrn"`
	FullName           string    `db:"full_name" json:"full_name"`
	Age                int       `db:"age" json:"age"`
	Gender             string    `db:"gender" json:"gender"`
	Phone              *string   `db:"phone" json:"phone,omitempty"`
	PatientType        string    `db:"patient_type" json:"patient_type"`
	Conditions         *string   `db:"conditions" json:"conditions,omitempty"`
	Region             *string   `db:"region" json:"region,omitempty"`
	Zone               *string   `db:"zone" json:"zone,omitempty"`
	Woreda             *string   `db:"woreda" json:"woreda,omitempty"`
	Kebele             *string   `db:"kebele" json:"kebele,omitempty"`
	TreatmentStarted   bool      `db:"treatment_started" json:"treatment_started"`
	TreatmentStartDate Date      `db:"treatment_start_date" json:"treatment_start_date"`
	Remarks            *string   `db:"remarks" json:"remarks,omitempty"`
	RegisteredAt       time.Time `db:"registered_at" json:"registered_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`

	// LastVisit is the patient's most recent visit date, computed on list
	// and search queries. Nil when the patient has never visited.
	LastVisit *time.Time `db:"-" json:"last_visit"`
}

// Date is an optional calendar date as submitted by a form. Forms send
// "YYYY-MM-DD", an empty string, or nothing at all; empty means not set.
type Date struct {
	Value time.Time
	Valid bool
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = Date{Value: t, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("not a date: %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Value.Format("2006-01-02"))
}

// Ptr returns the value for persistence, nil when not set.
func (d Date) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Value
	return &t
}

// DateFromPtr converts a scanned nullable column back into a Date.
func DateFromPtr(t *time.Time) Date {
	if t == nil {
		return Date{}
	}
	return Date{Value: *t, Valid: true}
}

// Normalize coerces empty-string optional fields to nil. Form clients
// submit "" for fields the user never touched; an empty string is never a
// meaningful phone number or address part.
func (p *Patient) Normalize() {
	p.Phone = emptyToNil(p.Phone)
	p.Conditions = emptyToNil(p.Conditions)
	p.Region = emptyToNil(p.Region)
	p.Zone = emptyToNil(p.Zone)
	p.Woreda = emptyToNil(p.Woreda)
	p.Kebele = emptyToNil(p.Kebele)
	p.Remarks = emptyToNil(p.Remarks)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// Validate checks the fields required at registration and update time.
func (p *Patient) Validate() error {
	if p.FullName == "" {
		return fmt.Errorf("%w: full_name is required", ErrInvalid)
	}
	if p.Age < 1 || p.Age > 99 {
		return fmt.Errorf("%w: age must be between 1 and 99", ErrInvalid)
	}
	if !validGenders[p.Gender] {
		return fmt.Errorf("%w: gender must be Male, Female or Other", ErrInvalid)
	}
	if p.Conditions == nil || *p.Conditions == "" {
		return fmt.Errorf("%w: conditions is required", ErrInvalid)
	}
	if p.PatientType != TypeNew && p.PatientType != TypeRepeat {
		return fmt.Errorf("%w: patient_type must be New or Repeat", ErrInvalid)
	}
	return nil
}

// GenerateMRN produces a pseudo-random 6-digit display identifier.
// Uniqueness is enforced by the database; Register retries on collision.
func GenerateMRN() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}
