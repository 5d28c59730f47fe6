package report

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) PatientFacts(ctx context.Context, w Window) ([]PatientFact, error) {
	query := `SELECT gender, conditions, patient_type FROM patient`
	var args []interface{}
	if !w.IsZero() {
		start, end := w.Range()
		query += ` WHERE registered_at >= $1 AND registered_at < $2`
		args = append(args, start, end)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []PatientFact
	for rows.Next() {
		var f PatientFact
		if err := rows.Scan(&f.Gender, &f.Conditions, &f.PatientType); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

func (r *repoPG) RecentVisits(ctx context.Context, w Window, limit int) ([]RecentVisit, error) {
	query := `
		SELECT v.id, v.patient_id, p.full_name, p.mrn, v.visit_date
		FROM visit v
		JOIN patient p ON p.id = v.patient_id`
	args := []interface{}{limit}
	if !w.IsZero() {
		start, end := w.Range()
		query += ` WHERE v.visit_date >= $2 AND v.visit_date < $3`
		args = append(args, start, end)
	}
	query += ` ORDER BY v.visit_date DESC, v.created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []RecentVisit
	for rows.Next() {
		var rv RecentVisit
		if err := rows.Scan(&rv.ID, &rv.PatientID, &rv.PatientName, &rv.MRN, &rv.VisitDate); err != nil {
			return nil, err
		}
		visits = append(visits, rv)
	}
	return visits, rows.Err()
}
