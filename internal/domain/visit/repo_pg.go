package visit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const visitCols = `id, patient_id, visit_date,
	systolic_bp, diastolic_bp, heart_rate, temperature, respiratory_rate, spo2,
	blood_sugar, hba1c, creatinine, cholesterol, triglycerides, weight,
	urinalysis, complications, notes, created_at`

func (r *repoPG) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO visit (
			id, patient_id, visit_date,
			systolic_bp, diastolic_bp, heart_rate, temperature, respiratory_rate, spo2,
			blood_sugar, hba1c, creatinine, cholesterol, triglycerides, weight,
			urinalysis, complications, notes
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
		)`,
		v.ID, v.PatientID, v.VisitDate,
		v.SystolicBP, v.DiastolicBP, v.HeartRate, v.Temperature, v.RespiratoryRate, v.SpO2,
		v.BloodSugar, v.HbA1c, v.Creatinine, v.Cholesterol, v.Triglycerides, v.Weight,
		v.Urinalysis, v.Complications, v.Notes,
	)
	if err != nil {
		return err
	}
	return r.conn(ctx).QueryRow(ctx,
		`SELECT created_at FROM visit WHERE id = $1`, v.ID,
	).Scan(&v.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Visit, error) {
	v, err := scanVisit(r.conn(ctx).QueryRow(ctx,
		`SELECT `+visitCols+` FROM visit WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM visit WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM visit WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+visitCols+` FROM visit WHERE patient_id = $1
		 ORDER BY visit_date DESC, created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		var v Visit
		if err := scanVisitFields(rows, &v); err != nil {
			return nil, 0, err
		}
		visits = append(visits, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	if err := scanVisitFields(row, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func scanVisitFields(row pgx.Row, v *Visit) error {
	return row.Scan(
		&v.ID, &v.PatientID, &v.VisitDate,
		&v.SystolicBP, &v.DiastolicBP, &v.HeartRate, &v.Temperature, &v.RespiratoryRate, &v.SpO2,
		&v.BloodSugar, &v.HbA1c, &v.Creatinine, &v.Cholesterol, &v.Triglycerides, &v.Weight,
		&v.Urinalysis, &v.Complications, &v.Notes, &v.CreatedAt,
	)
}
