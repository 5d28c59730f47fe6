package patient

import (
	"context"
	"fmt"
	"time"

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

const patientCols = `p.id, p.mrn, p.full_name, p.age, p.gender, p.phone,
	p.patient_type, p.conditions, p.region, p.zone, p.woreda, p.kebele,
	p.treatment_started, p.treatment_start_date, p.remarks,
	p.registered_at, p.updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (
			id, mrn, full_name, age, gender, phone,
			patient_type, conditions, region, zone, woreda, kebele,
			treatment_started, treatment_start_date, remarks
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
		)`,
		p.ID, p.MRN, p.FullName, p.Age, p.Gender, p.Phone,
		p.PatientType, p.Conditions, p.Region, p.Zone, p.Woreda, p.Kebele,
		p.TreatmentStarted, p.TreatmentStartDate.Ptr(), p.Remarks,
	)
	if err != nil {
		return err
	}
	return r.conn(ctx).QueryRow(ctx,
		`SELECT registered_at, updated_at FROM patient WHERE id = $1`, p.ID,
	).Scan(&p.RegisteredAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient p WHERE p.id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return p, err
}

// Update replaces the mutable fields. MRN and registered_at never change;
// they anchor foreign-key linkage and window reporting.
func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			full_name=$2, age=$3, gender=$4, phone=$5,
			patient_type=$6, conditions=$7,
			region=$8, zone=$9, woreda=$10, kebele=$11,
			treatment_started=$12, treatment_start_date=$13, remarks=$14,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FullName, p.Age, p.Gender, p.Phone,
		p.PatientType, p.Conditions,
		p.Region, p.Zone, p.Woreda, p.Kebele,
		p.TreatmentStarted, p.TreatmentStartDate.Ptr(), p.Remarks,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) DeleteWithVisits(ctx context.Context, id uuid.UUID) error {
	return db.InTx(ctx, r.pool, func(txCtx context.Context) error {
		tx := db.TxFromContext(txCtx)
		if _, err := tx.Exec(txCtx, `DELETE FROM visit WHERE patient_id = $1`, id); err != nil {
			return fmt.Errorf("delete visits: %w", err)
		}
		tag, err := tx.Exec(txCtx, `DELETE FROM patient WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete patient: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

const lastVisitJoin = `LEFT JOIN (
		SELECT patient_id, MAX(visit_date) AS last_visit
		FROM visit GROUP BY patient_id
	) v ON v.patient_id = p.id`

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+`, v.last_visit FROM patient p `+lastVisitJoin+`
		 ORDER BY p.registered_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + query + "%"
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE full_name ILIKE $1 OR mrn ILIKE $1`,
		pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+`, v.last_visit FROM patient p `+lastVisitJoin+`
		 WHERE p.full_name ILIKE $1 OR p.mrn ILIKE $1
		 ORDER BY p.registered_at DESC LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func (r *repoPG) MarkRepeat(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patient SET patient_type = $2, updated_at = NOW() WHERE id = $1`,
		id, TypeRepeat)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var startDate *time.Time
	err := row.Scan(
		&p.ID, &p.MRN, &p.FullName, &p.Age, &p.Gender, &p.Phone,
		&p.PatientType, &p.Conditions, &p.Region, &p.Zone, &p.Woreda, &p.Kebele,
		&p.TreatmentStarted, &startDate, &p.Remarks,
		&p.RegisteredAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.TreatmentStartDate = DateFromPtr(startDate)
	return &p, nil
}

func collectPatients(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var patients []*Patient
	for rows.Next() {
		var p Patient
		var startDate *time.Time
		err := rows.Scan(
			&p.ID, &p.MRN, &p.FullName, &p.Age, &p.Gender, &p.Phone,
			&p.PatientType, &p.Conditions, &p.Region, &p.Zone, &p.Woreda, &p.Kebele,
			&p.TreatmentStarted, &startDate, &p.Remarks,
			&p.RegisteredAt, &p.UpdatedAt, &p.LastVisit,
		)
		if err != nil {
			return nil, 0, err
		}
		p.TreatmentStartDate = DateFromPtr(startDate)
		patients = append(patients, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}
