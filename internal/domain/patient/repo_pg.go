package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repoPG struct {
	db queryable
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{db: pool}
}

// complianceSelect aggregates consumption records per patient. The patients
// view supplies the RM number and gender code; the INNER JOIN keeps only
// monitored patients. Averages are rounded to two decimals in SQL so every
// caller sees the same number.
const complianceSelect = `
SELECT p.id,
       p.rm_number,
       p.name,
       p.birth_date,
       p.gender,
       p.created_at,
       ROUND(AVG(r.persentase_konsumsi)::numeric, 2)::float8 AS compliance_percentage,
       COUNT(DISTINCT r.id_riwayat_pemantauan_minum_obat) AS total_doses,
       COUNT(DISTINCT r.id_riwayat_pemantauan_minum_obat) FILTER (WHERE r.persentase_konsumsi >= 80) AS taken_doses,
       COALESCE(STRING_AGG(DISTINCT n.nama_obat, ', '), 'Tidak ada obat') AS medicine_name
FROM patients p
JOIN riwayat_pemantauan_minum_obat r ON r.id_pengguna = p.id
LEFT JOIN notifikasi_pengingat_obat n ON n.id_notifikasi_pengingat_obat = r.id_notifikasi_pengingat_obat`

const complianceGroup = `
GROUP BY p.id, p.rm_number, p.name, p.birth_date, p.gender, p.created_at`

const searchFilter = `
WHERE (p.name ILIKE '%' || $1 || '%' OR p.rm_number ILIKE '%' || $1 || '%')`

func (r *repoPG) ListCompliance(ctx context.Context, params ListParams) ([]*Compliance, int, error) {
	// An omitted or empty search must run the unfiltered query, not a
	// degenerate LIKE '%%' match.
	var (
		total int
		rows  pgx.Rows
		err   error
	)
	if params.Search == "" {
		countQ := `SELECT COUNT(DISTINCT p.id) FROM patients p
JOIN riwayat_pemantauan_minum_obat r ON r.id_pengguna = p.id`
		if err = r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count monitored patients: %w", err)
		}
		q := complianceSelect + complianceGroup + `
ORDER BY compliance_percentage DESC, p.name ASC
LIMIT $1 OFFSET $2`
		rows, err = r.db.Query(ctx, q, params.Limit, params.Offset)
	} else {
		countQ := `SELECT COUNT(DISTINCT p.id) FROM patients p
JOIN riwayat_pemantauan_minum_obat r ON r.id_pengguna = p.id` + searchFilter
		if err = r.db.QueryRow(ctx, countQ, params.Search).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count monitored patients: %w", err)
		}
		q := complianceSelect + searchFilter + complianceGroup + `
ORDER BY compliance_percentage DESC, p.name ASC
LIMIT $2 OFFSET $3`
		rows, err = r.db.Query(ctx, q, params.Search, params.Limit, params.Offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("query compliance listing: %w", err)
	}
	defer rows.Close()

	var list []*Compliance
	for rows.Next() {
		c, err := scanCompliance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan compliance row: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate compliance rows: %w", err)
	}

	return list, total, nil
}

func (r *repoPG) GetCompliance(ctx context.Context, id int64) (*Compliance, error) {
	q := complianceSelect + `
WHERE p.id = $1` + complianceGroup
	c, err := scanCompliance(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query patient compliance: %w", err)
	}
	return c, nil
}

func (r *repoPG) Create(ctx context.Context, name, password, gender string, birthDate *string) (*Created, error) {
	created := &Created{Name: name, Gender: GenderCode(gender)}
	err := r.db.QueryRow(ctx, `
INSERT INTO pengguna (nama_lengkap, password, jenis_kelamin, tanggal_lahir)
VALUES ($1, $2, $3, $4::date)
RETURNING id_pengguna, created_at`,
		name, password, gender, birthDate,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	created.RMNumber = fmt.Sprintf("RM%06d", created.ID)
	return created, nil
}

func (r *repoPG) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pengguna WHERE id_pengguna = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check patient exists: %w", err)
	}
	return exists, nil
}

func (r *repoPG) ConsumptionHistory(ctx context.Context, id int64, limit int) ([]*ConsumptionRecord, error) {
	rows, err := r.db.Query(ctx, `
SELECT r.id_riwayat_pemantauan_minum_obat,
       COALESCE(n.nama_obat, 'Tidak diketahui') AS medicine_name,
       r.persentase_konsumsi::float8,
       r.catatan,
       n.tanggal_konsumsi,
       r.created_at
FROM riwayat_pemantauan_minum_obat r
LEFT JOIN notifikasi_pengingat_obat n ON n.id_notifikasi_pengingat_obat = r.id_notifikasi_pengingat_obat
WHERE r.id_pengguna = $1
ORDER BY r.created_at DESC
LIMIT $2`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("query consumption history: %w", err)
	}
	defer rows.Close()

	var records []*ConsumptionRecord
	for rows.Next() {
		rec := &ConsumptionRecord{}
		if err := rows.Scan(&rec.ID, &rec.MedicineName, &rec.Percentage, &rec.Notes, &rec.ConsumedAt, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan consumption record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consumption records: %w", err)
	}

	return records, nil
}

func (r *repoPG) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}
	err := r.db.QueryRow(ctx, `
SELECT COUNT(*) FILTER (WHERE avg_pct >= 80),
       COUNT(*) FILTER (WHERE avg_pct >= 50 AND avg_pct < 80),
       COUNT(*) FILTER (WHERE avg_pct < 50),
       COUNT(*)
FROM (
    SELECT AVG(persentase_konsumsi) AS avg_pct
    FROM riwayat_pemantauan_minum_obat
    GROUP BY id_pengguna
) monitored`,
	).Scan(&stats.HighCompliance, &stats.MediumCompliance, &stats.LowCompliance, &stats.TotalPatients)
	if err != nil {
		return nil, fmt.Errorf("query compliance statistics: %w", err)
	}
	return stats, nil
}

func scanCompliance(row pgx.Row) (*Compliance, error) {
	c := &Compliance{}
	err := row.Scan(
		&c.ID, &c.RMNumber, &c.Name, &c.BirthDate, &c.Gender, &c.CreatedAt,
		&c.CompliancePercentage, &c.TotalDoses, &c.TakenDoses, &c.MedicineName,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
