package medicine

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

// sortColumns maps the validated sort keys onto view columns. Anything not in
// this map never reaches the query string.
var sortColumns = map[string]string{
	"name":       "name",
	"type":       "type",
	"created_at": "created_at",
	"id":         "id",
}

const medicineSelect = `
SELECT id, name, type, dosage, description, created_at
FROM medicines`

func (r *repoPG) List(ctx context.Context, params ListParams) ([]*Medicine, int, error) {
	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "name"
	}
	order := "ASC"
	if params.SortOrder == "DESC" {
		order = "DESC"
	}

	where := ""
	args := []any{}
	next := 1
	if params.Search != "" {
		where = fmt.Sprintf(" WHERE name ILIKE '%%' || $%d || '%%'", next)
		args = append(args, params.Search)
		next++
	}
	if params.Type != "" {
		clause := "WHERE"
		if where != "" {
			clause = "AND"
		}
		where += fmt.Sprintf(" %s type = $%d", clause, next)
		args = append(args, params.Type)
		next++
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM medicines"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medicines: %w", err)
	}

	q := fmt.Sprintf("%s%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d",
		medicineSelect, where, column, order, next, next+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query medicines: %w", err)
	}
	defer rows.Close()

	var list []*Medicine
	for rows.Next() {
		m := &Medicine{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.Dosage, &m.Description, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan medicine row: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate medicine rows: %w", err)
	}

	return list, total, nil
}

func (r *repoPG) Get(ctx context.Context, id int64) (*Medicine, error) {
	m := &Medicine{}
	err := r.db.QueryRow(ctx, medicineSelect+`
WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.Type, &m.Dosage, &m.Description, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query medicine: %w", err)
	}
	return m, nil
}

// Create records a receipt and folds the medicine into the durable catalog in
// one statement, so the receipt and its catalog row cannot diverge. The
// DO UPDATE arm makes RETURNING yield the id of a pre-existing catalog row.
func (r *repoPG) Create(ctx context.Context, req *CreateRequest) (*Created, error) {
	created := &Created{Name: req.Name}
	err := r.db.QueryRow(ctx, `
WITH catalog AS (
    INSERT INTO medicine_catalog (name, type, dosage, description)
    VALUES ($2, COALESCE($3, ''), COALESCE($4, ''), '')
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
)
INSERT INTO penerimaan_obat (id_pengguna, nama_obat, jenis_obat, dosis, catatan)
VALUES ($1, $2, $3, $4, $5)
RETURNING id_penerimaan_obat, created_at, (SELECT id FROM catalog)`,
		req.PatientID, req.Name, req.Type, req.Dosage, req.Notes,
	).Scan(&created.ID, &created.CreatedAt, &created.CatalogID)
	if err != nil {
		return nil, fmt.Errorf("insert medicine receipt: %w", err)
	}
	return created, nil
}

func (r *repoPG) LowCompliance(ctx context.Context, threshold float64, limit int) ([]*LowCompliance, error) {
	rows, err := r.db.Query(ctx, `
SELECT n.nama_obat,
       ROUND(AVG(r.persentase_konsumsi)::numeric, 2)::float8 AS average_compliance,
       COUNT(DISTINCT r.id_pengguna) AS patient_count,
       COUNT(*) AS record_count
FROM riwayat_pemantauan_minum_obat r
JOIN notifikasi_pengingat_obat n ON n.id_notifikasi_pengingat_obat = r.id_notifikasi_pengingat_obat
WHERE n.nama_obat IS NOT NULL AND n.nama_obat <> ''
GROUP BY n.nama_obat
HAVING AVG(r.persentase_konsumsi) < $1
ORDER BY average_compliance ASC
LIMIT $2`, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("query low compliance medicines: %w", err)
	}
	defer rows.Close()

	var list []*LowCompliance
	for rows.Next() {
		lc := &LowCompliance{}
		if err := rows.Scan(&lc.Name, &lc.AverageCompliance, &lc.PatientCount, &lc.RecordCount); err != nil {
			return nil, fmt.Errorf("scan low compliance row: %w", err)
		}
		list = append(list, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate low compliance rows: %w", err)
	}

	return list, nil
}

func (r *repoPG) MostPrescribed(ctx context.Context, days, limit int) ([]*Prescribed, error) {
	rows, err := r.db.Query(ctx, `
SELECT nama_obat, COUNT(*) AS receipt_count
FROM penerimaan_obat
WHERE nama_obat IS NOT NULL AND nama_obat <> ''
  AND created_at >= NOW() - make_interval(days => $1)
GROUP BY nama_obat
ORDER BY receipt_count DESC, nama_obat ASC
LIMIT $2`, days, limit)
	if err != nil {
		return nil, fmt.Errorf("query most prescribed medicines: %w", err)
	}
	defer rows.Close()

	var list []*Prescribed
	for rows.Next() {
		p := &Prescribed{}
		if err := rows.Scan(&p.Name, &p.Count); err != nil {
			return nil, fmt.Errorf("scan prescribed row: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prescribed rows: %w", err)
	}

	return list, nil
}

func (r *repoPG) Statistics(ctx context.Context, id int64) (*Statistics, error) {
	stats := &Statistics{}
	err := r.db.QueryRow(ctx, `
SELECT m.name,
       (SELECT COUNT(*) FROM penerimaan_obat po WHERE po.nama_obat = m.name),
       COUNT(r.id_riwayat_pemantauan_minum_obat),
       COALESCE(MIN(r.persentase_konsumsi)::float8, 0),
       COALESCE(ROUND(AVG(r.persentase_konsumsi)::numeric, 2)::float8, 0),
       COALESCE(MAX(r.persentase_konsumsi)::float8, 0)
FROM medicines m
LEFT JOIN notifikasi_pengingat_obat n ON n.nama_obat = m.name
LEFT JOIN riwayat_pemantauan_minum_obat r ON r.id_notifikasi_pengingat_obat = n.id_notifikasi_pengingat_obat
WHERE m.id = $1
GROUP BY m.name`, id,
	).Scan(&stats.Name, &stats.TotalReceipts, &stats.RecordCount,
		&stats.MinCompliance, &stats.AvgCompliance, &stats.MaxCompliance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query medicine statistics: %w", err)
	}

	rows, err := r.db.Query(ctx, `
SELECT u.jenis_kelamin, COUNT(DISTINCT po.id_pengguna)
FROM penerimaan_obat po
JOIN pengguna u ON u.id_pengguna = po.id_pengguna
WHERE po.nama_obat = $1
GROUP BY u.jenis_kelamin
ORDER BY u.jenis_kelamin`, stats.Name)
	if err != nil {
		return nil, fmt.Errorf("query medicine usage by gender: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		g := &GenderUsage{}
		if err := rows.Scan(&g.Gender, &g.Count); err != nil {
			return nil, fmt.Errorf("scan gender usage row: %w", err)
		}
		stats.UsageByGender = append(stats.UsageByGender, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gender usage rows: %w", err)
	}

	return stats, nil
}
