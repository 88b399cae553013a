package postgres

import (
	"context"
	"database/sql"

	"minato-cat-support/internal/domain/reports"
)

type ReportsRepo struct {
	db *sql.DB
}

func NewReportsRepo(db *sql.DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

func (r *ReportsRepo) Append(ctx context.Context, rep reports.Report) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (
			id, cat_id, reporter_id,
			fed, watered, condition,
			notes, urgent_detail, urgent_photo, attention_detail,
			ts_ms
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		rep.ID,
		rep.CatID,
		rep.ReporterID,
		rep.Fed,
		rep.Watered,
		string(rep.Condition),
		rep.Notes,
		rep.UrgentDetail,
		rep.UrgentPhoto,
		rep.AttentionDetail,
		rep.Timestamp,
	)
	if isUniqueViolation(err) {
		return reports.ErrDuplicateReport
	}
	return err
}

func (r *ReportsRepo) ListByTimeRange(ctx context.Context, startMs, endMs int64) ([]reports.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, cat_id, reporter_id,
			fed, watered, condition,
			notes, urgent_detail, urgent_photo, attention_detail,
			ts_ms
		FROM reports
		WHERE ts_ms >= $1 AND ts_ms <= $2
		ORDER BY ts_ms DESC, id
	`, startMs, endMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.Report, 0)
	for rows.Next() {
		var rep reports.Report
		var cond string
		if err := rows.Scan(
			&rep.ID,
			&rep.CatID,
			&rep.ReporterID,
			&rep.Fed,
			&rep.Watered,
			&cond,
			&rep.Notes,
			&rep.UrgentDetail,
			&rep.UrgentPhoto,
			&rep.AttentionDetail,
			&rep.Timestamp,
		); err != nil {
			return nil, err
		}
		rep.Condition = reports.Condition(cond)
		out = append(out, rep)
	}

	return out, rows.Err()
}
