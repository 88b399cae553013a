package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/ports/auth"
)

type RosterRepo struct {
	db *sql.DB
}

func NewRosterRepo(db *sql.DB) *RosterRepo {
	return &RosterRepo{db: db}
}

const catColumns = `
	id, name, features, image_url,
	zone_id, point_id, sub_point_ids,
	status, status_at, last_fed,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCat(s rowScanner) (roster.Cat, error) {
	var c roster.Cat
	var subs []byte
	var status string
	var statusAt, lastFed sql.NullTime

	if err := s.Scan(
		&c.ID,
		&c.Name,
		&c.Features,
		&c.ImageURL,
		&c.ZoneID,
		&c.PointID,
		&subs,
		&status,
		&statusAt,
		&lastFed,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return roster.Cat{}, err
	}

	if len(subs) > 0 {
		if err := json.Unmarshal(subs, &c.SubPointIDs); err != nil {
			return roster.Cat{}, fmt.Errorf("cat %s: sub_point_ids: %w", c.ID, err)
		}
	}
	c.Status = roster.CatStatus(status)
	if statusAt.Valid {
		t := statusAt.Time
		c.StatusAt = &t
	}
	if lastFed.Valid {
		t := lastFed.Time
		c.LastFed = &t
	}
	return c, nil
}

func (r *RosterRepo) ListCats(ctx context.Context) ([]roster.Cat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+catColumns+` FROM cats ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]roster.Cat, 0)
	for rows.Next() {
		c, err := scanCat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *RosterRepo) GetCat(ctx context.Context, id string) (roster.Cat, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return roster.Cat{}, roster.ErrNotFound
	}

	c, err := scanCat(r.db.QueryRowContext(ctx, `SELECT `+catColumns+` FROM cats WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return roster.Cat{}, roster.ErrNotFound
	}
	return c, err
}

func (r *RosterRepo) SaveCat(ctx context.Context, c roster.Cat, isNew bool) error {
	subs := c.SubPointIDs
	if subs == nil {
		subs = []string{}
	}
	subsJSON, err := json.Marshal(subs)
	if err != nil {
		return err
	}

	args := []any{
		c.ID, c.Name, c.Features, c.ImageURL,
		c.ZoneID, c.PointID, string(subsJSON),
		string(c.Status), nullTime(c.StatusAt), nullTime(c.LastFed),
		c.CreatedAt, c.UpdatedAt,
	}

	if isNew {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO cats (`+catColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8,$9,$10,$11,$12)
		`, args...)
		if isUniqueViolation(err) {
			return roster.ErrAlreadyExists
		}
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE cats SET
			name = $2, features = $3, image_url = $4,
			zone_id = $5, point_id = $6, sub_point_ids = $7::jsonb,
			status = $8, status_at = $9, last_fed = $10,
			created_at = $11, updated_at = $12
		WHERE id = $1
	`, args...)
	return affectedOrNotFound(res, err)
}

func (r *RosterRepo) ListPoints(ctx context.Context) ([]roster.FeedingPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, zone_id, lat, lng, last_watered
		FROM feeding_points
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]roster.FeedingPoint, 0)
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *RosterRepo) GetPoint(ctx context.Context, id string) (roster.FeedingPoint, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return roster.FeedingPoint{}, roster.ErrNotFound
	}

	p, err := scanPoint(r.db.QueryRowContext(ctx, `
		SELECT id, name, zone_id, lat, lng, last_watered
		FROM feeding_points
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return roster.FeedingPoint{}, roster.ErrNotFound
	}
	return p, err
}

func scanPoint(s rowScanner) (roster.FeedingPoint, error) {
	var p roster.FeedingPoint
	var lat, lng sql.NullFloat64
	var watered sql.NullTime

	if err := s.Scan(&p.ID, &p.Name, &p.ZoneID, &lat, &lng, &watered); err != nil {
		return roster.FeedingPoint{}, err
	}
	// Solo se considera ubicado si vienen ambos.
	if lat.Valid && lng.Valid {
		la, ln := lat.Float64, lng.Float64
		p.Lat, p.Lng = &la, &ln
	}
	if watered.Valid {
		t := watered.Time
		p.LastWatered = &t
	}
	return p, nil
}

func (r *RosterRepo) SavePoint(ctx context.Context, p roster.FeedingPoint, isNew bool) error {
	args := []any{p.ID, p.Name, p.ZoneID, nullFloat(p.Lat), nullFloat(p.Lng), nullTime(p.LastWatered)}

	if isNew {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO feeding_points (id, name, zone_id, lat, lng, last_watered)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, args...)
		if isUniqueViolation(err) {
			return roster.ErrAlreadyExists
		}
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE feeding_points
		SET name = $2, zone_id = $3, lat = $4, lng = $5, last_watered = $6
		WHERE id = $1
	`, args...)
	return affectedOrNotFound(res, err)
}

func (r *RosterRepo) ListZones(ctx context.Context) ([]roster.Zone, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM zones ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]roster.Zone, 0)
	for rows.Next() {
		var z roster.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Description); err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func (r *RosterRepo) SaveZone(ctx context.Context, z roster.Zone, isNew bool) error {
	if isNew {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO zones (id, name, description) VALUES ($1,$2,$3)
		`, z.ID, z.Name, z.Description)
		if isUniqueViolation(err) {
			return roster.ErrAlreadyExists
		}
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE zones SET name = $2, description = $3 WHERE id = $1
	`, z.ID, z.Name, z.Description)
	return affectedOrNotFound(res, err)
}

func (r *RosterRepo) ListMembers(ctx context.Context) ([]roster.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, role, phone_model, available_hours, contact_method, membership_expiry
		FROM members
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]roster.Member, 0)
	for rows.Next() {
		var m roster.Member
		var role string
		var expiry sql.NullTime
		if err := rows.Scan(&m.ID, &m.Name, &role, &m.PhoneModel, &m.AvailableHours, &m.ContactMethod, &expiry); err != nil {
			return nil, err
		}
		m.Role = auth.ParseRole(role)
		if expiry.Valid {
			t := expiry.Time
			m.MembershipExpiry = &t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *RosterRepo) SaveMember(ctx context.Context, m roster.Member, isNew bool) error {
	args := []any{m.ID, m.Name, string(m.Role), m.PhoneModel, m.AvailableHours, m.ContactMethod, nullTime(m.MembershipExpiry)}

	if isNew {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO members (id, name, role, phone_model, available_hours, contact_method, membership_expiry)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, args...)
		if isUniqueViolation(err) {
			return roster.ErrAlreadyExists
		}
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET name = $2, role = $3, phone_model = $4, available_hours = $5, contact_method = $6, membership_expiry = $7
		WHERE id = $1
	`, args...)
	return affectedOrNotFound(res, err)
}

func affectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return roster.ErrNotFound
	}
	return nil
}
