package calendar

import (
	"time"

	"minato-cat-support/internal/ports/auth"
)

const (
	DefaultEpoch             = "2025-01-01"
	DefaultGeneralWindowDays = 28
	DateLayout               = "2006-01-02"
	MonthLayout              = "2006-01"
)

// Policy decide qué fechas puede consultar cada rol.
// Todas las comparaciones son por fecha calendario en loc.
type Policy struct {
	epoch      time.Time
	windowDays int
	loc        *time.Location
}

// NewPolicy: epoch se trunca a medianoche en loc; windowDays<=0 usa el default.
func NewPolicy(epoch time.Time, windowDays int, loc *time.Location) Policy {
	if loc == nil {
		loc = time.Local
	}
	if windowDays <= 0 {
		windowDays = DefaultGeneralWindowDays
	}
	p := Policy{windowDays: windowDays, loc: loc}
	p.epoch = p.Day(epoch)
	return p
}

// DefaultPolicy usa epoch 2025-01-01 y ventana de 28 días.
func DefaultPolicy(loc *time.Location) Policy {
	if loc == nil {
		loc = time.Local
	}
	epoch, _ := time.ParseInLocation(DateLayout, DefaultEpoch, loc)
	return NewPolicy(epoch, DefaultGeneralWindowDays, loc)
}

func (p Policy) Location() *time.Location { return p.loc }
func (p Policy) Epoch() time.Time         { return p.epoch }
func (p Policy) WindowDays() int          { return p.windowDays }

// Day trunca t a medianoche local.
func (p Policy) Day(t time.Time) time.Time {
	y, m, d := t.In(p.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.loc)
}

// ParseDate interpreta YYYY-MM-DD en la zona de la política.
func (p Policy) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, p.loc)
}

// AccessWindowStart devuelve la primera fecha consultable por el rol.
// Cualquier rol distinto de admin se trata como general.
func (p Policy) AccessWindowStart(role auth.Role, today time.Time) time.Time {
	if role == auth.RoleAdmin {
		return p.epoch
	}
	start := p.Day(today).AddDate(0, 0, -p.windowDays)
	if start.Before(p.epoch) {
		return p.epoch
	}
	return start
}

func (p Policy) IsDateSelectable(date time.Time, role auth.Role, today time.Time) bool {
	d := p.Day(date)
	t := p.Day(today)
	if d.Before(p.epoch) || d.After(t) {
		return false
	}
	return !d.Before(p.AccessWindowStart(role, today))
}

func monthOf(t time.Time, loc *time.Location) time.Time {
	y, m, _ := t.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}

// CanShowMonth: entre el mes del epoch y el mes actual, ambos inclusive.
func (p Policy) CanShowMonth(month, today time.Time) bool {
	m := monthOf(month, p.loc)
	return !m.Before(monthOf(p.epoch, p.loc)) && !m.After(monthOf(today, p.loc))
}

// PrevMonth devuelve el mes anterior si es navegable; si no, el mismo mes y false.
func (p Policy) PrevMonth(current, today time.Time) (time.Time, bool) {
	cur := monthOf(current, p.loc)
	prev := cur.AddDate(0, -1, 0)
	if !p.CanShowMonth(prev, today) {
		return cur, false
	}
	return prev, true
}

func (p Policy) NextMonth(current, today time.Time) (time.Time, bool) {
	cur := monthOf(current, p.loc)
	next := cur.AddDate(0, 1, 0)
	if !p.CanShowMonth(next, today) {
		return cur, false
	}
	return next, true
}
