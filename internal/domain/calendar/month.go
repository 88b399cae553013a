package calendar

import (
	"errors"
	"time"

	"minato-cat-support/internal/ports/auth"
)

var ErrMonthOutOfRange = errors.New("month out of range")

// Day de la grilla mensual.
type Day struct {
	Date       string `json:"date"`
	Selectable bool   `json:"selectable"`
	// Locked: fecha dentro del rango global pero fuera de la ventana del rol.
	Locked bool `json:"locked"`
	Today  bool `json:"today"`
}

type MonthView struct {
	Month         string `json:"month"`
	LeadingBlanks int    `json:"leading_blanks"`
	Days          []Day  `json:"days"`
	Prev          string `json:"prev,omitempty"`
	Next          string `json:"next,omitempty"`
	WindowStart   string `json:"window_start"`
}

// Month arma la grilla del mes que contiene month para el rol.
func (p Policy) Month(month time.Time, role auth.Role, today time.Time) (MonthView, error) {
	if !p.CanShowMonth(month, today) {
		return MonthView{}, ErrMonthOutOfRange
	}

	first := monthOf(month, p.loc)
	t := p.Day(today)

	v := MonthView{
		Month:         first.Format(MonthLayout),
		LeadingBlanks: int(first.Weekday()),
		WindowStart:   p.AccessWindowStart(role, today).Format(DateLayout),
	}

	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		selectable := p.IsDateSelectable(d, role, today)
		inRange := !d.Before(p.epoch) && !d.After(t)
		v.Days = append(v.Days, Day{
			Date:       d.Format(DateLayout),
			Selectable: selectable,
			Locked:     inRange && !selectable,
			Today:      d.Equal(t),
		})
	}

	if prev, ok := p.PrevMonth(first, today); ok {
		v.Prev = prev.Format(MonthLayout)
	}
	if next, ok := p.NextMonth(first, today); ok {
		v.Next = next.Format(MonthLayout)
	}
	return v, nil
}
