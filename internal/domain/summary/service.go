package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minato-cat-support/internal/domain/calendar"
	"minato-cat-support/internal/domain/reports"
	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/ports/auth"
)

var ErrDateNotSelectable = errors.New("date not selectable for role")

// RosterSource entrega el padrón completo.
type RosterSource interface {
	Snapshot(ctx context.Context) (roster.Snapshot, error)
}

// Service valida la fecha contra la política de calendario antes de resumir.
type Service struct {
	engine *Engine
	roster RosterSource
	policy calendar.Policy
	now    func() time.Time
}

func NewService(engine *Engine, rs RosterSource, policy calendar.Policy) *Service {
	return &Service{
		engine: engine,
		roster: rs,
		policy: policy,
		now:    time.Now,
	}
}

func (s *Service) Policy() calendar.Policy {
	return s.policy
}

func (s *Service) Today() time.Time {
	return s.policy.Day(s.now())
}

func (s *Service) ForDate(ctx context.Context, actor auth.Actor, date time.Time) (Summary, error) {
	if !s.policy.IsDateSelectable(date, actor.Role, s.now()) {
		return Summary{}, ErrDateNotSelectable
	}

	snap, err := s.roster.Snapshot(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: roster: %w", reports.ErrStoreUnavailable, err)
	}
	return s.engine.Summarize(ctx, date, snap)
}

// Month devuelve la grilla del calendario para el rol del actor.
func (s *Service) Month(actor auth.Actor, month time.Time) (calendar.MonthView, error) {
	return s.policy.Month(month, actor.Role, s.now())
}
