package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"minato-cat-support/internal/platform/logger"
	"minato-cat-support/internal/ports/auth"
)

var ErrUnknownCat = errors.New("unknown cat")

// CatEffects aplica el efecto de un reporte sobre el gato (estado, última comida).
type CatEffects interface {
	CatExists(ctx context.Context, catID string) (bool, error)
	ApplyReport(ctx context.Context, r Report) error
}

type Service struct {
	store   *Store
	effects CatEffects
	log     logger.Logger
	now     func() time.Time
}

func NewService(store *Store, effects CatEffects, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:   store,
		effects: effects,
		log:     log,
		now:     time.Now,
	}
}

type SubmitInput struct {
	CatID           string
	Fed             bool
	Watered         bool
	Condition       Condition
	Notes           string
	UrgentDetail    string
	UrgentPhoto     string
	AttentionDetail string

	// Timestamp en epoch ms; 0 = ahora.
	Timestamp int64
}

// Submit valida, persiste y luego actualiza el cache de estado del gato.
// Cualquier miembro autenticado puede reportar.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, in SubmitInput) (Report, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return Report{}, ErrInvalidInput
	}
	catID := strings.TrimSpace(in.CatID)
	if catID == "" {
		return Report{}, ErrInvalidInput
	}

	cond := in.Condition
	if cond == "" {
		cond = ConditionGood
	}
	if !cond.Valid() {
		return Report{}, ErrInvalidInput
	}

	if s.effects != nil {
		ok, err := s.effects.CatExists(ctx, catID)
		if err != nil {
			return Report{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		if !ok {
			return Report{}, ErrUnknownCat
		}
	}

	ts := in.Timestamp
	if ts <= 0 {
		ts = s.now().UnixMilli()
	}

	r := Report{
		ID:              uuid.NewString(),
		CatID:           catID,
		ReporterID:      actor.ID,
		Fed:             in.Fed,
		Watered:         in.Watered,
		Condition:       cond,
		Notes:           strings.TrimSpace(in.Notes),
		UrgentDetail:    strings.TrimSpace(in.UrgentDetail),
		UrgentPhoto:     strings.TrimSpace(in.UrgentPhoto),
		AttentionDetail: strings.TrimSpace(in.AttentionDetail),
		Timestamp:       ts,
	}

	stored, err := s.store.Append(ctx, r)
	if err != nil {
		return Report{}, err
	}

	// El reporte ya es durable; si falla el cache del gato solo se loguea.
	if s.effects != nil {
		if err := s.effects.ApplyReport(ctx, stored); err != nil {
			s.log.Warn("cat status not updated after report", map[string]any{
				"report_id": stored.ID,
				"cat_id":    stored.CatID,
				"err":       err,
			})
		}
	}
	return stored, nil
}

// ForDay devuelve los reportes del día local de date.
func (s *Service) ForDay(ctx context.Context, date time.Time, loc *time.Location) ([]Report, error) {
	return s.store.QueryByDay(ctx, date, loc)
}
