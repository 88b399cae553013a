package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"minato-cat-support/internal/platform/logger"
	"minato-cat-support/internal/platform/metrics"
	"minato-cat-support/internal/ports/blob"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable envuelve cualquier falla de persistencia; el caller decide si reintenta.
	ErrStoreUnavailable = errors.New("report store unavailable")
)

const DefaultPhotoTimeout = 5 * time.Second

var tracer = otel.Tracer("minato-cat-support/reports")

// Store es el log append-only de reportes.
// Antes de persistir mueve la foto urgente inline al blob store (best effort).
type Store struct {
	repo         Repository
	blobs        blob.Store
	log          logger.Logger
	metrics      *metrics.Metrics
	photoTimeout time.Duration
}

// NewStore: blobs puede ser nil (las fotos quedan inline).
func NewStore(repo Repository, blobs blob.Store, log logger.Logger, m *metrics.Metrics) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{
		repo:         repo,
		blobs:        blobs,
		log:          log,
		metrics:      m,
		photoTimeout: DefaultPhotoTimeout,
	}
}

// WithPhotoTimeout ajusta el límite del intento de reubicación de fotos.
func (s *Store) WithPhotoTimeout(d time.Duration) *Store {
	if d > 0 {
		s.photoTimeout = d
	}
	return s
}

// Append persiste el reporte y devuelve la versión guardada (con la referencia de la foto si se movió).
func (s *Store) Append(ctx context.Context, r Report) (Report, error) {
	ctx, span := tracer.Start(ctx, "reports.Append")
	defer span.End()
	span.SetAttributes(attribute.String("cat.id", r.CatID))

	if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.CatID) == "" || r.Timestamp <= 0 {
		return Report{}, ErrInvalidInput
	}

	if r.HasInlinePhoto() && s.blobs != nil {
		r.UrgentPhoto = s.relocatePhoto(ctx, r)
	}

	if err := s.repo.Append(ctx, r); err != nil {
		s.metrics.IncReportsAppended("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		if errors.Is(err, ErrDuplicateReport) {
			return Report{}, err
		}
		return Report{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	s.metrics.IncReportsAppended("ok")
	return r, nil
}

// relocatePhoto devuelve la referencia durable, o el data URL original si algo falla.
func (s *Store) relocatePhoto(ctx context.Context, r Report) string {
	ctx, cancel := context.WithTimeout(ctx, s.photoTimeout)
	defer cancel()

	l := s.log.With(map[string]any{"report_id": r.ID, "cat_id": r.CatID})

	data, contentType, err := DecodeDataURL(r.UrgentPhoto)
	if err != nil {
		s.metrics.IncPhotoRelocationFailures()
		l.Warn("urgent photo kept inline: undecodable payload", map[string]any{"err": err})
		return r.UrgentPhoto
	}

	key := fmt.Sprintf("reports/%s/urgent%s", r.ID, ExtensionFor(contentType))
	ref, err := s.blobs.Put(ctx, key, contentType, data)
	if err != nil {
		s.metrics.IncPhotoRelocationFailures()
		l.Warn("urgent photo kept inline: blob upload failed", map[string]any{"err": err})
		return r.UrgentPhoto
	}
	return ref
}

// QueryByDateRange devuelve reportes con start <= timestamp <= end, más recientes primero.
func (s *Store) QueryByDateRange(ctx context.Context, startMs, endMs int64) ([]Report, error) {
	ctx, span := tracer.Start(ctx, "reports.QueryByDateRange")
	defer span.End()
	span.SetAttributes(attribute.Int64("range.start_ms", startMs), attribute.Int64("range.end_ms", endMs))

	if endMs < startMs {
		return nil, ErrInvalidInput
	}

	items, err := s.repo.ListByTimeRange(ctx, startMs, endMs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	// El orden es parte del contrato; no dependemos del backend.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
	return items, nil
}

// QueryByDay consulta el día calendario local que contiene date.
func (s *Store) QueryByDay(ctx context.Context, date time.Time, loc *time.Location) ([]Report, error) {
	start, end := DayBounds(date, loc)
	return s.QueryByDateRange(ctx, start, end)
}

// DayBounds devuelve [00:00:00.000, 23:59:59.999] del día local de date, en epoch ms.
func DayBounds(date time.Time, loc *time.Location) (int64, int64) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start.UnixMilli(), end.UnixMilli()
}
