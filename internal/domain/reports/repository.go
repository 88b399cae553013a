package reports

import (
	"context"
	"errors"
)

var ErrDuplicateReport = errors.New("report already exists")

// Repository es append-only: no hay update ni delete.
type Repository interface {
	Append(ctx context.Context, r Report) error

	// ListByTimeRange devuelve reportes con start <= timestamp <= end, más recientes primero.
	ListByTimeRange(ctx context.Context, startMs, endMs int64) ([]Report, error)
}
