package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"minato-cat-support/internal/domain/reports"
)

// reportRepo es append-only; guarda en orden de llegada.
type reportRepo struct {
	mu    sync.RWMutex
	items []reports.Report
	ids   map[string]struct{}
}

func NewReportRepo() reports.Repository {
	return &reportRepo{
		ids: make(map[string]struct{}),
	}
}

func (r *reportRepo) Append(ctx context.Context, rep reports.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rep.ID == "" {
		return errors.New("report id required")
	}
	if _, exists := r.ids[rep.ID]; exists {
		return reports.ErrDuplicateReport
	}

	r.ids[rep.ID] = struct{}{}
	r.items = append(r.items, rep)
	return nil
}

func (r *reportRepo) ListByTimeRange(ctx context.Context, startMs, endMs int64) ([]reports.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reports.Report, 0)
	for _, rep := range r.items {
		if rep.Timestamp < startMs || rep.Timestamp > endMs {
			continue
		}
		out = append(out, rep)
	}

	// Más recientes primero
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out, nil
}
