package summary

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"minato-cat-support/internal/domain/reports"
	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/platform/logger"
	"minato-cat-support/internal/platform/metrics"
)

// UnassignedZoneID agrupa gatos cuya zona no existe en el padrón.
const UnassignedZoneID = "unassigned"

var tracer = otel.Tracer("minato-cat-support/summary")

// ReportSource es la parte del ReportStore que usa el motor.
type ReportSource interface {
	QueryByDateRange(ctx context.Context, startMs, endMs int64) ([]reports.Report, error)
}

// Incident es un reporte con problema de salud, enriquecido con nombres para mostrar.
type Incident struct {
	Report    reports.Report
	CatName   string
	PointID   string
	PointName string
}

type ZoneBreakdown struct {
	ZoneID     string
	ZoneName   string
	UnfedCats  []roster.Cat
	UnfedCount int
	Complete   bool
}

type Summary struct {
	Date       string
	Reports    []reports.Report
	Incidents  []Incident
	FedCatIDs  []string
	UnfedCats  []roster.Cat
	TotalFed   int
	TotalUnfed int
	Zones      []ZoneBreakdown
}

type Engine struct {
	source  ReportSource
	loc     *time.Location
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewEngine(source ReportSource, loc *time.Location, log logger.Logger, m *metrics.Metrics) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{source: source, loc: loc, log: log, metrics: m}
}

// Summarize reconstruye el día local de date a partir de los reportes y el padrón.
func (e *Engine) Summarize(ctx context.Context, date time.Time, snap roster.Snapshot) (Summary, error) {
	ctx, span := tracer.Start(ctx, "summary.Summarize")
	defer span.End()

	started := time.Now()
	day := date.In(e.loc).Format("2006-01-02")
	span.SetAttributes(attribute.String("summary.date", day), attribute.Int("roster.cats", len(snap.Cats)))

	out := Summary{
		Date:      day,
		Reports:   []reports.Report{},
		Incidents: []Incident{},
		FedCatIDs: []string{},
		UnfedCats: []roster.Cat{},
	}

	// Sin gatos no hay nada que evaluar; las zonas salen completas.
	if len(snap.Cats) == 0 {
		out.Zones = breakdown(snap, nil)
		e.metrics.ObserveSummary(time.Since(started), 0)
		return out, nil
	}

	start, end := reports.DayBounds(date, e.loc)
	items, err := e.source.QueryByDateRange(ctx, start, end)
	if err != nil {
		span.RecordError(err)
		return Summary{}, err
	}
	out.Reports = items

	// Unión: basta un reporte fed=true en el día.
	fed := make(map[string]bool)
	for _, r := range items {
		if r.Fed {
			fed[r.CatID] = true
		}
	}

	catsByID := make(map[string]roster.Cat, len(snap.Cats))
	for _, c := range snap.Cats {
		catsByID[c.ID] = c
		if fed[c.ID] {
			out.FedCatIDs = append(out.FedCatIDs, c.ID)
		} else {
			out.UnfedCats = append(out.UnfedCats, c)
		}
	}
	sort.Strings(out.FedCatIDs)
	sortCats(out.UnfedCats)

	for _, r := range items {
		if !r.IsIncident() {
			continue
		}
		inc := Incident{Report: r}
		if c, ok := catsByID[r.CatID]; ok {
			inc.CatName = c.Name
			inc.PointID = c.PointID
			if p, ok := snap.Point(c.PointID); ok {
				inc.PointName = p.Name
			}
		}
		out.Incidents = append(out.Incidents, inc)
	}

	out.TotalFed = len(out.FedCatIDs)
	out.TotalUnfed = len(out.UnfedCats)
	out.Zones = breakdown(snap, out.UnfedCats)

	e.metrics.ObserveSummary(time.Since(started), out.TotalUnfed)
	e.log.Debug("daily summary computed", map[string]any{
		"date":        day,
		"reports":     len(items),
		"incidents":   len(out.Incidents),
		"total_unfed": out.TotalUnfed,
	})
	return out, nil
}

// breakdown agrupa los no alimentados por zona (vía punto principal).
// Toda zona del padrón aparece; las que no tienen pendientes quedan Complete.
func breakdown(snap roster.Snapshot, unfed []roster.Cat) []ZoneBreakdown {
	zones := make([]ZoneBreakdown, 0, len(snap.Zones)+1)
	index := make(map[string]int, len(snap.Zones))

	ordered := append([]roster.Zone(nil), snap.Zones...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	for _, z := range ordered {
		index[z.ID] = len(zones)
		zones = append(zones, ZoneBreakdown{ZoneID: z.ID, ZoneName: z.Name, UnfedCats: []roster.Cat{}})
	}

	for _, c := range unfed {
		zid := strings.TrimSpace(snap.ZoneOf(c))
		i, ok := index[zid]
		if !ok {
			i, ok = index[UnassignedZoneID]
			if !ok {
				i = len(zones)
				index[UnassignedZoneID] = i
				zones = append(zones, ZoneBreakdown{ZoneID: UnassignedZoneID, UnfedCats: []roster.Cat{}})
			}
		}
		zones[i].UnfedCats = append(zones[i].UnfedCats, c)
	}

	for i := range zones {
		zones[i].UnfedCount = len(zones[i].UnfedCats)
		zones[i].Complete = zones[i].UnfedCount == 0
	}
	return zones
}

func sortCats(cs []roster.Cat) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
}
