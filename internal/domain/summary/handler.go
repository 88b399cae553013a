package summary

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"minato-cat-support/internal/domain/calendar"
	"minato-cat-support/internal/domain/reports"
	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/summary", getSummaryHandler(svc))
	r.Get("/calendar", getCalendarHandler(svc))
}

type incidentResponse struct {
	Report    reports.ReportResponse `json:"report"`
	CatName   string                 `json:"cat_name"`
	PointID   string                 `json:"point_id"`
	PointName string                 `json:"point_name"`
}

type zoneResponse struct {
	ZoneID     string               `json:"zone_id"`
	ZoneName   string               `json:"zone_name"`
	UnfedCats  []roster.CatResponse `json:"unfed_cats"`
	UnfedCount int                  `json:"unfed_count"`
	Complete   bool                 `json:"complete"`
}

type summaryResponse struct {
	Date       string                   `json:"date"`
	Reports    []reports.ReportResponse `json:"reports"`
	Incidents  []incidentResponse       `json:"incidents"`
	FedCatIDs  []string                 `json:"fed_cat_ids"`
	UnfedCats  []roster.CatResponse     `json:"unfed_cats"`
	TotalFed   int                      `json:"total_fed"`
	TotalUnfed int                      `json:"total_unfed"`
	Zones      []zoneResponse           `json:"zones"`
}

// getSummaryHandler godoc
// @Summary Resumen diario
// @Description Reconstruye el día local: gatos alimentados y pendientes, incidentes y desglose por zona. admin puede consultar desde 2025-01-01; general solo los últimos 28 días.
// @Tags summary
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (admin|general)"
// @Param Authorization header string false "Bearer token en producción"
// @Param date query string false "Fecha YYYY-MM-DD; por defecto hoy"
// @Success 200 {object} summaryResponse
// @Failure 400 {string} string "date must be YYYY-MM-DD"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "date not selectable"
// @Failure 503 {string} string "storage unavailable"
// @Router /summary [get]
func getSummaryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.Actor(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		date := svc.Today()
		if s := strings.TrimSpace(r.URL.Query().Get("date")); s != "" {
			d, err := svc.Policy().ParseDate(s)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = d
		}

		sum, err := svc.ForDate(r.Context(), actor, date)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSummaryResponse(sum))
	}
}

// getCalendarHandler godoc
// @Summary Grilla mensual del calendario
// @Description Días del mes con flags selectable/locked/today para el rol del usuario, y meses navegables prev/next.
// @Tags summary
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (admin|general)"
// @Param Authorization header string false "Bearer token en producción"
// @Param month query string false "Mes YYYY-MM; por defecto el actual"
// @Success 200 {object} calendar.MonthView
// @Failure 400 {string} string "month must be YYYY-MM / month out of range"
// @Failure 401 {string} string "unauthorized"
// @Router /calendar [get]
func getCalendarHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.Actor(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		month := svc.Today()
		if s := strings.TrimSpace(r.URL.Query().Get("month")); s != "" {
			m, err := time.ParseInLocation(calendar.MonthLayout, s, svc.Policy().Location())
			if err != nil {
				http.Error(w, "month must be YYYY-MM", http.StatusBadRequest)
				return
			}
			month = m
		}

		v, err := svc.Month(actor, month)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDateNotSelectable):
		http.Error(w, "date not selectable", http.StatusForbidden)
	case errors.Is(err, calendar.ErrMonthOutOfRange):
		http.Error(w, "month out of range", http.StatusBadRequest)
	default:
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	}
}

func toSummaryResponse(s Summary) summaryResponse {
	out := summaryResponse{
		Date:       s.Date,
		Reports:    make([]reports.ReportResponse, 0, len(s.Reports)),
		Incidents:  make([]incidentResponse, 0, len(s.Incidents)),
		FedCatIDs:  s.FedCatIDs,
		UnfedCats:  catResponses(s.UnfedCats),
		TotalFed:   s.TotalFed,
		TotalUnfed: s.TotalUnfed,
		Zones:      make([]zoneResponse, 0, len(s.Zones)),
	}
	if out.FedCatIDs == nil {
		out.FedCatIDs = []string{}
	}
	for _, r := range s.Reports {
		out.Reports = append(out.Reports, reports.ToReportResponse(r))
	}
	for _, inc := range s.Incidents {
		out.Incidents = append(out.Incidents, incidentResponse{
			Report:    reports.ToReportResponse(inc.Report),
			CatName:   inc.CatName,
			PointID:   inc.PointID,
			PointName: inc.PointName,
		})
	}
	for _, z := range s.Zones {
		out.Zones = append(out.Zones, zoneResponse{
			ZoneID:     z.ZoneID,
			ZoneName:   z.ZoneName,
			UnfedCats:  catResponses(z.UnfedCats),
			UnfedCount: z.UnfedCount,
			Complete:   z.Complete,
		})
	}
	return out
}

func catResponses(cs []roster.Cat) []roster.CatResponse {
	out := make([]roster.CatResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, roster.ToCatResponse(c))
	}
	return out
}

// writeJSON está duplicado intencionalmente en los handlers de cada módulo
// para no crear un paquete de helpers compartido demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
