package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"minato-cat-support/internal/domain/calendar"
	"minato-cat-support/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, policy calendar.Policy) {
	r.Route("/reports", func(rr chi.Router) {
		rr.Post("/", submitReportHandler(svc))
		rr.Get("/", listReportsHandler(svc, policy))
	})
}

// submitReportRequest es el reporte de un voluntario para un gato.
type submitReportRequest struct {
	CatID           string    `json:"cat_id"`
	Fed             bool      `json:"fed"`
	Watered         bool      `json:"watered"`
	Condition       Condition `json:"condition" enums:"good,bad,injured"` // vacío = good
	Notes           string    `json:"notes"`
	UrgentDetail    string    `json:"urgent_detail"`
	UrgentPhoto     string    `json:"urgent_photo"` // data URL o referencia existente
	AttentionDetail string    `json:"attention_detail"`
	Timestamp       int64     `json:"timestamp"` // epoch ms; 0 = hora del servidor
}

// ReportResponse es la vista pública de un reporte; la reutiliza el resumen diario.
type ReportResponse struct {
	ID              string    `json:"id"`
	CatID           string    `json:"cat_id"`
	ReporterID      string    `json:"reporter_id"`
	Fed             bool      `json:"fed"`
	Watered         bool      `json:"watered"`
	Condition       Condition `json:"condition"`
	Notes           string    `json:"notes"`
	UrgentDetail    string    `json:"urgent_detail,omitempty"`
	UrgentPhoto     string    `json:"urgent_photo,omitempty"`
	AttentionDetail string    `json:"attention_detail,omitempty"`
	Timestamp       int64     `json:"timestamp"`
	Incident        bool      `json:"incident"`
}

// submitReportHandler godoc
// @Summary Registrar un reporte
// @Description Cualquier miembro autenticado. Guarda el reporte (inmutable) y actualiza estado y última comida del gato. Una foto urgente en data URL se mueve al almacenamiento de blobs; si falla queda inline.
// @Tags reports
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body submitReportRequest true "Reporte"
// @Success 201 {object} ReportResponse
// @Failure 400 {string} string "invalid input / unknown cat"
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {string} string "duplicate report"
// @Failure 503 {string} string "storage unavailable"
// @Router /reports [post]
func submitReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.Actor(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req submitReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rep, err := svc.Submit(r.Context(), actor, SubmitInput{
			CatID:           req.CatID,
			Fed:             req.Fed,
			Watered:         req.Watered,
			Condition:       Condition(strings.ToLower(strings.TrimSpace(string(req.Condition)))),
			Notes:           req.Notes,
			UrgentDetail:    req.UrgentDetail,
			UrgentPhoto:     req.UrgentPhoto,
			AttentionDetail: req.AttentionDetail,
			Timestamp:       req.Timestamp,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ToReportResponse(rep))
	}
}

// listReportsHandler godoc
// @Summary Reportes de un día
// @Description Reportes del día local indicado, del más nuevo al más viejo. La fecha debe estar dentro de la ventana del rol (general: últimos 28 días).
// @Tags reports
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (admin|general)"
// @Param Authorization header string false "Bearer token en producción"
// @Param date query string false "Fecha YYYY-MM-DD; por defecto hoy"
// @Success 200 {array} ReportResponse
// @Failure 400 {string} string "date must be YYYY-MM-DD"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "date not selectable"
// @Failure 503 {string} string "storage unavailable"
// @Router /reports [get]
func listReportsHandler(svc *Service, policy calendar.Policy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.Actor(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		now := svc.now()
		date := policy.Day(now)
		if s := strings.TrimSpace(r.URL.Query().Get("date")); s != "" {
			d, err := policy.ParseDate(s)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = d
		}
		if !policy.IsDateSelectable(date, actor.Role, now) {
			http.Error(w, "date not selectable", http.StatusForbidden)
			return
		}

		items, err := svc.ForDay(r.Context(), date, policy.Location())
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]ReportResponse, 0, len(items))
		for _, it := range items {
			out = append(out, ToReportResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	case errors.Is(err, ErrUnknownCat):
		http.Error(w, "unknown cat", http.StatusBadRequest)
	case errors.Is(err, ErrDuplicateReport):
		http.Error(w, "duplicate report", http.StatusConflict)
	case errors.Is(err, ErrStoreUnavailable):
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func ToReportResponse(r Report) ReportResponse {
	return ReportResponse{
		ID:              r.ID,
		CatID:           r.CatID,
		ReporterID:      r.ReporterID,
		Fed:             r.Fed,
		Watered:         r.Watered,
		Condition:       r.Condition,
		Notes:           r.Notes,
		UrgentDetail:    r.UrgentDetail,
		UrgentPhoto:     r.UrgentPhoto,
		AttentionDetail: r.AttentionDetail,
		Timestamp:       r.Timestamp,
		Incident:        r.IsIncident(),
	}
}

// writeJSON está duplicado intencionalmente en los handlers de cada módulo
// para no crear un paquete de helpers compartido demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
