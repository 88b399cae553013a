package geo

import (
	"encoding/json"
	"errors"
	"net/http"

	"minato-cat-support/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router) {
	r.Post("/coordinates/parse", parseCoordinatesHandler())
}

type parseRequest struct {
	Text string `json:"text"`
}

// parseResponse: ok=false significa texto vacío (sin coordenadas).
type parseResponse struct {
	OK  bool     `json:"ok"`
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

// parseCoordinatesHandler godoc
// @Summary Interpretar coordenadas
// @Description Acepta DMS con hemisferio (31°54'18.4"N 131°27'50.5"E) o par decimal (31.905, 131.464). Texto vacío devuelve ok=false.
// @Tags geo
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body parseRequest true "Texto con coordenadas"
// @Success 200 {object} parseResponse
// @Failure 400 {string} string "formato no reconocido"
// @Failure 401 {string} string "unauthorized"
// @Router /coordinates/parse [post]
func parseCoordinatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Actor(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req parseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, ok, err := Parse(req.Text)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				http.Error(w, perr.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "invalid input", http.StatusBadRequest)
			return
		}

		out := parseResponse{OK: ok}
		if ok {
			out.Lat, out.Lng = &c.Lat, &c.Lng
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// writeJSON está duplicado intencionalmente en los handlers de cada módulo
// para no crear un paquete de helpers compartido demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
