package features

import (
	"encoding/json"
	"net/http"

	"minato-cat-support/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, codec Codec) {
	r.Route("/features", func(fr chi.Router) {
		fr.Get("/vocabulary", vocabularyHandler(codec))
		fr.Post("/decompose", decomposeHandler(codec))
		fr.Post("/compose", composeHandler(codec))
	})
}

type decomposeRequest struct {
	Text string `json:"text"`
}

type composeResponse struct {
	Text string `json:"text"`
}

// vocabularyHandler godoc
// @Summary Vocabulario de rasgos
// @Description Listas de colores, patrones, pelaje y colas que reconoce el formulario de gatos.
// @Tags features
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} Vocabulary
// @Failure 401 {string} string "unauthorized"
// @Router /features/vocabulary [get]
func vocabularyHandler(codec Codec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Actor(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, codec.Vocabulary())
	}
}

// decomposeHandler godoc
// @Summary Separar texto de rasgos
// @Description Extrae patrón, color, pelaje y cola del texto libre; el resto queda en other.
// @Tags features
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body decomposeRequest true "Texto de rasgos"
// @Success 200 {object} Parts
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Router /features/decompose [post]
func decomposeHandler(codec Codec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Actor(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req decomposeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, codec.Decompose(req.Text))
	}
}

// composeHandler godoc
// @Summary Componer texto de rasgos
// @Description Une los campos en orden patrón, color, pelaje, cola y agrega other tal cual. Omite vacíos y "desconocido".
// @Tags features
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body Parts true "Rasgos estructurados"
// @Success 200 {object} composeResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Router /features/compose [post]
func composeHandler(codec Codec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Actor(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var p Parts
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, composeResponse{Text: codec.Compose(p)})
	}
}

// writeJSON está duplicado intencionalmente en los handlers de cada módulo
// para no crear un paquete de helpers compartido demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
