package identify

import (
	"encoding/json"
	"errors"
	"net/http"

	"minato-cat-support/internal/middleware"
	"minato-cat-support/internal/ports/classifier"

	"github.com/go-chi/chi/v5"
)

// Las fotos viajan en base64 dentro del JSON.
const maxBodyBytes = 12 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/identify", func(ir chi.Router) {
		ir.Post("/", analyzeHandler(svc))
		ir.Post("/similar", similarHandler(svc))
	})
}

type imageRequest struct {
	Image string `json:"image"` // data URL o base64
}

type analysisResponse struct {
	IsCat    bool               `json:"is_cat"`
	Quality  classifier.Quality `json:"quality" enums:"high,medium,low"`
	Features string             `json:"features"`
	Message  string             `json:"message"`
}

type matchResponse struct {
	CatID    string  `json:"cat_id"`
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason"`
}

// analyzeHandler godoc
// @Summary Analizar foto de gato
// @Description Determina si hay un gato, la calidad de la foto y sus rasgos visibles. Si el modelo falla devuelve is_cat=false, quality=low y un mensaje de reintento.
// @Tags identify
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body imageRequest true "Foto"
// @Success 200 {object} analysisResponse
// @Failure 400 {string} string "invalid image"
// @Failure 401 {string} string "unauthorized"
// @Router /identify [post]
func analyzeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Actor(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		img, ok := decodeRequest(w, r)
		if !ok {
			return
		}

		a := svc.Analyze(r.Context(), img)
		writeJSON(w, http.StatusOK, analysisResponse{
			IsCat:    a.IsCat,
			Quality:  a.Quality,
			Features: a.Features,
			Message:  a.Message,
		})
	}
}

// similarHandler godoc
// @Summary Buscar gatos parecidos
// @Description Compara la foto con los gatos del padrón y devuelve hasta 3 candidatos con score entre 0 y 1. Si el modelo falla devuelve una lista vacía.
// @Tags identify
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body imageRequest true "Foto"
// @Success 200 {array} matchResponse
// @Failure 400 {string} string "invalid image"
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "storage unavailable"
// @Router /identify/similar [post]
func similarHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Actor(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		img, ok := decodeRequest(w, r)
		if !ok {
			return
		}

		results, err := svc.Similar(r.Context(), img)
		if err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}

		out := make([]matchResponse, 0, len(results))
		for _, m := range results {
			out = append(out, matchResponse{CatID: m.CatID, Name: m.Name, ImageURL: m.ImageURL, Score: m.Score, Reason: m.Reason})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (classifier.Image, bool) {
	var req imageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
			return classifier.Image{}, false
		}
		http.Error(w, "invalid json", http.StatusBadRequest)
		return classifier.Image{}, false
	}

	img, err := DecodeImage(req.Image)
	if err != nil {
		http.Error(w, "invalid image", http.StatusBadRequest)
		return classifier.Image{}, false
	}
	return img, true
}

// writeJSON está duplicado intencionalmente en los handlers de cada módulo
// para no crear un paquete de helpers compartido demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
