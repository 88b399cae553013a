package roster

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"minato-cat-support/internal/domain/features"
	"minato-cat-support/internal/domain/geo"
	"minato-cat-support/internal/middleware"
	"minato-cat-support/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/roster", getRosterHandler(svc))
	r.Get("/today", todayHandler(svc))

	r.Post("/cats", saveCatHandler(svc, true))
	r.Put("/cats/{catID}", saveCatHandler(svc, false))

	r.Post("/points", savePointHandler(svc, true))
	r.Put("/points/{pointID}", savePointHandler(svc, false))
	r.Post("/points/{pointID}/water", toggleWateredHandler(svc))

	r.Post("/zones", saveZoneHandler(svc, true))
	r.Put("/zones/{zoneID}", saveZoneHandler(svc, false))

	r.Post("/members", saveMemberHandler(svc, true))
	r.Put("/members/{memberID}", saveMemberHandler(svc, false))
}

// CatResponse es la vista pública de un gato; la reutiliza el resumen diario.
type CatResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Features    string     `json:"features"`
	ImageURL    string     `json:"image_url"`
	ZoneID      string     `json:"zone_id"`
	PointID     string     `json:"point_id"`
	SubPointIDs []string   `json:"sub_point_ids"`
	Status      CatStatus  `json:"status" enums:"healthy,injured,sick,unknown"`
	LastFed     *time.Time `json:"last_fed,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type pointResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ZoneID      string     `json:"zone_id"`
	Lat         *float64   `json:"lat,omitempty"`
	Lng         *float64   `json:"lng,omitempty"`
	Located     bool       `json:"located"`
	LastWatered *time.Time `json:"last_watered,omitempty"`
}

type zoneResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type memberResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Role             string `json:"role" enums:"admin,general"`
	PhoneModel       string `json:"phone_model"`
	AvailableHours   string `json:"available_hours"`
	ContactMethod    string `json:"contact_method"`
	MembershipExpiry string `json:"membership_expiry,omitempty"` // YYYY-MM-DD
	Expired          bool   `json:"expired"`
}

type rosterResponse struct {
	Cats    []CatResponse    `json:"cats"`
	Points  []pointResponse  `json:"points"`
	Zones   []zoneResponse   `json:"zones"`
	Members []memberResponse `json:"members"`
}

type todayResponse struct {
	Unchecked []CatResponse `json:"unchecked"`
	Sick      []CatResponse `json:"sick"`
}

// saveCatRequest: features (estructurado) tiene prioridad sobre features_text.
type saveCatRequest struct {
	ID           string          `json:"id"` // solo en POST, opcional
	Name         string          `json:"name"`
	ImageURL     string          `json:"image_url"`
	PointID      string          `json:"point_id"`
	SubPointIDs  []string        `json:"sub_point_ids"`
	Features     *features.Parts `json:"features"`
	FeaturesText string          `json:"features_text"`
}

type savePointRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ZoneID      string `json:"zone_id"`
	Coordinates string `json:"coordinates"` // DMS o "lat, lng"; vacío = sin cambios
}

type saveZoneRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type saveMemberRequest struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Role             string `json:"role" enums:"admin,general"`
	PhoneModel       string `json:"phone_model"`
	AvailableHours   string `json:"available_hours"`
	ContactMethod    string `json:"contact_method"`
	MembershipExpiry string `json:"membership_expiry"` // YYYY-MM-DD opcional
}

// getRosterHandler godoc
// @Summary Obtener el padrón completo
// @Description Devuelve gatos, puntos de alimentación, zonas y miembros. Requiere cualquier miembro autenticado.
// @Tags roster
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (admin|general)"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} rosterResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "storage unavailable"
// @Router /roster [get]
func getRosterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Actor(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		snap, err := svc.Snapshot(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		today := svc.now().In(svc.loc)
		out := rosterResponse{
			Cats:    make([]CatResponse, 0, len(snap.Cats)),
			Points:  make([]pointResponse, 0, len(snap.Points)),
			Zones:   make([]zoneResponse, 0, len(snap.Zones)),
			Members: make([]memberResponse, 0, len(snap.Members)),
		}
		for _, c := range snap.Cats {
			out.Cats = append(out.Cats, ToCatResponse(c))
		}
		for _, p := range snap.Points {
			out.Points = append(out.Points, toPointResponse(p))
		}
		for _, z := range snap.Zones {
			out.Zones = append(out.Zones, toZoneResponse(z))
		}
		for _, m := range snap.Members {
			out.Members = append(out.Members, toMemberResponse(m, today))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// todayHandler godoc
// @Summary Pendientes del día
// @Description Gatos sin comida registrada hoy y gatos heridos o enfermos.
// @Tags roster
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} todayResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "storage unavailable"
// @Router /today [get]
func todayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.Actor(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		v, err := svc.Today(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		out := todayResponse{
			Unchecked: make([]CatResponse, 0, len(v.Unchecked)),
			Sick:      make([]CatResponse, 0, len(v.Sick)),
		}
		for _, c := range v.Unchecked {
			out.Unchecked = append(out.Unchecked, ToCatResponse(c))
		}
		for _, c := range v.Sick {
			out.Sick = append(out.Sick, ToCatResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// saveCatHandler godoc
// @Summary Crear o actualizar un gato
// @Description Solo admin. point_id es obligatorio; sub_point_ids admite hasta 3 puntos distintos del principal. La zona se deriva del punto principal. Si viene features se compone el texto de rasgos.
// @Tags roster
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (admin|general)"
// @Param Authorization header string false "Bearer token en producción"
// @Param catID path string true "ID del gato"
// @Param payload body saveCatRequest true "Datos del gato"
// @Success 200 {object} CatResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /cats/{catID} [put]
// @Router /cats [post]
func saveCatHandler(svc *Service, isNew bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.Actor(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req saveCatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		slots, err := NewPointSlots(req.PointID, req.SubPointIDs)
		if err != nil {
			writeError(w, err)
			return
		}

		c, err := svc.SaveCat(r.Context(), actor, SaveCatInput{
			ID:           targetID(r, "catID", req.ID, isNew),
			IsNew:        isNew,
			Name:         req.Name,
			ImageURL:     req.ImageURL,
			Slots:        slots,
			Parts:        req.Features,
			FeaturesText: req.FeaturesText,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, savedStatus(isNew), ToCatResponse(c))
	}
}

// savePointHandler godoc
// @Summary Crear o actualizar un punto de alimentación
// @Description Solo admin. coordinates acepta DMS (31°54'18.4"N 131°27'50.5"E) o decimal (31.905, 131.464). Vacío deja las coordenadas como estaban.
// @Tags roster
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (admin|general)"
// @Param Authorization header string false "Bearer token en producción"
// @Param pointID path string true "ID del punto"
// @Param payload body savePointRequest true "Datos del punto"
// @Success 200 {object} pointResponse
// @Failure 400 {string} string "invalid input / coordenadas inválidas"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /points/{pointID} [put]
// @Router /points [post]
func savePointHandler(svc *Service, isNew bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.Actor(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req savePointRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.SavePoint(r.Context(), actor, SavePointInput{
			ID:          targetID(r, "pointID", req.ID, isNew),
			IsNew:       isNew,
			Name:        req.Name,
			ZoneID:      req.ZoneID,
			Coordinates: req.Coordinates,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, savedStatus(isNew), toPointResponse(p))
	}
}

// toggleWateredHandler godoc
// @Summary Marcar o desmarcar agua del día
// @Description Cualquier miembro autenticado. Si el punto ya fue regado hoy se desmarca.
// @Tags roster
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param pointID path string true "ID del punto"
// @Success 200 {object} pointResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Router /points/{pointID}/water [post]
func toggleWateredHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.Actor(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.ToggleWatered(r.Context(), actor, chi.URLParam(r, "pointID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPointResponse(p))
	}
}

// saveZoneHandler godoc
// @Summary Crear o actualizar una zona
// @Description Solo admin.
// @Tags roster
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (admin|general)"
// @Param Authorization header string false "Bearer token en producción"
// @Param zoneID path string true "ID de la zona"
// @Param payload body saveZoneRequest true "Datos de la zona"
// @Success 200 {object} zoneResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /zones/{zoneID} [put]
// @Router /zones [post]
func saveZoneHandler(svc *Service, isNew bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.Actor(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req saveZoneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		z, err := svc.SaveZone(r.Context(), actor, SaveZoneInput{
			ID:          targetID(r, "zoneID", req.ID, isNew),
			IsNew:       isNew,
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, savedStatus(isNew), toZoneResponse(z))
	}
}

// saveMemberHandler godoc
// @Summary Crear o actualizar un miembro
// @Description Solo admin. membership_expiry es solo informativo.
// @Tags roster
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (admin|general)"
// @Param Authorization header string false "Bearer token en producción"
// @Param memberID path string true "ID del miembro"
// @Param payload body saveMemberRequest true "Datos del miembro"
// @Success 200 {object} memberResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /members/{memberID} [put]
// @Router /members [post]
func saveMemberHandler(svc *Service, isNew bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.Actor(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req saveMemberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var expiry *time.Time
		if s := strings.TrimSpace(req.MembershipExpiry); s != "" {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				http.Error(w, "membership_expiry must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			expiry = &t
		}

		m, err := svc.SaveMember(r.Context(), actor, SaveMemberInput{
			ID:               targetID(r, "memberID", req.ID, isNew),
			IsNew:            isNew,
			Name:             req.Name,
			Role:             auth.ParseRole(req.Role),
			PhoneModel:       req.PhoneModel,
			AvailableHours:   req.AvailableHours,
			ContactMethod:    req.ContactMethod,
			MembershipExpiry: expiry,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, savedStatus(isNew), toMemberResponse(m, svc.now().In(svc.loc)))
	}
}

// targetID: en PUT manda el path; en POST el body (vacío = se genera).
func targetID(r *http.Request, param, bodyID string, isNew bool) string {
	if isNew {
		return bodyID
	}
	return chi.URLParam(r, param)
}

func savedStatus(isNew bool) int {
	if isNew {
		return http.StatusCreated
	}
	return http.StatusOK
}

func writeError(w http.ResponseWriter, err error) {
	var perr *geo.ParseError
	switch {
	case errors.As(err, &perr):
		http.Error(w, perr.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadyExists):
		http.Error(w, "already exists", http.StatusConflict)
	default:
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	}
}

func ToCatResponse(c Cat) CatResponse {
	sub := c.SubPointIDs
	if sub == nil {
		sub = []string{}
	}
	return CatResponse{
		ID:          c.ID,
		Name:        c.Name,
		Features:    c.Features,
		ImageURL:    c.ImageURL,
		ZoneID:      c.ZoneID,
		PointID:     c.PointID,
		SubPointIDs: sub,
		Status:      c.Status,
		LastFed:     c.LastFed,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toPointResponse(p FeedingPoint) pointResponse {
	return pointResponse{
		ID:          p.ID,
		Name:        p.Name,
		ZoneID:      p.ZoneID,
		Lat:         p.Lat,
		Lng:         p.Lng,
		Located:     p.Located(),
		LastWatered: p.LastWatered,
	}
}

func toZoneResponse(z Zone) zoneResponse {
	return zoneResponse{ID: z.ID, Name: z.Name, Description: z.Description}
}

func toMemberResponse(m Member, today time.Time) memberResponse {
	out := memberResponse{
		ID:             m.ID,
		Name:           m.Name,
		Role:           string(m.Role),
		PhoneModel:     m.PhoneModel,
		AvailableHours: m.AvailableHours,
		ContactMethod:  m.ContactMethod,
		Expired:        m.Expired(today),
	}
	if m.MembershipExpiry != nil {
		out.MembershipExpiry = m.MembershipExpiry.Format("2006-01-02")
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
