package roster

import (
	"time"

	"minato-cat-support/internal/ports/auth"
)

type CatStatus string

const (
	StatusHealthy CatStatus = "healthy"
	StatusInjured CatStatus = "injured"
	StatusSick    CatStatus = "sick"
	StatusUnknown CatStatus = "unknown"
)

type Cat struct {
	ID       string
	Name     string
	Features string
	ImageURL string

	// ZoneID se deriva siempre de la zona del punto principal.
	ZoneID      string
	PointID     string
	SubPointIDs []string

	// Status y LastFed son cache del último reporte; solo los cambia ApplyReport.
	Status   CatStatus
	StatusAt *time.Time
	LastFed  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type FeedingPoint struct {
	ID          string
	Name        string
	ZoneID      string
	Lat         *float64
	Lng         *float64
	LastWatered *time.Time
}

// Located: tiene par lat/lng válido.
func (p FeedingPoint) Located() bool {
	return p.Lat != nil && p.Lng != nil
}

type Zone struct {
	ID          string
	Name        string
	Description string
}

type Member struct {
	ID               string
	Name             string
	Role             auth.Role
	PhoneModel       string
	AvailableHours   string
	ContactMethod    string
	MembershipExpiry *time.Time
}

// Expired solo se usa para mostrar; no participa en ningún control de acceso.
func (m Member) Expired(today time.Time) bool {
	if m.MembershipExpiry == nil {
		return false
	}
	y, mo, d := m.MembershipExpiry.Date()
	ty, tm, td := today.Date()
	exp := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	now := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return exp.Before(now)
}

// Snapshot es una lectura completa del padrón.
type Snapshot struct {
	Cats    []Cat
	Points  []FeedingPoint
	Zones   []Zone
	Members []Member
}

func (s Snapshot) Point(id string) (FeedingPoint, bool) {
	for _, p := range s.Points {
		if p.ID == id {
			return p, true
		}
	}
	return FeedingPoint{}, false
}

func (s Snapshot) Zone(id string) (Zone, bool) {
	for _, z := range s.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// ZoneOf resuelve la zona del gato vía su punto principal;
// si el punto no existe cae al ZoneID guardado.
func (s Snapshot) ZoneOf(c Cat) string {
	if p, ok := s.Point(c.PointID); ok && p.ZoneID != "" {
		return p.ZoneID
	}
	return c.ZoneID
}
