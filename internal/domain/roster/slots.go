package roster

import (
	"fmt"
	"strings"
)

const (
	MaxSubPoints = 3
	slotCount    = 1 + MaxSubPoints
)

// PointSlots es el conjunto ordenado de puntos de un gato:
// slot 0 = principal, 1..3 = secundarios. Un punto ocupa a lo sumo un slot.
type PointSlots struct {
	ids [slotCount]string
}

// SlotsOf arma los slots aplicando Set en orden; duplicados quedan en el último slot.
func SlotsOf(primary string, sub ...string) PointSlots {
	var s PointSlots
	_ = s.Set(0, primary)
	for i, id := range sub {
		if i >= MaxSubPoints {
			break
		}
		_ = s.Set(i+1, id)
	}
	return s
}

// NewPointSlots valida: primario requerido, hasta 3 secundarios, sin repetidos.
func NewPointSlots(primary string, sub []string) (PointSlots, error) {
	if strings.TrimSpace(primary) == "" {
		return PointSlots{}, ErrPrimaryPointRequired
	}
	if len(sub) > MaxSubPoints {
		return PointSlots{}, fmt.Errorf("%w: at most %d sub points", ErrInvalidInput, MaxSubPoints)
	}

	var s PointSlots
	seen := map[string]bool{}
	for i, id := range append([]string{primary}, sub...) {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if seen[id] {
			return PointSlots{}, fmt.Errorf("%w: point %s assigned twice", ErrInvalidInput, id)
		}
		seen[id] = true
		s.ids[i] = id
	}
	return s, nil
}

// Set ocupa el slot index con pointID y lo libera de cualquier otro slot.
// pointID vacío limpia el slot.
func (s *PointSlots) Set(index int, pointID string) error {
	if index < 0 || index >= slotCount {
		return fmt.Errorf("%w: slot %d out of range", ErrInvalidInput, index)
	}
	pointID = strings.TrimSpace(pointID)
	if pointID != "" {
		for i := range s.ids {
			if i != index && s.ids[i] == pointID {
				s.ids[i] = ""
			}
		}
	}
	s.ids[index] = pointID
	return nil
}

func (s *PointSlots) Clear(index int) error {
	return s.Set(index, "")
}

func (s PointSlots) Primary() string {
	return s.ids[0]
}

// Sub devuelve los secundarios no vacíos, en orden de slot.
func (s PointSlots) Sub() []string {
	out := make([]string, 0, MaxSubPoints)
	for _, id := range s.ids[1:] {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

func (s PointSlots) All() [slotCount]string {
	return s.ids
}

func (s PointSlots) Contains(pointID string) bool {
	for _, id := range s.ids {
		if id != "" && id == pointID {
			return true
		}
	}
	return false
}
