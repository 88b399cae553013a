package reports

import (
	"strings"
	"time"
)

type Condition string

const (
	ConditionGood    Condition = "good"
	ConditionBad     Condition = "bad"
	ConditionInjured Condition = "injured"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionGood, ConditionBad, ConditionInjured:
		return true
	default:
		return false
	}
}

// Report es inmutable una vez escrito.
// Timestamp (epoch ms) lo asigna quien reporta y es el eje de todas las consultas por fecha.
type Report struct {
	ID              string
	CatID           string
	ReporterID      string
	Fed             bool
	Watered         bool
	Condition       Condition
	Notes           string
	UrgentDetail    string
	UrgentPhoto     string
	AttentionDetail string
	Timestamp       int64
}

func (r Report) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// IsIncident: condición mala/herida o detalle urgente no vacío.
func (r Report) IsIncident() bool {
	return r.Condition == ConditionBad ||
		r.Condition == ConditionInjured ||
		strings.TrimSpace(r.UrgentDetail) != ""
}

// HasInlinePhoto indica que la foto todavía viaja como data URL.
func (r Report) HasInlinePhoto() bool {
	return IsInlinePhoto(r.UrgentPhoto)
}

func IsInlinePhoto(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "data:")
}
