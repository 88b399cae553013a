package geo

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Coordinates es un par lat/lng en grados decimales.
// No se validan rangos: lat=200 se acepta tal cual.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParseErrorMessage se muestra al admin junto al campo de coordenadas.
const ParseErrorMessage = `coordinates not recognised: use degrees-minutes-seconds like 31°54'17.2"N 131°27'52.0"E or decimal like 31.904, 131.464`

// ParseError indica texto no vacío que no coincide con ningún formato.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return ParseErrorMessage
}

var (
	dmsPattern = regexp.MustCompile(`(?i)(\d+)\s*°\s*(\d+)\s*['′]\s*([\d.]+)\s*["″]\s*([NSEW])`)

	// Separadores del formato decimal: coma, barra, espacios (incluye espacio ideográfico).
	decimalSeparators = regexp.MustCompile(`[,/\s\x{3000}]+`)
)

// Parse interpreta texto DMS o decimal.
// ok=false con err=nil significa "sin coordenadas" (texto vacío).
func Parse(text string) (Coordinates, bool, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(text, "　", " "))
	if trimmed == "" {
		return Coordinates{}, false, nil
	}

	if c, ok := parseDMS(trimmed); ok {
		return c, true, nil
	}
	if c, ok := parseDecimal(trimmed); ok {
		return c, true, nil
	}
	return Coordinates{}, false, &ParseError{Input: text}
}

func parseDMS(s string) (Coordinates, bool) {
	matches := dmsPattern.FindAllStringSubmatch(s, 2)
	if len(matches) < 2 {
		return Coordinates{}, false
	}

	lat, ok := dmsToDecimal(matches[0])
	if !ok {
		return Coordinates{}, false
	}
	lng, ok := dmsToDecimal(matches[1])
	if !ok {
		return Coordinates{}, false
	}
	return Coordinates{Lat: lat, Lng: lng}, true
}

func dmsToDecimal(m []string) (float64, bool) {
	deg, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	min, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, false
	}
	sec, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}

	v := deg + min/60 + sec/3600
	switch strings.ToUpper(m[4]) {
	case "S", "W":
		v = -v
	}
	return v, true
}

func parseDecimal(s string) (Coordinates, bool) {
	parts := decimalSeparators.Split(s, -1)

	nums := make([]float64, 0, 2)
	for _, p := range parts {
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || !finite(f) {
			return Coordinates{}, false
		}
		nums = append(nums, f)
		if len(nums) == 2 {
			break
		}
	}
	if len(nums) < 2 {
		return Coordinates{}, false
	}
	return Coordinates{Lat: nums[0], Lng: nums[1]}, true
}

// ParseFloat acepta "NaN" e "Inf"; no son coordenadas y además rompen el JSON.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
