package identify

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"minato-cat-support/internal/domain/reports"
	"minato-cat-support/internal/domain/roster"
	"minato-cat-support/internal/platform/logger"
	"minato-cat-support/internal/platform/metrics"
	"minato-cat-support/internal/ports/classifier"
)

const (
	FallbackMessage = "AI解析中にエラーが発生しました。時間を置いて再度お試しください。"
	MaxMatches      = 3
)

var ErrInvalidImage = errors.New("invalid image")

type RosterSource interface {
	Snapshot(ctx context.Context) (roster.Snapshot, error)
}

// Result es un candidato del padrón parecido a la foto.
type Result struct {
	CatID    string
	Name     string
	ImageURL string
	Score    float64
	Reason   string
}

type Service struct {
	cls     classifier.Classifier
	roster  RosterSource
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewService acepta cls nil: sin clasificador todo degrada al resultado de fallback.
func NewService(cls classifier.Classifier, rs RosterSource, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{cls: cls, roster: rs, log: log, metrics: m}
}

// DecodeImage acepta data URL o base64 pelado (se asume jpeg).
func DecodeImage(s string) (classifier.Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return classifier.Image{}, ErrInvalidImage
	}
	if reports.IsInlinePhoto(s) {
		data, ct, err := reports.DecodeDataURL(s)
		if err != nil {
			return classifier.Image{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
		}
		return classifier.Image{MIMEType: ct, Data: data}, nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(data) == 0 {
		return classifier.Image{}, ErrInvalidImage
	}
	return classifier.Image{MIMEType: "image/jpeg", Data: data}, nil
}

// Analyze nunca falla: un error del modelo se traduce a "no es gato, calidad baja".
func (s *Service) Analyze(ctx context.Context, img classifier.Image) classifier.Analysis {
	if s.cls == nil {
		s.metrics.IncClassifierCall("analyze", "unconfigured")
		return fallback()
	}

	a, err := s.cls.Analyze(ctx, img)
	if err != nil {
		s.metrics.IncClassifierCall("analyze", "error")
		s.log.Warn("photo analysis failed", map[string]any{"err": err})
		return fallback()
	}
	s.metrics.IncClassifierCall("analyze", "ok")
	return a
}

func fallback() classifier.Analysis {
	return classifier.Analysis{IsCat: false, Quality: classifier.QualityLow, Message: FallbackMessage}
}

// Similar compara la foto contra el padrón y devuelve hasta MaxMatches gatos,
// ordenados por score. Un fallo del modelo devuelve lista vacía.
func (s *Service) Similar(ctx context.Context, img classifier.Image) ([]Result, error) {
	snap, err := s.roster.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reports.ErrStoreUnavailable, err)
	}
	if len(snap.Cats) == 0 {
		return []Result{}, nil
	}
	if s.cls == nil {
		s.metrics.IncClassifierCall("similar", "unconfigured")
		return []Result{}, nil
	}

	byID := make(map[string]roster.Cat, len(snap.Cats))
	candidates := make([]classifier.Candidate, 0, len(snap.Cats))
	for _, c := range snap.Cats {
		byID[c.ID] = c
		candidates = append(candidates, classifier.Candidate{CatID: c.ID, Name: c.Name, Features: c.Features})
	}

	matches, err := s.cls.Similar(ctx, img, candidates)
	if err != nil {
		s.metrics.IncClassifierCall("similar", "error")
		s.log.Warn("similarity judgment failed", map[string]any{"err": err})
		return []Result{}, nil
	}
	s.metrics.IncClassifierCall("similar", "ok")

	return rank(matches, byID), nil
}

// rank descarta ids fuera del padrón y duplicados, acota el score a [0,1] y corta en MaxMatches.
func rank(matches []classifier.Match, byID map[string]roster.Cat) []Result {
	seen := map[string]struct{}{}
	out := make([]Result, 0, len(matches))
	for _, m := range matches {
		c, ok := byID[m.CatID]
		if !ok {
			continue
		}
		if _, dup := seen[m.CatID]; dup {
			continue
		}
		seen[m.CatID] = struct{}{}
		out = append(out, Result{
			CatID:    c.ID,
			Name:     c.Name,
			ImageURL: c.ImageURL,
			Score:    clamp(m.Score),
			Reason:   m.Reason,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > MaxMatches {
		out = out[:MaxMatches]
	}
	return out
}

func clamp(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
