package classifier

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("classifier not configured")

type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// Image es la foto a analizar, ya decodificada.
type Image struct {
	MIMEType string
	Data     []byte
}

type Analysis struct {
	IsCat    bool
	Quality  Quality
	Features string
	Message  string
}

// Candidate es un gato del padrón que se ofrece para comparar.
type Candidate struct {
	CatID    string
	Name     string
	Features string
}

type Match struct {
	CatID  string
	Score  float64
	Reason string
}

// Classifier analiza fotos de gatos con un modelo externo.
type Classifier interface {
	Analyze(ctx context.Context, img Image) (Analysis, error)
	Similar(ctx context.Context, img Image, candidates []Candidate) ([]Match, error)
}
