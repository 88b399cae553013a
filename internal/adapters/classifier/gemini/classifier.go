package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"minato-cat-support/internal/ports/classifier"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 30 * time.Second

	analyzePrompt = "この画像を解析して、地域猫保護アプリ用のデータを抽出してください。日本語で回答してください。"
)

var ErrEmptyResponse = errors.New("gemini: empty response")

// generator es el subconjunto de genai.Models que usamos; permite fakes en tests.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Classifier implementa classifier.Classifier con Gemini.
type Classifier struct {
	gen     generator
	model   string
	timeout time.Duration
}

func New(ctx context.Context, cfg Config) (*Classifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, classifier.ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newWithGenerator(client.Models, cfg), nil
}

func newWithGenerator(gen generator, cfg Config) *Classifier {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Classifier{gen: gen, model: model, timeout: timeout}
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"isCat":   {Type: genai.TypeBoolean, Description: "Is there a cat in the image?"},
		"quality": {Type: genai.TypeString, Description: "Is the image clear enough to identify markings? (high, medium or low)"},
		"features": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Visual features like color, pattern, tail shape, etc.",
		},
		"message": {Type: genai.TypeString, Description: "A short feedback message in Japanese."},
	},
	Required: []string{"isCat", "quality", "features", "message"},
}

var similaritySchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"catId":  {Type: genai.TypeString, Description: "猫のID"},
			"score":  {Type: genai.TypeNumber, Description: "類似度スコア (0.0 - 1.0)"},
			"reason": {Type: genai.TypeString, Description: "判定理由（日本語）"},
		},
		Required: []string{"catId", "score", "reason"},
	},
}

type analysisPayload struct {
	IsCat    bool     `json:"isCat"`
	Quality  string   `json:"quality"`
	Features []string `json:"features"`
	Message  string   `json:"message"`
}

type matchPayload struct {
	CatID  string  `json:"catId"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

func (c *Classifier) Analyze(ctx context.Context, img classifier.Image) (classifier.Analysis, error) {
	var out analysisPayload
	if err := c.generate(ctx, img, analyzePrompt, analysisSchema, &out); err != nil {
		return classifier.Analysis{}, err
	}

	q := classifier.Quality(strings.ToLower(strings.TrimSpace(out.Quality)))
	switch q {
	case classifier.QualityHigh, classifier.QualityMedium, classifier.QualityLow:
	default:
		q = classifier.QualityLow
	}

	return classifier.Analysis{
		IsCat:    out.IsCat,
		Quality:  q,
		Features: strings.Join(out.Features, " "),
		Message:  out.Message,
	}, nil
}

func (c *Classifier) Similar(ctx context.Context, img classifier.Image, candidates []classifier.Candidate) ([]classifier.Match, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var out []matchPayload
	if err := c.generate(ctx, img, similarityPrompt(candidates), similaritySchema, &out); err != nil {
		return nil, err
	}

	matches := make([]classifier.Match, 0, len(out))
	for _, m := range out {
		matches = append(matches, classifier.Match{CatID: strings.TrimSpace(m.CatID), Score: m.Score, Reason: m.Reason})
	}
	return matches, nil
}

func similarityPrompt(candidates []classifier.Candidate) string {
	var b strings.Builder
	b.WriteString("あなたは地域猫保護団体のエキスパートAIです。\n")
	b.WriteString("アップロードされた写真の猫と、以下の「登録済み猫リスト」を比較して、外見（模様、色、尻尾、耳カットなど）が似ている猫を特定してください。\n")
	b.WriteString("類似度の高い順に上位3件をJSON形式で返してください。\n\n登録済み猫リスト：\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id: %s, 名前: %s, 特徴: %s\n", c.CatID, c.Name, c.Features)
	}
	return b.String()
}

func (c *Classifier) generate(ctx context.Context, img classifier.Image, prompt string, schema *genai.Schema, out any) error {
	if len(img.Data) == 0 {
		return fmt.Errorf("gemini: empty image")
	}
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, mime),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := c.gen.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(unfence(text)), out); err != nil {
		return fmt.Errorf("gemini: invalid json: %w", err)
	}
	return nil
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// unfence quita el bloque markdown si el modelo lo agregó igual.
func unfence(s string) string {
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}
