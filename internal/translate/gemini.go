package translate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/snarg/speech-relay/internal/metrics"
)

const geminiPrompt = `Translate the following text into the language identified by the code %q.
Respond with the translation only, without commentary or quotation marks.

Text:
%s`

// Generator produces free text for a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiTranslator asks a generative model for a translation.
type GeminiTranslator struct {
	gen   Generator
	model string
}

// NewGeminiTranslator wraps gen; model is only reported in logs.
func NewGeminiTranslator(gen Generator, model string) *GeminiTranslator {
	return &GeminiTranslator{gen: gen, model: model}
}

// Model returns the generative model identifier.
func (gt *GeminiTranslator) Model() string { return gt.model }

// Translate returns the model's translation of text into targetLang.
func (gt *GeminiTranslator) Translate(ctx context.Context, text, targetLang string) (out string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("gemini", start, err) }()

	out, err = gt.gen.GenerateText(ctx, fmt.Sprintf(geminiPrompt, targetLang, text))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// GeminiOptions configures the Gemini API client.
type GeminiOptions struct {
	APIKey  string
	Model   string
	BaseURL string // empty uses the SDK default endpoint
	Timeout time.Duration
}

// genaiGenerator implements Generator with the Gemini API SDK.
type genaiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Generator backed by the Gemini API.
func NewGeminiGenerator(ctx context.Context, opts GeminiOptions) (Generator, error) {
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: opts.Timeout},
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &genaiGenerator{client: client, model: opts.Model}, nil
}

func (g *genaiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
