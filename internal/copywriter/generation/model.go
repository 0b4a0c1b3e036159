// internal/copywriter/generation/model.go
package generation

import (
	"context"
	"fmt"
	"strings"

	"betfunnels-copy/internal/common/config"
	"betfunnels-copy/internal/common/errors"
	commonhttp "betfunnels-copy/internal/common/http"

	"google.golang.org/genai"
)

// Options are the sampling settings for one model call.
type Options struct {
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
}

// Model is the generative text service. Implementations fail with a model
// error on transport failures and on blank output.
type Model interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// GeminiModel calls the Gemini API through the genai SDK.
type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, cfg config.GenAIConfig) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigurationError("GEMINI_API_KEY not set")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: commonhttp.NewClient(config.GetDuration(cfg.RequestTimeout)),
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiModel{client: client, model: cfg.Model}, nil
}

func (g *GeminiModel) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	temperature := float32(opts.Temperature)
	topP := float32(opts.TopP)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopP:            &topP,
		MaxOutputTokens: int32(opts.MaxOutputTokens),
	})
	if err != nil {
		return "", errors.NewModelError(fmt.Errorf("gemini %s: %w", g.model, err))
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		reason := "no candidates"
		if len(resp.Candidates) > 0 {
			reason = string(resp.Candidates[0].FinishReason)
		}
		return "", errors.NewEmptyModelResponseError("gemini finish reason: " + reason)
	}
	return text, nil
}

// Unavailable returns a Model that fails every call with err. The server
// uses it when no API key is configured so it still starts and requests get
// a configuration error.
func Unavailable(err error) Model {
	return unavailableModel{err: err}
}

type unavailableModel struct {
	err error
}

func (m unavailableModel) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	return "", m.err
}
