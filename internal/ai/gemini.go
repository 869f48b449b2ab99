package ai

import (
	"context"
	"fmt"

	"codegen_server/internal/stream"

	"google.golang.org/genai"
)

// GeminiModel streams from the Gemini API.
type GeminiModel struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiModel(ctx context.Context, apiKey, model string, temperature float32) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiModel{client: client, model: model, temperature: temperature}, nil
}

func (m *GeminiModel) Name() string { return "gemini/" + m.model }

func (m *GeminiModel) contents(p Prompt) []*genai.Content {
	text := p.User
	if p.System != "" {
		text = p.System + "\n\n" + p.User
	}
	return genai.Text(text)
}

func (m *GeminiModel) config(p Prompt) *genai.GenerateContentConfig {
	temperature := m.temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if p.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func (m *GeminiModel) Stream(ctx context.Context, p Prompt) stream.Fragments {
	return func(yield func(string, error) bool) {
		for resp, err := range m.client.Models.GenerateContentStream(ctx, m.model, m.contents(p), m.config(p)) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream failed: %w", err))
				return
			}
			if !yield(resp.Text(), nil) {
				return
			}
		}
	}
}

func (m *GeminiModel) Complete(ctx context.Context, p Prompt) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, m.contents(p), m.config(p))
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	return resp.Text(), nil
}
