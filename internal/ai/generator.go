package ai

import (
	"context"
	"fmt"
	"time"

	"codegen_server/config"
	"codegen_server/internal/catalog"
	"codegen_server/internal/stream"
	"codegen_server/internal/types"
	"codegen_server/internal/utils"

	"fortio.org/log"
	"github.com/google/uuid"
)

// Prompt is one request to a model.
type Prompt struct {
	System string
	User   string
	JSON   bool // ask for a JSON object reply
}

// Model is a generative model connector. Stream returns a lazy fragment
// sequence that is consumed at most once; Complete returns the whole reply.
type Model interface {
	Name() string
	Stream(ctx context.Context, p Prompt) stream.Fragments
	Complete(ctx context.Context, p Prompt) (string, error)
}

// GenerationResult is the outcome of one generation request.
type GenerationResult struct {
	ID          string                `json:"id"`
	ProjectName string                `json:"projectName"`
	Model       string                `json:"model"`
	Files       []types.GeneratedFile `json:"files"`
	Raw         string                `json:"raw"`
	Synthesized bool                  `json:"synthesized"`
	Enhanced    bool                  `json:"enhanced"`
}

// NewModel builds the connector for the configured provider.
func NewModel(ctx context.Context, cfg config.Config) (Model, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		m, err := NewGeminiModel(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.LLMTemperature)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.ProviderOpenAI:
		return NewOpenAIModel(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.LLMTemperature, cfg.OpenAIMaxTokens), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.LLMProvider)
	}
}

type Generator struct {
	model      Model
	catalog    *catalog.Catalog
	retryDelay time.Duration
	newID      func() string
}

// NewGenerator wires a model connector and the option catalog. Both are
// owned by the caller and shared read-only across requests.
func NewGenerator(model Model, cat *catalog.Catalog) *Generator {
	return &Generator{
		model:      model,
		catalog:    cat,
		retryDelay: 2 * time.Second,
		newID:      func() string { return uuid.New().String() },
	}
}

// ModelName reports the configured model, for health output.
func (g *Generator) ModelName() string { return g.model.Name() }

// Catalog returns the option catalog.
func (g *Generator) Catalog() *catalog.Catalog { return g.catalog }

// complete asks the model for a whole reply, retrying once on a transient
// failure.
func (g *Generator) complete(ctx context.Context, p Prompt) (string, error) {
	reply, err := g.model.Complete(ctx, p)
	if err != nil && ctx.Err() == nil && utils.ShouldRetry(err) {
		log.Warnf("Model call to %s failed, retrying: %v", g.model.Name(), err)
		if err := sleep(ctx, g.retryDelay); err != nil {
			return "", err
		}
		reply, err = g.model.Complete(ctx, p)
	}
	return reply, err
}

// sleep waits for d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
