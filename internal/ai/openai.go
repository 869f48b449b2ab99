package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"codegen_server/internal/stream"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIModel talks to the OpenAI chat completions API, or any endpoint
// compatible with it when a base URL is configured.
type OpenAIModel struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIModel(apiKey, baseURL, model string, temperature float32, maxTokens int) *OpenAIModel {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIModel{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (m *OpenAIModel) Name() string { return "openai/" + m.model }

func (m *OpenAIModel) request(p Prompt, streaming bool) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
		Stream:      streaming,
	}
	if p.System != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})
	if p.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return req
}

func (m *OpenAIModel) Stream(ctx context.Context, p Prompt) stream.Fragments {
	return func(yield func(string, error) bool) {
		s, err := m.client.CreateChatCompletionStream(ctx, m.request(p, true))
		if err != nil {
			yield("", fmt.Errorf("openai chat completion stream failed: %w", err))
			return
		}
		defer s.Close()

		for {
			resp, err := s.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("openai stream receive failed: %w", err))
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if !yield(resp.Choices[0].Delta.Content, nil) {
				return
			}
		}
	}
}

func (m *OpenAIModel) Complete(ctx context.Context, p Prompt) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, m.request(p, false))
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
