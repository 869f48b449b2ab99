package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", fmt.Errorf("stream: %w", context.Canceled), false},
		{"rate limit", errors.New("Rate limit reached"), true},
		{"reset", errors.New("read tcp: connection reset by peer"), true},
		{"api 503", &openai.APIError{HTTPStatusCode: 503}, true},
		{"api 400", &openai.APIError{HTTPStatusCode: 400, Message: "bad request"}, false},
		{"request 429", &openai.RequestError{HTTPStatusCode: 429, Err: errors.New("too many")}, true},
		{"other", errors.New("invalid api key"), false},
	}
	for _, tc := range cases {
		if got := ShouldRetry(tc.err); got != tc.want {
			t.Errorf("%s: ShouldRetry = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDetermineFileType(t *testing.T) {
	for path, want := range map[string]string{
		"app/page.tsx":       "TSX",
		"styles/globals.CSS": "CSS",
		"Dockerfile":         "Dockerfile",
		"Makefile":           "Makefile",
		"package.json":       "JSON",
		"LICENSE":            "Unknown",
	} {
		if got := DetermineFileType(path); got != want {
			t.Errorf("DetermineFileType(%q) = %q, want %q", path, got, want)
		}
	}
}
