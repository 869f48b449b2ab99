package utils

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// transient substrings seen in provider errors worth one more attempt
var retryableMessages = []string{
	"rate limit",
	"resource_exhausted",
	"429",
	"500 internal server error",
	"502 bad gateway",
	"503 service unavailable",
	"504 gateway timeout",
	"unavailable",
	"timeout",
	"connection reset by peer",
	"unexpected eof",
}

// ShouldRetry reports whether a failed model call looks transient.
// Cancellation by the caller is never retried.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 500 || reqErr.HTTPStatusCode == 429
	}
	msg := strings.ToLower(err.Error())
	for _, s := range retryableMessages {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

var fileTypes = map[string]string{
	".html":       "HTML",
	".css":        "CSS",
	".scss":       "SCSS",
	".js":         "JavaScript",
	".mjs":        "JavaScript",
	".jsx":        "JSX",
	".ts":         "TypeScript",
	".tsx":        "TSX",
	".vue":        "Vue",
	".json":       "JSON",
	".md":         "Markdown",
	".txt":        "Text",
	".yaml":       "YAML",
	".yml":        "YAML",
	".toml":       "TOML",
	".sh":         "Shell",
	".py":         "Python",
	".go":         "Go",
	".sql":        "SQL",
	".env":        "Env",
	".gitignore":  "GitIgnore",
	".svg":        "SVG",
	".prisma":     "Prisma",
	".dockerfile": "Dockerfile",
}

// DetermineFileType maps a generated file path to a display language.
func DetermineFileType(filename string) string {
	lower := strings.ToLower(filename)
	if t, ok := fileTypes[filepath.Ext(lower)]; ok {
		return t
	}
	base := filepath.Base(lower)
	switch {
	case strings.Contains(base, "dockerfile"):
		return "Dockerfile"
	case base == "makefile":
		return "Makefile"
	case strings.Contains(base, ".config."):
		return "Config"
	}
	return "Unknown"
}
