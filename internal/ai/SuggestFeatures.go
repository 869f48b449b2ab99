package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"codegen_server/internal/ai/prompts"
	"codegen_server/internal/types"

	"fortio.org/log"
)

// keys a model tends to wrap a feature list under
var featureKeys = []string{"suggestedFeatures", "features", "result", "data"}

// SuggestFeatures asks the model for features that fit a project description.
func (g *Generator) SuggestFeatures(ctx context.Context, description string) ([]string, error) {
	const op = "suggest features"
	if strings.TrimSpace(description) == "" {
		return nil, types.NewError(types.KindInvalidRequest, op, errors.New("description is required"))
	}

	user, system := prompts.GetFeatureSuggestionPrompt(description)
	reply, err := g.complete(ctx, Prompt{System: system, User: user, JSON: true})
	if err != nil {
		return nil, classify(op, err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, types.NewError(types.KindEmptyOutput, op, errors.New("model returned an empty reply"))
	}

	features, err := ParseFeatureList(reply)
	if err != nil {
		log.Warnf("Could not parse feature suggestions: %v. Raw output: %s", err, reply)
		return nil, types.NewError(types.KindUpstream, op, err)
	}
	log.LogVf("Model suggested %d features", len(features))
	return features, nil
}

// ParseFeatureList reads a JSON array of strings from a model reply. The
// array may be fenced as a json code block or wrapped in an object under one
// of the usual keys. Entries are trimmed; blanks and repeats are dropped.
func ParseFeatureList(reply string) ([]string, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var list []string
	err := json.Unmarshal([]byte(cleaned), &list)
	if err != nil {
		var wrapper map[string]json.RawMessage
		if errWrapper := json.Unmarshal([]byte(cleaned), &wrapper); errWrapper != nil {
			return nil, fmt.Errorf("reply is neither a JSON array nor an object: %w", err)
		}
		parsed := false
		for _, key := range featureKeys {
			raw, ok := wrapper[key]
			if !ok {
				continue
			}
			if errInner := json.Unmarshal(raw, &list); errInner == nil {
				parsed = true
				break
			}
		}
		if !parsed {
			return nil, fmt.Errorf("no feature array under any of %v", featureKeys)
		}
	}

	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, f := range list {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}
