package ai

import (
	"context"
	"errors"
	"strings"

	"codegen_server/internal/ai/prompts"
	"codegen_server/internal/types"

	"fortio.org/log"
)

// EnhanceRequest carries an already generated project back to the model so
// it can add tests. LanguageFramework is "language/framework"; a value
// without a slash names both.
type EnhanceRequest struct {
	ProjectName       string
	Description       string
	Code              string
	LanguageFramework string
}

// SplitLanguageFramework splits "ts/next.js" into its parts. The framework
// defaults to the language.
func SplitLanguageFramework(s string) (language, framework string) {
	language, framework, _ = strings.Cut(strings.TrimSpace(s), "/")
	language = strings.TrimSpace(language)
	framework = strings.TrimSpace(framework)
	if framework == "" {
		framework = language
	}
	return language, framework
}

// EnhanceWithTests returns the project with automated tests added. The reply
// goes through the same extraction and fallback as a generation.
func (g *Generator) EnhanceWithTests(ctx context.Context, req EnhanceRequest) (*GenerationResult, error) {
	const op = "enhance with tests"
	if strings.TrimSpace(req.Code) == "" {
		return nil, types.NewError(types.KindInvalidRequest, op, errors.New("code is required"))
	}

	language, framework := SplitLanguageFramework(req.LanguageFramework)
	user, system := prompts.GetEnhanceWithTestsPrompt(req.Description, req.Code, language, framework)

	reply, err := g.complete(ctx, Prompt{System: system, User: user})
	if err != nil {
		return nil, classify(op, err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, types.NewError(types.KindEmptyOutput, op, errors.New("model returned an empty reply"))
	}

	id := g.newID()
	log.Infof("Enhancement %s for %q: %d bytes (%s/%s)", id, req.ProjectName, len(reply), language, framework)
	result := g.finish(id, req.ProjectName, reply)
	result.Enhanced = true
	return result, nil
}
