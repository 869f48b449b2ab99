package ai

import (
	"context"
	"errors"
	"strings"

	"codegen_server/internal/ai/prompts"
	"codegen_server/internal/codeblocks"
	"codegen_server/internal/fallback"
	"codegen_server/internal/stream"
	"codegen_server/internal/types"
	"codegen_server/internal/utils"

	"fortio.org/log"
)

// ProjectRequest describes the project a user asked for. Option values are
// catalog values; unknown values are passed to the model as free text.
type ProjectRequest struct {
	ProjectName     string
	Description     string
	Framework       string
	ContentLanguage string
	Features        []string
	Database        string
	Authentication  bool
	Deployment      string
	WithTests       bool
}

func (g *Generator) brief(req ProjectRequest) prompts.ProjectBrief {
	b := prompts.ProjectBrief{
		ProjectName:     strings.TrimSpace(req.ProjectName),
		Description:     strings.TrimSpace(req.Description),
		ContentLanguage: req.ContentLanguage,
		Features:        req.Features,
		Authentication:  req.Authentication,
	}
	if g.catalog == nil {
		b.Framework, b.Database, b.Deployment = req.Framework, req.Database, req.Deployment
		return b
	}
	if req.Framework != "" {
		b.Framework = g.catalog.FrameworkLabel(req.Framework)
	}
	if req.Database != "" {
		b.Database = g.catalog.DatabaseLabel(req.Database)
	}
	if req.Deployment != "" {
		b.Deployment = g.catalog.DeploymentLabel(req.Deployment)
	}
	b.Features = g.catalog.FeatureLabels(req.Features)
	return b
}

// GenerateProject streams a project from the model and turns the reply into
// files. onFragment, when non-nil, sees every non-empty fragment in arrival
// order while the stream is in progress.
//
// A failed or cancelled stream returns an error and no files. Output with no
// recognised blocks is wrapped by the fallback synthesizer; empty output
// yields an empty file list.
func (g *Generator) GenerateProject(ctx context.Context, req ProjectRequest, onFragment func(string)) (*GenerationResult, error) {
	const op = "generate project"
	if strings.TrimSpace(req.Description) == "" {
		return nil, types.NewError(types.KindInvalidRequest, op, errors.New("description is required"))
	}

	brief := g.brief(req)
	user, system := prompts.GetCodeStreamPrompt(brief)
	raw, err := g.collect(ctx, Prompt{System: system, User: user}, onFragment)
	if err != nil {
		return nil, classify(op, err)
	}

	id := g.newID()
	log.Infof("Generation %s for %q finished: %d bytes from %s", id, req.ProjectName, len(raw), g.model.Name())

	result := g.finish(id, req.ProjectName, raw)
	if req.WithTests && strings.TrimSpace(raw) != "" {
		enhanced, err := g.EnhanceWithTests(ctx, EnhanceRequest{
			ProjectName:       req.ProjectName,
			Description:       req.Description,
			Code:              raw,
			LanguageFramework: brief.Framework,
		})
		switch {
		case err == nil:
			enhanced.ID = id
			return enhanced, nil
		case types.KindOf(err) == types.KindCanceled:
			return nil, err
		default:
			log.Warnf("Generation %s: test enhancement failed, returning plain project: %v", id, err)
		}
	}
	return result, nil
}

// finish runs extraction and the fallback over a complete reply.
func (g *Generator) finish(id, projectName, raw string) *GenerationResult {
	extracted := codeblocks.Extract(raw)
	files := fallback.Synthesize(raw, extracted, projectName)
	synthesized := len(extracted) == 0 && len(files) > 0
	if synthesized {
		log.LogVf("Generation %s: no path-tagged blocks, synthesized %d files", id, len(files))
	} else {
		log.LogVf("Generation %s: extracted %d files", id, len(files))
	}
	return &GenerationResult{
		ID:          id,
		ProjectName: projectName,
		Model:       g.model.Name(),
		Files:       files,
		Raw:         raw,
		Synthesized: synthesized,
	}
}

// collect drains one model stream. A stream that fails before any fragment
// reached onFragment is retried once when the error looks transient.
func (g *Generator) collect(ctx context.Context, p Prompt, onFragment func(string)) (string, error) {
	forwarded := 0
	forward := func(fragment string) {
		forwarded++
		if onFragment != nil {
			onFragment(fragment)
		}
	}

	raw, err := stream.Collect(ctx, g.model.Stream(ctx, p), forward)
	if err == nil || forwarded > 0 || ctx.Err() != nil || !utils.ShouldRetry(err) {
		return raw, err
	}

	log.Warnf("Model stream from %s failed before the first fragment, retrying: %v", g.model.Name(), err)
	if err := sleep(ctx, g.retryDelay); err != nil {
		return "", err
	}
	return stream.Collect(ctx, g.model.Stream(ctx, p), forward)
}

// classify maps a collection failure to an error kind.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return types.NewError(types.KindCanceled, op, err)
	}
	return types.NewError(types.KindUpstream, op, err)
}
