package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"codegen_server/config"
	"codegen_server/internal/catalog"
	"codegen_server/internal/fallback"
	"codegen_server/internal/stream"
	"codegen_server/internal/types"
)

// fakeModel replays scripted streams and replies, one per call.
type fakeModel struct {
	streams    [][]string
	streamErrs []error
	replies    []string
	replyErrs  []error

	streamCalls   int
	completeCalls int
	prompts       []Prompt
}

func (f *fakeModel) Name() string { return "fake/test" }

func (f *fakeModel) Stream(ctx context.Context, p Prompt) stream.Fragments {
	i := f.streamCalls
	f.streamCalls++
	f.prompts = append(f.prompts, p)
	return func(yield func(string, error) bool) {
		if i >= len(f.streams) {
			yield("", errors.New("unexpected stream call"))
			return
		}
		for _, fragment := range f.streams[i] {
			if !yield(fragment, nil) {
				return
			}
		}
		if i < len(f.streamErrs) && f.streamErrs[i] != nil {
			yield("", f.streamErrs[i])
		}
	}
}

func (f *fakeModel) Complete(ctx context.Context, p Prompt) (string, error) {
	i := f.completeCalls
	f.completeCalls++
	f.prompts = append(f.prompts, p)
	if i < len(f.replyErrs) && f.replyErrs[i] != nil {
		return "", f.replyErrs[i]
	}
	if i >= len(f.replies) {
		return "", errors.New("unexpected complete call")
	}
	return f.replies[i], nil
}

func newTestGenerator(t *testing.T, m Model) *Generator {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	g := NewGenerator(m, cat)
	g.retryDelay = time.Millisecond
	g.newID = func() string { return "gen-1" }
	return g
}

func TestGenerateProject_SplitHeader(t *testing.T) {
	m := &fakeModel{streams: [][]string{{"```tsx // a", ".ts\ncontent\n```"}}}
	g := newTestGenerator(t, m)

	var seen []string
	res, err := g.GenerateProject(context.Background(), ProjectRequest{
		ProjectName: "Demo",
		Description: "a tiny demo project",
	}, func(f string) { seen = append(seen, f) })
	if err != nil {
		t.Fatalf("GenerateProject: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("forwarded %d fragments, want 2", len(seen))
	}
	if len(res.Files) != 1 || res.Files[0].Name != "a.ts" || res.Files[0].Content != "content" {
		t.Fatalf("files = %+v", res.Files)
	}
	if res.Synthesized || res.ID != "gen-1" || res.Model != "fake/test" {
		t.Fatalf("unexpected result metadata: %+v", res)
	}
}

func TestGenerateProject_PromptUsesCatalogLabels(t *testing.T) {
	m := &fakeModel{streams: [][]string{{"```ts // x.ts\nx\n```"}}}
	g := newTestGenerator(t, m)

	_, err := g.GenerateProject(context.Background(), ProjectRequest{
		ProjectName: "Shop",
		Description: "an online shop with a cart",
		Framework:   "next",
		Features:    []string{"payments", "custom thing", " "},
		Database:    "postgresql",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	user := m.prompts[0].User
	for _, want := range []string{"Framework: Next.js", "- Payment Integration\n- custom thing", "Database: PostgreSQL", "Authentication: No"} {
		if !strings.Contains(user, want) {
			t.Errorf("prompt missing %q:\n%s", want, user)
		}
	}
	if m.prompts[0].System == "" {
		t.Error("system prompt is empty")
	}
}

func TestGenerateProject_FallbackWhenNoBlocks(t *testing.T) {
	m := &fakeModel{streams: [][]string{{"export default function Page() {", " return null }"}}}
	g := newTestGenerator(t, m)

	res, err := g.GenerateProject(context.Background(), ProjectRequest{
		ProjectName: "My App",
		Description: "a page without fences",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Synthesized || len(res.Files) != 3 {
		t.Fatalf("want 3 synthesized files, got %+v", res)
	}
	if res.Files[0].Name != fallback.EntryPath || res.Files[0].Content != "export default function Page() { return null }" {
		t.Fatalf("entry = %+v", res.Files[0])
	}
	if !strings.Contains(res.Files[1].Content, `"my-app"`) {
		t.Fatalf("manifest = %s", res.Files[1].Content)
	}
}

func TestGenerateProject_EmptyOutput(t *testing.T) {
	m := &fakeModel{streams: [][]string{{}}}
	g := newTestGenerator(t, m)

	res, err := g.GenerateProject(context.Background(), ProjectRequest{Description: "nothing comes back"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 0 || res.Synthesized {
		t.Fatalf("want no files, got %+v", res)
	}
}

func TestGenerateProject_InvalidRequest(t *testing.T) {
	m := &fakeModel{}
	g := newTestGenerator(t, m)

	_, err := g.GenerateProject(context.Background(), ProjectRequest{Description: "   "}, nil)
	if types.KindOf(err) != types.KindInvalidRequest {
		t.Fatalf("kind = %v, err = %v", types.KindOf(err), err)
	}
	if m.streamCalls != 0 {
		t.Fatal("model called for an invalid request")
	}
}

func TestGenerateProject_RetriesBeforeFirstFragment(t *testing.T) {
	m := &fakeModel{
		streams:    [][]string{{}, {"```js // i.js\n1\n```"}},
		streamErrs: []error{errors.New("503 Service Unavailable")},
	}
	g := newTestGenerator(t, m)

	res, err := g.GenerateProject(context.Background(), ProjectRequest{Description: "retry me please"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.streamCalls != 2 {
		t.Fatalf("stream calls = %d, want 2", m.streamCalls)
	}
	if len(res.Files) != 1 || res.Files[0].Name != "i.js" {
		t.Fatalf("files = %+v", res.Files)
	}
}

func TestGenerateProject_NoRetryAfterFragments(t *testing.T) {
	m := &fakeModel{
		streams:    [][]string{{"```js // i.js\n"}, {"never used"}},
		streamErrs: []error{errors.New("503 Service Unavailable")},
	}
	g := newTestGenerator(t, m)

	res, err := g.GenerateProject(context.Background(), ProjectRequest{Description: "fails midway"}, nil)
	if res != nil {
		t.Fatalf("partial result returned: %+v", res)
	}
	if types.KindOf(err) != types.KindUpstream {
		t.Fatalf("kind = %v", types.KindOf(err))
	}
	var ce *stream.CollectError
	if !errors.As(err, &ce) || ce.Received != 1 {
		t.Fatalf("want CollectError after 1 fragment, got %v", err)
	}
	if m.streamCalls != 1 {
		t.Fatalf("stream calls = %d, want 1", m.streamCalls)
	}
}

func TestGenerateProject_NoRetryOnPermanentError(t *testing.T) {
	m := &fakeModel{
		streams:    [][]string{{}},
		streamErrs: []error{errors.New("invalid api key")},
	}
	g := newTestGenerator(t, m)

	_, err := g.GenerateProject(context.Background(), ProjectRequest{Description: "bad credentials"}, nil)
	if types.KindOf(err) != types.KindUpstream || m.streamCalls != 1 {
		t.Fatalf("err = %v, calls = %d", err, m.streamCalls)
	}
}

func TestGenerateProject_Canceled(t *testing.T) {
	m := &fakeModel{streams: [][]string{{"a", "b", "c"}}}
	g := newTestGenerator(t, m)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := g.GenerateProject(ctx, ProjectRequest{Description: "stop after one"}, func(string) { cancel() })
	if types.KindOf(err) != types.KindCanceled {
		t.Fatalf("kind = %v, err = %v", types.KindOf(err), err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err should wrap context.Canceled: %v", err)
	}
}

func TestGenerateProject_WithTests(t *testing.T) {
	m := &fakeModel{
		streams: [][]string{{"```ts // sum.ts\nexport const sum = 1\n```"}},
		replies: []string{"```ts // sum.ts\nexport const sum = 1\n```\n```ts // sum.test.ts\ntest('sum')\n```"},
	}
	g := newTestGenerator(t, m)

	res, err := g.GenerateProject(context.Background(), ProjectRequest{
		ProjectName: "Sum",
		Description: "sum two numbers",
		Framework:   "express",
		WithTests:   true,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Enhanced || len(res.Files) != 2 || res.Files[1].Name != "sum.test.ts" {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(m.prompts[1].User, "Framework: Express.js") {
		t.Fatalf("enhance prompt = %s", m.prompts[1].User)
	}
}

func TestGenerateProject_WithTestsFailureKeepsProject(t *testing.T) {
	m := &fakeModel{
		streams:   [][]string{{"```ts // a.ts\na\n```"}},
		replyErrs: []error{errors.New("invalid request")},
	}
	g := newTestGenerator(t, m)

	res, err := g.GenerateProject(context.Background(), ProjectRequest{Description: "keep going", WithTests: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Enhanced || len(res.Files) != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestNewModel(t *testing.T) {
	m, err := NewModel(context.Background(), config.Config{LLMProvider: config.ProviderOpenAI, OpenAIKey: "sk-test", OpenAIModel: "gpt-4o-mini"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Name() != "openai/gpt-4o-mini" {
		t.Fatalf("name = %q", m.Name())
	}
	if _, err := NewModel(context.Background(), config.Config{LLMProvider: "llama"}); err == nil {
		t.Fatal("want error for unknown provider")
	}
}
