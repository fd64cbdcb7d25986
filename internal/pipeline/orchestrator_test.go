package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libgenui_server/internal/ai"
	"libgenui_server/internal/llm"
	"libgenui_server/internal/store"
	"libgenui_server/internal/types"
)

func loginFiles() types.FileSet {
	return types.FileSet{
		{Filename: "app.component.ts", Content: "export class AppComponent {\n  user = { name: \"Ada\" };\n}"},
		{Filename: "app.component.html", Content: "<form><p>{{ user.name }}</p></form>"},
		{Filename: "app.component.scss", Content: "form { display: grid; }"},
	}
}

func encode(t *testing.T, files types.FileSet) string {
	t.Helper()
	raw, err := json.Marshal(files)
	require.NoError(t, err)
	return string(raw)
}

// recordingSaver counts saves and can be told to fail.
type recordingSaver struct {
	mu    sync.Mutex
	saved []*types.Artifact
	err   error
}

func (r *recordingSaver) Save(_ context.Context, a *types.Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, a)
	return nil
}

func (r *recordingSaver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

// stageOf names the pipeline stage a prompt belongs to.
func stageOf(prompt string) string {
	switch {
	case strings.Contains(prompt, "Explain what kind of a web page"):
		return "describe"
	case strings.Contains(prompt, "reviewing generated"):
		return "evaluate"
	case strings.Contains(prompt, "fix an existing"):
		return "fix"
	case strings.Contains(prompt, "single static HTML fragment"):
		return "render"
	default:
		return "generate"
	}
}

func happyResponder(t *testing.T) func(llm.Profile, string) (string, error) {
	files := encode(t, loginFiles())
	return func(_ llm.Profile, prompt string) (string, error) {
		switch stageOf(prompt) {
		case "describe":
			return "A sign-in form with a name field.", nil
		case "evaluate":
			return `{"isValid": true, "issues": [], "suggestions": []}`, nil
		case "render":
			return "<body><div>x</div></body>", nil
		default:
			return "```json\n" + files + "\n```", nil
		}
	}
}

func newTestOrchestrator(model llm.Model, saver ArtifactSaver, render bool) *Orchestrator {
	return NewOrchestrator(ai.NewGenerator(model, nil), saver, Config{RenderPreview: render})
}

func TestRunLoginPage(t *testing.T) {
	model := llm.NewScripted()
	model.Responder = happyResponder(t)
	mem := store.NewMemoryStore()
	repo := store.NewArtifactRepository(mem, "", "")
	o := newTestOrchestrator(model, repo, true)

	artifact, err := o.Run(context.Background(), Request{Prompt: "a login page"})
	require.NoError(t, err)
	require.Len(t, artifact.Files, 3)
	for _, name := range types.DefaultRequiredFiles {
		_, ok := artifact.Files.Get(name)
		assert.True(t, ok, name)
	}
	assert.Equal(t, "<div>x</div>", artifact.RenderedFragment)

	state := o.State.Value()
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Error)
	assert.Equal(t, loginFiles(), state.CurrentFiles)
	assert.Equal(t, "a login page", state.Description)
	assert.Equal(t, artifact.ID, state.RunID)
	assert.Equal(t, "<div>x</div>", o.Fragment.Value())

	doc, err := mem.Load(context.Background(), store.DefaultCollection, store.DefaultDocument)
	require.NoError(t, err)
	require.Len(t, doc, 1)
	stored := doc[artifact.ID].(map[string]any)
	assert.Equal(t, "a login page", stored["description"])
	assert.Len(t, stored["code"], 4)

	var stages []string
	for _, c := range model.Calls() {
		stages = append(stages, stageOf(c.PromptText()))
	}
	assert.Equal(t, []string{"generate", "evaluate", "render"}, stages)
}

func TestRunModelErrorKeepsPreviousFiles(t *testing.T) {
	model := llm.NewScripted()
	model.Responder = happyResponder(t)
	saver := &recordingSaver{}
	o := newTestOrchestrator(model, saver, false)

	_, err := o.Run(context.Background(), Request{Prompt: "a login page"})
	require.NoError(t, err)
	require.Equal(t, 1, saver.count())

	boom := errors.New("service unavailable")
	model.Responder = func(llm.Profile, string) (string, error) { return "", boom }
	_, err = o.Run(context.Background(), Request{Prompt: "a settings page"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageGenerate, stageErr.Stage)

	state := o.State.Value()
	assert.False(t, state.IsLoading)
	assert.Equal(t, stageErr.Error(), state.Error)
	assert.Equal(t, loginFiles(), state.CurrentFiles)
	assert.Equal(t, 1, saver.count())
}

func TestRunFailureStages(t *testing.T) {
	tests := []struct {
		name   string
		reply  func(stage string) (string, error)
		stage  string
		target error
	}{
		{
			name: "no json",
			reply: func(string) (string, error) {
				return "Sorry, I can only describe the page.", nil
			},
			stage:  StageGenerate,
			target: ai.ErrNoFileSet,
		},
		{
			name: "missing required file",
			reply: func(string) (string, error) {
				return `[{"filename":"app.component.ts","content":"x"}]`, nil
			},
			stage:  StageValidate,
			target: types.ErrMissingRequiredFile,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := llm.NewScripted()
			model.Responder = func(_ llm.Profile, prompt string) (string, error) {
				return tt.reply(stageOf(prompt))
			}
			saver := &recordingSaver{}
			o := newTestOrchestrator(model, saver, true)

			_, err := o.Run(context.Background(), Request{Prompt: "a login page"})
			assert.ErrorIs(t, err, tt.target)
			var stageErr *StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.stage, stageErr.Stage)
			assert.Zero(t, saver.count())
			assert.NotEmpty(t, o.State.Value().Error)
		})
	}
}

func TestRunPersistFailure(t *testing.T) {
	model := llm.NewScripted()
	model.Responder = happyResponder(t)
	saver := &recordingSaver{err: errors.New("disk full")}
	o := newTestOrchestrator(model, saver, true)

	_, err := o.Run(context.Background(), Request{Prompt: "a login page"})
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StagePersist, stageErr.Stage)
	assert.Equal(t, "<div>x</div>", o.Fragment.Value())
	assert.Empty(t, o.State.Value().CurrentFiles)
}

func TestRunImagePublishesDescriptionBeforeGeneration(t *testing.T) {
	files := encode(t, loginFiles())
	var o *Orchestrator
	var seenDuringGenerate string

	model := llm.NewScripted()
	model.Responder = func(profile llm.Profile, prompt string) (string, error) {
		switch stageOf(prompt) {
		case "describe":
			assert.Equal(t, llm.ProfileMultimodal, profile)
			return "A dashboard with a sidebar.", nil
		case "evaluate":
			return `{"isValid": true}`, nil
		default:
			seenDuringGenerate = o.Description.Value()
			return files, nil
		}
	}
	o = newTestOrchestrator(model, &recordingSaver{}, false)

	png := []byte("\x89PNG\r\n\x1a\n0000")
	artifact, err := o.Run(context.Background(), Request{Image: png})
	require.NoError(t, err)
	assert.Equal(t, "A dashboard with a sidebar.", seenDuringGenerate)
	assert.Equal(t, "A dashboard with a sidebar.", artifact.Description)

	describe := model.Calls()[0]
	require.NotNil(t, describe.Parts[1].InlineData)
	assert.Equal(t, "image/png", describe.Parts[1].InlineData.MIMEType)
}

func TestRunRepairsOnce(t *testing.T) {
	fixed := loginFiles()
	fixed[1].Content = "<form><button>Sign in</button></form>"
	fixedJSON := encode(t, fixed)

	model := llm.NewScripted()
	base := happyResponder(t)
	model.Responder = func(profile llm.Profile, prompt string) (string, error) {
		switch stageOf(prompt) {
		case "evaluate":
			return `{"isValid": false, "issues": ["no submit button"]}`, nil
		case "fix":
			return fixedJSON, nil
		}
		return base(profile, prompt)
	}
	o := newTestOrchestrator(model, &recordingSaver{}, false)

	artifact, err := o.Run(context.Background(), Request{Prompt: "a login page"})
	require.NoError(t, err)
	assert.Equal(t, fixed, artifact.Files)
	assert.Len(t, model.Calls(), 3)
}

func TestRunRenderFailureIsIsolated(t *testing.T) {
	model := llm.NewScripted()
	base := happyResponder(t)
	model.Responder = func(profile llm.Profile, prompt string) (string, error) {
		if stageOf(prompt) == "render" {
			return "", errors.New("render model down")
		}
		return base(profile, prompt)
	}
	saver := &recordingSaver{}
	o := newTestOrchestrator(model, saver, true)

	artifact, err := o.Run(context.Background(), Request{Prompt: "a login page"})
	require.NoError(t, err)
	assert.Empty(t, artifact.RenderedFragment)
	assert.Len(t, artifact.StoredFiles(), 3)
	assert.Equal(t, 1, saver.count())
}

func TestRunWithoutRenderClearsPreview(t *testing.T) {
	model := llm.NewScripted()
	model.Responder = happyResponder(t)
	o := newTestOrchestrator(model, &recordingSaver{}, true)

	_, err := o.Run(context.Background(), Request{Prompt: "a login page"})
	require.NoError(t, err)
	require.Equal(t, "<div>x</div>", o.Fragment.Value())

	o.cfg.RenderPreview = false
	artifact, err := o.Run(context.Background(), Request{Prompt: "a signup page"})
	require.NoError(t, err)
	assert.Empty(t, artifact.RenderedFragment)
	assert.Empty(t, o.Fragment.Value())
	assert.Equal(t, artifact.ID, o.State.Value().RunID)
}

func TestSupersededRunDoesNotOverwriteNewerState(t *testing.T) {
	firstFiles := loginFiles()
	secondFiles := loginFiles()
	secondFiles[0].Content = "export class AppComponent { second = true; }"

	release := make(chan struct{})
	firstGenerating := make(chan struct{})

	model := llm.NewScripted()
	model.Responder = func(_ llm.Profile, prompt string) (string, error) {
		switch stageOf(prompt) {
		case "evaluate":
			return `{"isValid": true}`, nil
		case "generate":
			if strings.Contains(prompt, "first page") {
				close(firstGenerating)
				<-release
				return encode(t, firstFiles), nil
			}
			return encode(t, secondFiles), nil
		}
		return "", errors.New("unexpected stage")
	}
	saver := &recordingSaver{}
	o := newTestOrchestrator(model, saver, false)

	firstID, err := o.RunAsync(Request{Prompt: "first page"})
	require.NoError(t, err)
	<-firstGenerating

	second, err := o.Run(context.Background(), Request{Prompt: "second page"})
	require.NoError(t, err)
	close(release)
	o.Wait()

	state := o.State.Value()
	assert.Equal(t, second.ID, state.RunID)
	assert.NotEqual(t, firstID, state.RunID)
	assert.Equal(t, secondFiles, state.CurrentFiles)
	assert.Equal(t, "second page", state.Description)
	assert.Equal(t, 2, saver.count())
}

func TestRunAsyncPublishesLoadingState(t *testing.T) {
	release := make(chan struct{})
	model := llm.NewScripted()
	base := happyResponder(t)
	model.Responder = func(profile llm.Profile, prompt string) (string, error) {
		<-release
		return base(profile, prompt)
	}
	o := newTestOrchestrator(model, &recordingSaver{}, false)

	id, err := o.RunAsync(Request{Prompt: "a login page"})
	require.NoError(t, err)
	state := o.State.Value()
	assert.Equal(t, id, state.RunID)
	assert.True(t, state.IsLoading)

	close(release)
	o.Wait()
	assert.False(t, o.State.Value().IsLoading)
}

func TestRunRejectsInvalidRequest(t *testing.T) {
	o := newTestOrchestrator(llm.NewScripted(), &recordingSaver{}, false)
	for _, req := range []Request{
		{},
		{Prompt: "   "},
		{Prompt: "a page", Image: []byte("\x89PNG\r\n\x1a\n")},
		{Image: []byte("plain text, not an image")},
	} {
		_, err := o.Run(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
	assert.Empty(t, o.State.Value().RunID)
}
