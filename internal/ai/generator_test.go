package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libgenui_server/internal/llm"
	"libgenui_server/internal/types"
)

func TestGenerateFilesFromProseWrappedOutput(t *testing.T) {
	model := llm.NewScripted(llm.Reply{Text: "Here is your component:\n```json\n" + filesJSON(t, sampleFiles()) + "\n```\nEnjoy!"})
	g := NewGenerator(model, nil)

	files, err := g.GenerateFiles(context.Background(), "a login page")
	require.NoError(t, err)
	assert.Equal(t, sampleFiles(), files)
	require.NoError(t, files.Validate(g.RequiredFiles()))

	calls := model.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, llm.ProfileText, calls[0].Profile)
	assert.Contains(t, calls[0].PromptText(), "a login page")
}

func TestGenerateFilesNoJSON(t *testing.T) {
	g := NewGenerator(llm.NewScripted(llm.Reply{Text: "I am unable to produce code."}), nil)
	_, err := g.GenerateFiles(context.Background(), "a login page")
	assert.ErrorIs(t, err, ErrNoFileSet)
}

func TestGenerateFilesModelError(t *testing.T) {
	boom := errors.New("quota exceeded")
	g := NewGenerator(llm.NewScripted(llm.Reply{Err: boom}), nil)
	_, err := g.GenerateFiles(context.Background(), "a login page")
	assert.ErrorIs(t, err, boom)
}

func TestDescribeUsesMultimodalProfile(t *testing.T) {
	model := llm.NewScripted(llm.Reply{Text: "A dashboard with a sidebar."})
	g := NewGenerator(model, []string{"app.component.ts"})

	got, err := g.Describe(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "A dashboard with a sidebar.", got)

	call := model.Calls()[0]
	assert.Equal(t, llm.ProfileMultimodal, call.Profile)
	require.Len(t, call.Parts, 2)
	require.NotNil(t, call.Parts[1].InlineData)
	assert.Equal(t, "image/png", call.Parts[1].InlineData.MIMEType)
	assert.Equal(t, []string{"app.component.ts"}, g.RequiredFiles())
}

func TestNewGeneratorDefaultsRequiredFiles(t *testing.T) {
	assert.Equal(t, types.DefaultRequiredFiles, NewGenerator(llm.NewScripted(), nil).RequiredFiles())
}
