package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libgenui_server/internal/llm"
	"libgenui_server/internal/types"
)

func TestRenderExtractsBody(t *testing.T) {
	model := llm.NewScripted(llm.Reply{Text: "<body><div>x</div></body>"})
	got, err := Render(context.Background(), model, sampleFiles())
	require.NoError(t, err)
	assert.Equal(t, "<div>x</div>", got)

	prompt := model.Calls()[0].PromptText()
	assert.Contains(t, prompt, "export class AppComponent")
	assert.Contains(t, prompt, `<form class="login">`)
}

func TestExtractFragment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		err  error
	}{
		{name: "fenced body with attributes", in: "```html\n<BODY class=\"p\">\n  <h1>Hi</h1>\n</BODY>\n```", want: "<h1>Hi</h1>"},
		{name: "multiline body", in: "Here:\n<body>\n<ul>\n<li>a</li>\n</ul>\n</body>", want: "<ul>\n<li>a</li>\n</ul>"},
		{name: "bare markup", in: "<section>plain</section>", want: "<section>plain</section>"},
		{name: "prose only", in: "Sorry, I cannot render this.", err: ErrRenderFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractFragment(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderNeedsLogicAndMarkup(t *testing.T) {
	model := llm.NewScripted()
	_, err := Render(context.Background(), model, types.FileSet{{Filename: "app.component.scss", Content: "a{}"}})
	assert.ErrorIs(t, err, ErrRenderInputMissing)
	assert.Empty(t, model.Calls())
}
