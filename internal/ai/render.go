package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"k8s.io/klog/v2"

	"libgenui_server/internal/ai/prompts"
	"libgenui_server/internal/llm"
	"libgenui_server/internal/types"
)

var (
	ErrRenderInputMissing = errors.New("render needs a logic file and a markup file")
	ErrRenderFailed       = errors.New("render output has no markup")
)

var (
	bodyRe    = regexp.MustCompile(`(?is)<body[^>]*>(.*)</body>`)
	leadTagRe = regexp.MustCompile(`^<[A-Za-z]`)
)

// Render asks the model to resolve the component's bindings into one static
// markup fragment and returns the inner content of its body element.
func Render(ctx context.Context, model llm.Model, files types.FileSet) (string, error) {
	logic, ok := files.Find(types.RoleLogic)
	if !ok {
		return "", ErrRenderInputMissing
	}
	markup, ok := files.Find(types.RoleMarkup)
	if !ok {
		return "", ErrRenderInputMissing
	}

	out, err := model.Generate(ctx, llm.ProfileText, []llm.Part{
		llm.Text(prompts.GetRenderPrompt(logic.Content, markup.Content)),
	})
	if err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	klog.V(6).Infof("render: raw output: %s", out)

	return extractFragment(out)
}

func extractFragment(out string) (string, error) {
	text := unfence(out)
	if m := bodyRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	if leadTagRe.MatchString(text) {
		return text, nil
	}
	return "", ErrRenderFailed
}
