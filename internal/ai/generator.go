package ai

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"libgenui_server/internal/ai/prompts"
	"libgenui_server/internal/llm"
	"libgenui_server/internal/types"
)

// Generator turns a description into a file set using one model.
type Generator struct {
	model         llm.Model
	extractor     *Extractor
	requiredFiles []string
}

func NewGenerator(model llm.Model, requiredFiles []string) *Generator {
	if len(requiredFiles) == 0 {
		requiredFiles = types.DefaultRequiredFiles
	}
	return &Generator{
		model:         model,
		extractor:     NewExtractor(),
		requiredFiles: requiredFiles,
	}
}

func (g *Generator) RequiredFiles() []string { return g.requiredFiles }

// Describe asks the multimodal profile for a textual description of an image.
func (g *Generator) Describe(ctx context.Context, image []byte, mimeType string) (string, error) {
	out, err := g.model.Generate(ctx, llm.ProfileMultimodal, []llm.Part{
		llm.Text(prompts.GetDescribePrompt()),
		llm.InlineData(mimeType, image),
	})
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}
	klog.V(6).Infof("describe: raw output: %s", out)
	return out, nil
}

// GenerateFiles runs the generation prompt and extracts the file set from
// the sanitized response. Required-file validation is left to the caller.
func (g *Generator) GenerateFiles(ctx context.Context, description string) (types.FileSet, error) {
	out, err := g.model.Generate(ctx, llm.ProfileText, []llm.Part{
		llm.Text(prompts.GetGenerationPrompt(description, g.requiredFiles)),
	})
	if err != nil {
		return nil, fmt.Errorf("generate files: %w", err)
	}
	klog.V(6).Infof("generate: raw output: %s", out)

	files, err := g.extractor.Extract(Sanitize(out))
	if err != nil {
		return nil, fmt.Errorf("extract files: %w", err)
	}
	klog.V(2).Infof("generate: extracted %d files", len(files))
	return files, nil
}

// Repair runs the evaluate/fix pass with the generator's model.
func (g *Generator) Repair(ctx context.Context, files types.FileSet) (RepairOutcome, error) {
	return Repair(ctx, g.model, g.extractor, files, g.requiredFiles)
}

// Render produces the static preview fragment for files.
func (g *Generator) Render(ctx context.Context, files types.FileSet) (string, error) {
	return Render(ctx, g.model, files)
}
