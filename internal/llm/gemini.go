package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Gemini struct {
	client *genai.Client
	cfg    Config
}

func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Gemini{client: client, cfg: cfg}, nil
}

func (g *Gemini) Generate(ctx context.Context, profile Profile, parts []Part) (string, error) {
	if err := checkParts(profile, parts); err != nil {
		return "", err
	}
	model := g.client.GenerativeModel(g.cfg.modelFor(profile))
	if g.cfg.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(g.cfg.MaxOutputTokens))
	}
	if g.cfg.Temperature > 0 {
		model.SetTemperature(g.cfg.Temperature)
	}

	var gparts []genai.Part
	for _, p := range parts {
		if p.InlineData != nil {
			gparts = append(gparts, genai.Blob{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data})
			continue
		}
		gparts = append(gparts, genai.Text(p.Text))
	}

	resp, err := model.GenerateContent(ctx, gparts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return b.String(), nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}
