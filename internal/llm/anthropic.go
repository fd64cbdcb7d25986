package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicDefaultMaxTokens = 8192

type Anthropic struct {
	client anthropic.Client
	cfg    Config
}

func NewAnthropic(cfg Config) *Anthropic {
	opts := []anthropicopt.RequestOption{anthropicopt.WithAPIKey(cfg.APIKey)}
	if cfg.Host != "" {
		opts = append(opts, anthropicopt.WithBaseURL(cfg.Host))
	}
	return &Anthropic{client: anthropic.NewClient(opts...), cfg: cfg}
}

func (a *Anthropic) Generate(ctx context.Context, profile Profile, parts []Part) (string, error) {
	if err := checkParts(profile, parts); err != nil {
		return "", err
	}

	var blocks []anthropic.ContentBlockParamUnion
	for _, p := range parts {
		if p.InlineData != nil {
			blocks = append(blocks, anthropic.NewImageBlockBase64(p.InlineData.MIMEType, base64.StdEncoding.EncodeToString(p.InlineData.Data)))
			continue
		}
		if p.Text != "" {
			blocks = append(blocks, anthropic.NewTextBlock(p.Text))
		}
	}

	maxTokens := a.cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.cfg.modelFor(profile)),
		MaxTokens: int64(maxTokens),
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}
	if a.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(a.cfg.Temperature))
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic: %w", ErrEmptyResponse)
	}
	return b.String(), nil
}
