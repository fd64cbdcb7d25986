package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

const defaultOllamaHost = "http://localhost:11434"

type Ollama struct {
	client *ollama.Client
	cfg    Config
}

func NewOllama(cfg Config) (*Ollama, error) {
	host := cfg.Host
	if host == "" {
		host = defaultOllamaHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}
	return &Ollama{client: ollama.NewClient(u, &http.Client{}), cfg: cfg}, nil
}

func (o *Ollama) Generate(ctx context.Context, profile Profile, parts []Part) (string, error) {
	if err := checkParts(profile, parts); err != nil {
		return "", err
	}

	stream := false
	req := &ollama.GenerateRequest{
		Model:   o.cfg.modelFor(profile),
		System:  systemPrompt,
		Prompt:  joinText(parts),
		Stream:  &stream,
		Options: map[string]any{},
	}
	if o.cfg.MaxOutputTokens > 0 {
		req.Options["num_predict"] = o.cfg.MaxOutputTokens
	}
	if o.cfg.Temperature > 0 {
		req.Options["temperature"] = o.cfg.Temperature
	}
	for _, p := range parts {
		if p.InlineData != nil {
			req.Images = append(req.Images, ollama.ImageData(p.InlineData.Data))
		}
	}

	var text strings.Builder
	err := o.client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return text.String(), nil
}
