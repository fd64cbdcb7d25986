// Package llm wraps the external generative model behind a single
// request/response call with text-only and multimodal profiles.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Profile selects the capability variant used for a call.
type Profile int

const (
	ProfileText Profile = iota
	ProfileMultimodal
)

func (p Profile) String() string {
	if p == ProfileMultimodal {
		return "multimodal"
	}
	return "text"
}

// Blob is an inline binary payload sent alongside text.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Part is one element of a prompt: either Text or InlineData.
type Part struct {
	Text       string
	InlineData *Blob
}

func Text(s string) Part { return Part{Text: s} }

func InlineData(mimeType string, data []byte) Part {
	return Part{InlineData: &Blob{MIMEType: mimeType, Data: data}}
}

// Model is a black-box completion function.
type Model interface {
	Generate(ctx context.Context, profile Profile, parts []Part) (string, error)
}

var (
	ErrInlineDataRequiresMultimodal = errors.New("inline data requires the multimodal profile")
	ErrEmptyPrompt                  = errors.New("prompt has no parts")
	ErrEmptyResponse                = errors.New("model returned empty response")
)

// Config describes how to reach a provider.
type Config struct {
	Provider        string
	Model           string
	VisionModel     string
	APIKey          string
	Host            string
	MaxOutputTokens int
	Temperature     float32
	Timeout         time.Duration
}

func (c Config) modelFor(p Profile) string {
	if p == ProfileMultimodal && c.VisionModel != "" {
		return c.VisionModel
	}
	return c.Model
}

// New builds the provider named in cfg.
func New(ctx context.Context, cfg Config) (Model, error) {
	var (
		m   Model
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "gemini", "google":
		m, err = NewGemini(ctx, cfg)
	case "openai":
		m = NewOpenAI(cfg)
	case "anthropic", "claude":
		m = NewAnthropic(cfg)
	case "ollama":
		m, err = NewOllama(cfg)
	default:
		return nil, fmt.Errorf("unknown model provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		m = WithTimeout(m, cfg.Timeout)
	}
	return m, nil
}

// checkParts enforces the profile contract shared by every provider.
func checkParts(profile Profile, parts []Part) error {
	if len(parts) == 0 {
		return ErrEmptyPrompt
	}
	if profile == ProfileMultimodal {
		return nil
	}
	for _, p := range parts {
		if p.InlineData != nil {
			return ErrInlineDataRequiresMultimodal
		}
	}
	return nil
}

// joinText concatenates the text parts of a prompt.
func joinText(parts []Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

type timeoutModel struct {
	next    Model
	timeout time.Duration
}

// WithTimeout bounds every call to next by d.
func WithTimeout(next Model, d time.Duration) Model {
	return &timeoutModel{next: next, timeout: d}
}

func (t *timeoutModel) Generate(ctx context.Context, profile Profile, parts []Part) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, profile, parts)
}

// Close releases the wrapped model's client, if it holds one.
func (t *timeoutModel) Close() error {
	if c, ok := t.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
