package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a helpful AI assistant that generates code based on user prompts and specific formatting instructions."

type OpenAI struct {
	client *openai.Client
	cfg    Config
}

func NewOpenAI(cfg Config) *OpenAI {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.Host != "" {
		config.BaseURL = cfg.Host
	}
	return &OpenAI{client: openai.NewClientWithConfig(config), cfg: cfg}
}

func (o *OpenAI) Generate(ctx context.Context, profile Profile, parts []Part) (string, error) {
	if err := checkParts(profile, parts); err != nil {
		return "", err
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if profile == ProfileMultimodal {
		for _, p := range parts {
			if p.InlineData != nil {
				dataURL := fmt.Sprintf("data:%s;base64,%s", p.InlineData.MIMEType, base64.StdEncoding.EncodeToString(p.InlineData.Data))
				user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
				})
				continue
			}
			user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		}
	} else {
		user.Content = joinText(parts)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.modelFor(profile),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			user,
		},
		MaxTokens:   o.cfg.MaxOutputTokens,
		Temperature: o.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
