package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// DeepSeekProvider talks to the DeepSeek chat-completion API through its
// OpenAI-compatible surface.
type DeepSeekProvider struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

func NewDeepSeekProvider(apiKey, baseURL, model, systemPrompt string) *DeepSeekProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &DeepSeekProvider{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		systemPrompt: systemPrompt,
	}
}

// Chat sends the history to the completion endpoint. When the history does
// not open with a system message, the configured system prompt is prepended.
func (p *DeepSeekProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{Model: p.model}

	if len(messages) == 0 || messages[0].Role != openai.ChatMessageRoleSystem {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: p.systemPrompt,
		})
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("deepseek: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
