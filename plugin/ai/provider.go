// Package ai wraps the OpenAI-compatible chat completion endpoint
// (a local Ollama instance by default) behind a small provider type.
package ai

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// Config holds the AI provider configuration.
type Config struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	ReasoningModel string
	EmbeddingModel string
	Timeout        time.Duration
}

// DefaultConfig returns the default configuration, pointed at a local
// Ollama instance through its OpenAI-compatible endpoint.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://localhost:11434/v1",
		APIKey:         "ollama",
		ChatModel:      "qwen2.5:7b-instruct",
		ReasoningModel: "deepseek-r1:7b",
		EmbeddingModel: "nomic-embed-text",
		Timeout:        60 * time.Second,
	}
}

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// SystemMessage creates a system prompt message.
func SystemMessage(content string) Message {
	return Message{Role: openai.ChatMessageRoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: openai.ChatMessageRoleUser, Content: content}
}

// Provider provides chat completion and embedding access.
//
// Calls are single-shot on purpose: a timeout or provider error is
// converted by the caller into a fallback reply, never retried.
type Provider struct {
	client *openai.Client
	config *Config
}

// NewProvider creates a new AI provider.
func NewProvider(cfg *Config) *Provider {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

// ChatModel returns the configured default chat model name.
func (p *Provider) ChatModel() string {
	return p.config.ChatModel
}

// ReasoningModel returns the configured reasoning model name.
func (p *Provider) ReasoningModel() string {
	return p.config.ReasoningModel
}

// Chat performs a non-streaming chat completion with the given model.
func (p *Provider) Chat(ctx context.Context, model string, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: llmMessages,
		Stream:   false,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty chat response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Embedding generates an embedding vector for the given text.
func (p *Provider) Embedding(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.config.EmbeddingModel),
	})
	if err != nil {
		return nil, errors.Wrap(err, "embedding request failed")
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}
