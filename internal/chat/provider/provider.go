// Package provider abstracts the external chat-completion service: given a
// message list and a tool catalog it returns either free text or requested
// tool invocations on the reply message.
package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	logx "github.com/vietride/server/pkg/logger"
)

// Provider is the completion capability the session actor calls. The reply
// message carries plain text in Content or requested calls in ToolCalls.
type Provider interface {
	Complete(ctx context.Context, model string, msgs []*schema.Message, tools []*schema.ToolInfo) (*schema.Message, error)
}

// GeminiConfig configures the Gemini-backed provider, sourced from the
// environment.
type GeminiConfig struct {
	APIKey    string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL   string `envconfig:"GEMINI_BASE_URL"`
	MaxTokens int    `envconfig:"GEMINI_MAX_TOKENS" default:"4096"`
}

// Gemini implements Provider over the genai client. Chat models are built on
// demand per model name and cached; tool-carrying and plain variants are
// cached separately because tools are bound at construction.
type Gemini struct {
	client    *genai.Client
	maxTokens int

	mu     sync.Mutex
	models map[string]*gemini.ChatModel
}

// NewGemini creates the genai client and returns the provider.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	return &Gemini{
		client:    client,
		maxTokens: cfg.MaxTokens,
		models:    make(map[string]*gemini.ChatModel),
	}, nil
}

// Complete sends one completion request.
func (g *Gemini) Complete(ctx context.Context, model string, msgs []*schema.Message, tools []*schema.ToolInfo) (*schema.Message, error) {
	cm, err := g.chatModel(ctx, model, tools)
	if err != nil {
		return nil, err
	}
	return cm.Generate(ctx, msgs)
}

func (g *Gemini) chatModel(ctx context.Context, model string, tools []*schema.ToolInfo) (*gemini.ChatModel, error) {
	key := model
	if len(tools) > 0 {
		key += "+tools"
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if cm, ok := g.models[key]; ok {
		return cm, nil
	}

	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:    g.client,
		Model:     bareModel(model),
		MaxTokens: &g.maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", model).Msg("error creating chat model")
		return nil, fmt.Errorf("error creating chat model %q: %w", model, err)
	}
	if len(tools) > 0 {
		if err := cm.BindTools(tools); err != nil {
			logx.Error().Err(err).Str("model", model).Msg("failed to bind tools")
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
	}

	g.models[key] = cm
	return cm, nil
}

// bareModel strips a gateway prefix such as "google-ai-studio/" so the genai
// API receives the bare model id.
func bareModel(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		return model[i+1:]
	}
	return model
}

var _ Provider = (*Gemini)(nil)
