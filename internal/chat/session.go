// Package chat implements the per-session conversation actor: it owns one
// conversation's message history and processing flag and drives the turn
// protocol against the completion provider and the tool executor.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/vietride/server/internal/chat/model"
	"github.com/vietride/server/internal/chat/prompts"
	errx "github.com/vietride/server/internal/core/error"
	logx "github.com/vietride/server/pkg/logger"
)

const (
	apologyMessage  = "Sorry, I encountered an error. Please try again."
	fallbackReply   = "I apologize, but I encountered an issue processing your request."
	toolResultReply = "Tool results processed successfully."
)

// Session is the actor for a single conversation. Turns are serialized by
// turnMu; stateMu guards the state so readers can observe the mid-turn
// isProcessing flag without waiting for the provider round trip.
type Session struct {
	id string
	m  *Manager

	turnMu sync.Mutex

	stateMu sync.RWMutex
	loaded  bool
	state   model.ChatState
}

// State returns a snapshot of the session's conversation state.
func (s *Session) State(ctx context.Context) (model.ChatState, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return model.ChatState{}, err
	}
	return s.snapshot(), nil
}

// Clear truncates the conversation history. Model and processing flag are
// unaffected.
func (s *Session) Clear(ctx context.Context) (model.ChatState, error) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return model.ChatState{}, err
	}
	if err := s.m.history.Clear(ctx, s.id); err != nil {
		return model.ChatState{}, err
	}

	s.stateMu.Lock()
	s.state.Messages = []model.Message{}
	s.stateMu.Unlock()

	return s.snapshot(), nil
}

// SetModel updates the model used for subsequent turns. No provider call is
// triggered.
func (s *Session) SetModel(ctx context.Context, modelName string) (model.ChatState, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return model.ChatState{}, err
	}

	s.stateMu.Lock()
	s.state.Model = modelName
	s.stateMu.Unlock()

	return s.snapshot(), nil
}

// Submit runs one turn: append the user message, request a completion,
// execute any requested tools, request a summary, append the assistant
// message. On provider failure the session still reaches a terminal idle
// state with an apology appended.
func (s *Session) Submit(ctx context.Context, text, modelOverride string) (model.ChatState, error) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return model.ChatState{}, err
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return s.snapshot(), errx.New(errx.ErrEmptyMessage, http.StatusBadRequest, "Message is required")
	}

	s.stateMu.Lock()
	if modelOverride != "" && modelOverride != s.state.Model {
		s.state.Model = modelOverride
	}
	modelName := s.state.Model
	prior := make([]model.Message, len(s.state.Messages))
	copy(prior, s.state.Messages)
	userMsg := model.NewMessage(model.RoleUser, trimmed, nil)
	s.state.Messages = append(s.state.Messages, userMsg)
	s.state.IsProcessing = true
	s.stateMu.Unlock()

	s.persist(ctx, userMsg)

	reply, calls, err := s.runTurn(ctx, modelName, prior, trimmed)
	if err != nil {
		logx.Error().Err(err).Str("session_id", s.id).Msg("chat turn failed")
		s.finishTurn(ctx, model.NewMessage(model.RoleAssistant, apologyMessage, nil))
		return s.snapshot(), errx.New(
			fmt.Errorf("%w: %v", errx.ErrProviderFailure, err),
			http.StatusInternalServerError,
			"Failed to process message",
		)
	}

	s.finishTurn(ctx, model.NewMessage(model.RoleAssistant, reply, calls))
	s.m.touchActivity(ctx, s.id)
	return s.snapshot(), nil
}

// runTurn performs the provider round trips of one turn against the history
// captured before the user message was appended.
func (s *Session) runTurn(ctx context.Context, modelName string, prior []model.Message, userText string) (string, []model.ToolCall, error) {
	first := []*schema.Message{schema.SystemMessage(prompts.System)}
	for _, m := range tail(prior, s.m.cfg.HistoryWindow) {
		first = append(first, toSchemaMessage(m))
	}
	first = append(first, schema.UserMessage(userText))

	resp, err := s.m.provider.Complete(ctx, modelName, first, s.m.registry.Definitions(ctx))
	if err != nil {
		return "", nil, err
	}
	if resp == nil {
		return fallbackReply, nil, nil
	}
	if len(resp.ToolCalls) == 0 {
		if resp.Content == "" {
			return fallbackReply, nil, nil
		}
		return resp.Content, nil, nil
	}

	// Execute in request order; the order of the resulting sequence must
	// match the provider's requested calls.
	calls := make([]model.ToolCall, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		calls = append(calls, s.m.registry.Execute(ctx, tc.ID, tc.Function.Name, tc.Function.Arguments))
	}

	summary := []*schema.Message{schema.SystemMessage(prompts.Summary)}
	for _, m := range tail(prior, s.m.cfg.SummaryWindow) {
		summary = append(summary, toSchemaMessage(m))
	}
	summary = append(summary, schema.UserMessage(userText))
	summary = append(summary, &schema.Message{Role: schema.Assistant, ToolCalls: resp.ToolCalls})
	for _, call := range calls {
		payload, merr := json.Marshal(call.Result)
		if merr != nil {
			payload = []byte(`{"error":"failed to encode tool result"}`)
		}
		summary = append(summary, schema.ToolMessage(string(payload), call.ID))
	}

	final, err := s.m.provider.Complete(ctx, modelName, summary, nil)
	if err != nil {
		return "", nil, err
	}
	if final == nil || final.Content == "" {
		return toolResultReply, calls, nil
	}
	return final.Content, calls, nil
}

// finishTurn appends the terminal assistant message and releases the
// processing flag.
func (s *Session) finishTurn(ctx context.Context, msg model.Message) {
	s.stateMu.Lock()
	s.state.Messages = append(s.state.Messages, msg)
	s.state.IsProcessing = false
	s.stateMu.Unlock()

	s.persist(ctx, msg)
}

// persist writes a message through to the history repository. The in-memory
// state remains authoritative for the lifetime of the actor, so a failed
// write is logged rather than failing the turn.
func (s *Session) persist(ctx context.Context, msg model.Message) {
	if err := s.m.history.Append(ctx, s.id, msg); err != nil {
		logx.Warn().Err(err).Str("session_id", s.id).Msg("failed to persist message")
	}
}

func (s *Session) ensureLoaded(ctx context.Context) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if s.loaded {
		return nil
	}
	msgs, err := s.m.history.Load(ctx, s.id)
	if err != nil {
		return err
	}
	s.state.Messages = msgs
	s.loaded = true
	return nil
}

func (s *Session) snapshot() model.ChatState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state.Clone()
}

func toSchemaMessage(m model.Message) *schema.Message {
	switch m.Role {
	case model.RoleAssistant:
		return schema.AssistantMessage(m.Content, nil)
	case model.RoleSystem:
		return schema.SystemMessage(m.Content)
	default:
		return schema.UserMessage(m.Content)
	}
}

func tail(messages []model.Message, n int) []model.Message {
	if n <= 0 || len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
