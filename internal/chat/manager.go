package chat

import (
	"context"
	"sync"

	"github.com/vietride/server/internal/chat/model"
	"github.com/vietride/server/internal/chat/provider"
	"github.com/vietride/server/internal/chat/tools"
	logx "github.com/vietride/server/pkg/logger"
)

// Config holds the actor's tunables, sourced from environment variables.
type Config struct {
	DefaultModel  string `envconfig:"CHAT_DEFAULT_MODEL" default:"google-ai-studio/gemini-2.5-flash"`
	HistoryWindow int    `envconfig:"CHAT_HISTORY_WINDOW" default:"5"`
	SummaryWindow int    `envconfig:"CHAT_SUMMARY_WINDOW" default:"3"`
}

// ActivityRecorder is notified after each successful turn so session listings
// can order by recency. Best effort; failures are logged, not surfaced.
type ActivityRecorder interface {
	TouchSession(ctx context.Context, id string) error
}

// Manager owns the session-id-keyed actor registry: one Session per id,
// created on first touch, never evicted.
type Manager struct {
	cfg      Config
	provider provider.Provider
	registry *tools.Registry
	history  model.HistoryRepository
	activity ActivityRecorder

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager wires the actor registry. activity may be nil.
func NewManager(cfg Config, p provider.Provider, reg *tools.Registry, hist model.HistoryRepository, activity ActivityRecorder) *Manager {
	return &Manager{
		cfg:      cfg,
		provider: p,
		registry: reg,
		history:  hist,
		activity: activity,
		sessions: make(map[string]*Session),
	}
}

// Session returns the actor for the given session id, creating it on first
// touch.
func (m *Manager) Session(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s = &Session{
		id: id,
		m:  m,
		state: model.ChatState{
			SessionID: id,
			Messages:  []model.Message{},
			Model:     m.cfg.DefaultModel,
		},
	}
	m.sessions[id] = s
	return s
}

func (m *Manager) touchActivity(ctx context.Context, id string) {
	if m.activity == nil {
		return
	}
	if err := m.activity.TouchSession(ctx, id); err != nil {
		logx.Warn().Err(err).Str("session_id", id).Msg("failed to record session activity")
	}
}
