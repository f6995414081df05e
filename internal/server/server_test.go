package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietride/server/internal/catalog"
	"github.com/vietride/server/internal/chat"
	"github.com/vietride/server/internal/chat/repo"
	"github.com/vietride/server/internal/chat/tools"
	"github.com/vietride/server/internal/store"
)

// scriptedProvider replays canned assistant messages in order.
type scriptedProvider struct {
	responses []*schema.Message
}

func (p *scriptedProvider) Complete(_ context.Context, _ string, _ []*schema.Message, _ []*schema.ToolInfo) (*schema.Message, error) {
	resp := schema.AssistantMessage("OK", nil)
	if len(p.responses) > 0 {
		resp, p.responses = p.responses[0], p.responses[1:]
	}
	return resp, nil
}

func newTestServer(t *testing.T, p *scriptedProvider) *Server {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := store.New(rdb)
	chats := chat.NewManager(
		chat.Config{DefaultModel: "google-ai-studio/gemini-2.5-flash", HistoryWindow: 5, SummaryWindow: 3},
		p,
		tools.NewRegistry(),
		repo.NewRedisHistoryRepository(rdb),
		st,
	)
	return New(chats, st)
}

func doJSON(t *testing.T, s *Server, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{})

	rec, env := doJSON(t, s, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Not found", env.Error)
}

func TestChatTurn(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{
		responses: []*schema.Message{schema.AssistantMessage("Sapa has three departures today.", nil)},
	})

	rec, env := doJSON(t, s, http.MethodPost, "/api/chat/s1/chat",
		map[string]string{"message": "buses to sapa"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var state struct {
		SessionID    string `json:"sessionId"`
		IsProcessing bool   `json:"isProcessing"`
		Messages     []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &state))

	assert.Equal(t, "s1", state.SessionID)
	assert.False(t, state.IsProcessing)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "user", state.Messages[0].Role)
	assert.Equal(t, "buses to sapa", state.Messages[0].Content)
	assert.Equal(t, "assistant", state.Messages[1].Role)
	assert.Equal(t, "Sapa has three departures today.", state.Messages[1].Content)
}

func TestChatRejectsBlankMessage(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{})

	rec, env := doJSON(t, s, http.MethodPost, "/api/chat/s1/chat",
		map[string]string{"message": "   "}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Message is required", env.Error)
}

func TestGetAndClearMessages(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{})

	_, env := doJSON(t, s, http.MethodPost, "/api/chat/s1/chat",
		map[string]string{"message": "hello"}, nil)
	require.True(t, env.Success)

	rec, env := doJSON(t, s, http.MethodGet, "/api/chat/s1/messages", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Len(t, data["messages"], 2)

	rec, env = doJSON(t, s, http.MethodDelete, "/api/chat/s1/clear", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data, ok = env.Data.(map[string]any)
	require.True(t, ok)
	assert.Empty(t, data["messages"])
}

func TestUpdateModel(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{})

	rec, env := doJSON(t, s, http.MethodPost, "/api/chat/s1/model",
		map[string]string{"model": "google-ai-studio/gemini-2.5-pro"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "google-ai-studio/gemini-2.5-pro", data["model"])
}

func TestSessionEndpoints(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{})

	_, env := doJSON(t, s, http.MethodPost, "/api/sessions",
		map[string]string{"sessionId": "s1", "title": "Planning"}, nil)
	require.True(t, env.Success)
	data := env.Data.(map[string]any)
	assert.Equal(t, "s1", data["sessionId"])
	assert.Equal(t, "Planning", data["title"])

	// Title seeded from the first message, truncated to 50 runes.
	long := "This is a very long opening message that keeps going well past fifty characters"
	_, env = doJSON(t, s, http.MethodPost, "/api/sessions",
		map[string]string{"firstMessage": long}, nil)
	require.True(t, env.Success)
	data = env.Data.(map[string]any)
	assert.NotEmpty(t, data["sessionId"])
	title := data["title"].(string)
	assert.Len(t, []rune(title), maxSeededTitleLen+3)
	assert.Equal(t, "...", title[len(title)-3:])

	_, env = doJSON(t, s, http.MethodGet, "/api/sessions", nil, nil)
	require.True(t, env.Success)
	assert.Len(t, env.Data, 2)

	_, env = doJSON(t, s, http.MethodDelete, "/api/sessions", nil, nil)
	require.True(t, env.Success)
	data = env.Data.(map[string]any)
	assert.Equal(t, float64(2), data["deletedCount"])
}

func TestAuthAndBookingsFlow(t *testing.T) {
	s := newTestServer(t, &scriptedProvider{})

	// Missing credentials.
	rec, env := doJSON(t, s, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "a@x.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email and password are required", env.Error)

	rec, env = doJSON(t, s, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "a@x.com", "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
	auth := env.Data.(map[string]any)
	token := auth["token"].(string)
	require.NotEmpty(t, token)

	rec, env = doJSON(t, s, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "a@x.com", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User with this email already exists.", env.Error)

	rec, env = doJSON(t, s, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "a@x.com", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password.", env.Error)

	rec, _ = doJSON(t, s, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "a@x.com", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Bookings require a bearer token.
	rec, env = doJSON(t, s, http.MethodGet, "/api/bookings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", env.Error)

	rec, env = doJSON(t, s, http.MethodGet, "/api/bookings", nil, bearer("bogus"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", env.Error)

	rec, env = doJSON(t, s, http.MethodPost, "/api/bookings",
		map[string]any{"trip": catalog.Trips[0]}, bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	booking := env.Data.(map[string]any)
	assert.Equal(t, catalog.Trips[0].ID, booking["trip"].(map[string]any)["id"])

	rec, env = doJSON(t, s, http.MethodPost, "/api/bookings",
		map[string]any{}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Trip is required", env.Error)

	_, env = doJSON(t, s, http.MethodGet, "/api/bookings", nil, bearer(token))
	require.True(t, env.Success)
	assert.Len(t, env.Data, 1)
}
