package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietride/server/internal/catalog"
)

func TestToolResultMarshalShapes(t *testing.T) {
	routes, err := json.Marshal(NewRoutesResult(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(routes))

	content, err := json.Marshal(NewContentResult("hello"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"hello"}`, string(content))

	errRes, err := json.Marshal(NewErrorResult("boom"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"boom"}`, string(errRes))

	weather, err := json.Marshal(NewWeatherResult(Weather{
		Location:    "Sapa",
		Temperature: 12,
		Condition:   "Cloudy",
		Humidity:    80,
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"location":"Sapa","temperature":12,"condition":"Cloudy","humidity":80}`, string(weather))
}

func TestToolResultUnmarshalRederivesTag(t *testing.T) {
	var routes ToolResult
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"HN-SP-001","from":"Hanoi","to":"Sapa"}]`), &routes))
	assert.Equal(t, ResultRoutes, routes.Kind)
	require.Len(t, routes.Routes, 1)
	assert.Equal(t, "HN-SP-001", routes.Routes[0].ID)

	// An empty array is still a routes result, not a missing one.
	var empty ToolResult
	require.NoError(t, json.Unmarshal([]byte(`[]`), &empty))
	assert.Equal(t, ResultRoutes, empty.Kind)
	assert.NotNil(t, empty.Routes)

	var errRes ToolResult
	require.NoError(t, json.Unmarshal([]byte(`{"error":"nope"}`), &errRes))
	assert.Equal(t, ResultError, errRes.Kind)
	assert.Equal(t, "nope", errRes.Err)
	assert.True(t, errRes.IsError())

	var content ToolResult
	require.NoError(t, json.Unmarshal([]byte(`{"content":"from a passthrough tool"}`), &content))
	assert.Equal(t, ResultContent, content.Kind)
	assert.Equal(t, "from a passthrough tool", content.Content)

	var weather ToolResult
	require.NoError(t, json.Unmarshal([]byte(`{"location":"Hanoi","temperature":-3,"condition":"Snowy","humidity":40}`), &weather))
	assert.Equal(t, ResultWeather, weather.Kind)
	require.NotNil(t, weather.Weather)
	assert.Equal(t, -3, weather.Weather.Temperature)
}

func TestMessageRoundTripKeepsToolCalls(t *testing.T) {
	msg := NewMessage(RoleAssistant, "found 3 routes", []ToolCall{
		{
			ID:        "call-1",
			Name:      "search_routes",
			Arguments: map[string]any{"origin": "Hanoi", "destination": "Sapa"},
			Result:    NewRoutesResult([]catalog.Trip{{ID: "HN-SP-001"}}),
		},
	})

	b, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, msg.ID, decoded.ID)
	assert.Equal(t, RoleAssistant, decoded.Role)
	require.Len(t, decoded.ToolCalls, 1)
	assert.Equal(t, ResultRoutes, decoded.ToolCalls[0].Result.Kind)
	assert.Equal(t, "HN-SP-001", decoded.ToolCalls[0].Result.Routes[0].ID)
}

func TestChatStateCloneIsIndependent(t *testing.T) {
	state := ChatState{
		SessionID: "s1",
		Messages:  []Message{NewMessage(RoleUser, "hi", nil)},
		Model:     "google-ai-studio/gemini-2.5-flash",
	}

	clone := state.Clone()
	clone.Messages[0].Content = "changed"

	assert.Equal(t, "hi", state.Messages[0].Content)
	assert.Equal(t, state.SessionID, clone.SessionID)
	assert.Equal(t, state.Model, clone.Model)
}
