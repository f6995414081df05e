package model

import (
	"bytes"
	"encoding/json"

	"github.com/vietride/server/internal/catalog"
)

// ResultKind tags a ToolResult variant. The executor assigns the tag at the
// point of construction; nothing downstream infers it from shape.
type ResultKind string

const (
	ResultRoutes  ResultKind = "routes"
	ResultWeather ResultKind = "weather"
	ResultContent ResultKind = "content"
	ResultError   ResultKind = "error"
)

// ToolResult is the tagged union a tool execution produces. Exactly one
// variant is populated, selected by Kind.
//
// Its JSON form is the variant payload itself (a bare trip array, a weather
// object, {"content": ...} or {"error": ...}) so histories stay compatible
// with clients that consume the raw shapes.
type ToolResult struct {
	Kind    ResultKind
	Routes  []catalog.Trip
	Weather *Weather
	Content string
	Err     string
}

// NewRoutesResult tags a route-search outcome. A nil slice is preserved as an
// empty list so "no matches" never serializes as null.
func NewRoutesResult(trips []catalog.Trip) ToolResult {
	if trips == nil {
		trips = []catalog.Trip{}
	}
	return ToolResult{Kind: ResultRoutes, Routes: trips}
}

// NewWeatherResult tags a weather lookup outcome.
func NewWeatherResult(w Weather) ToolResult {
	return ToolResult{Kind: ResultWeather, Weather: &w}
}

// NewContentResult tags a pass-through tool outcome.
func NewContentResult(content string) ToolResult {
	return ToolResult{Kind: ResultContent, Content: content}
}

// NewErrorResult tags a captured execution failure.
func NewErrorResult(msg string) ToolResult {
	return ToolResult{Kind: ResultError, Err: msg}
}

// IsError reports whether the result is the error variant.
func (r ToolResult) IsError() bool {
	return r.Kind == ResultError
}

type contentPayload struct {
	Content string `json:"content"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// MarshalJSON encodes only the populated variant.
func (r ToolResult) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ResultRoutes:
		routes := r.Routes
		if routes == nil {
			routes = []catalog.Trip{}
		}
		return json.Marshal(routes)
	case ResultWeather:
		return json.Marshal(r.Weather)
	case ResultContent:
		return json.Marshal(contentPayload{Content: r.Content})
	case ResultError:
		return json.Marshal(errorPayload{Error: r.Err})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON re-derives the tag from the wire shape. This is the single
// place structural inference survives: persisted histories carry the raw
// variant payloads, so decoding has to sniff error key, array-ness and
// content key, in that order, before falling back to weather.
func (r *ToolResult) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = ToolResult{}
		return nil
	}

	if trimmed[0] == '[' {
		var trips []catalog.Trip
		if err := json.Unmarshal(trimmed, &trips); err != nil {
			return err
		}
		*r = NewRoutesResult(trips)
		return nil
	}

	var probe struct {
		Error   *string `json:"error"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return err
	}
	switch {
	case probe.Error != nil:
		*r = NewErrorResult(*probe.Error)
	case probe.Content != nil:
		*r = NewContentResult(*probe.Content)
	default:
		var w Weather
		if err := json.Unmarshal(trimmed, &w); err != nil {
			return err
		}
		*r = NewWeatherResult(w)
	}
	return nil
}
