// Package tools declares the tool catalog offered to the completion provider
// and executes requested calls, normalizing every outcome into the tagged
// result union. Execute never returns an error: failures are captured into
// the call's result so sibling calls in the same turn are unaffected.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/vietride/server/internal/catalog"
	"github.com/vietride/server/internal/chat/model"
	logx "github.com/vietride/server/pkg/logger"
)

const (
	ToolSearchRoutes = "search_routes"
	ToolGetWeather   = "get_weather"
)

const dateLayout = "2006-01-02"

var weatherConditions = []string{"Sunny", "Cloudy", "Rainy", "Snowy"}

// Registry holds the built-in tools plus any externally contributed
// pass-through tools and dispatches calls to them.
type Registry struct {
	external map[string]tool.InvokableTool
	order    []string
	now      func() time.Time
	intN     func(n int) int
}

// NewRegistry builds a registry with the built-in travel tools and the given
// pass-through tools. Pass-through results are wrapped as generic content.
func NewRegistry(external ...tool.InvokableTool) *Registry {
	r := &Registry{
		external: make(map[string]tool.InvokableTool, len(external)),
		now:      time.Now,
		intN:     rand.IntN,
	}
	ctx := context.Background()
	for _, t := range external {
		info, err := t.Info(ctx)
		if err != nil || info == nil {
			logx.Warn().Err(err).Msg("skipping external tool with unavailable info")
			continue
		}
		r.external[info.Name] = t
		r.order = append(r.order, info.Name)
	}
	return r
}

// Definitions returns the tool catalog sent to the completion provider:
// built-ins first, then pass-through tools in registration order.
func (r *Registry) Definitions(ctx context.Context) []*schema.ToolInfo {
	defs := []*schema.ToolInfo{
		{
			Name: ToolSearchRoutes,
			Desc: "Search for bus or car tickets between two locations in Vietnam on a specific date.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"origin": {
					Type:     "string",
					Desc:     "The departure city, e.g., Hanoi",
					Required: true,
				},
				"destination": {
					Type:     "string",
					Desc:     "The arrival city, e.g., Sapa",
					Required: true,
				},
				"date": {
					Type: "string",
					Desc: "The date of travel in YYYY-MM-DD format. If not provided, defaults to today.",
				},
			}),
		},
		{
			Name: ToolGetWeather,
			Desc: "Get current weather information for a location",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"location": {
					Type:     "string",
					Desc:     "The city or location name",
					Required: true,
				},
			}),
		},
	}

	for _, name := range r.order {
		info, err := r.external[name].Info(ctx)
		if err != nil {
			logx.Warn().Err(err).Str("tool", name).Msg("external tool info unavailable")
			continue
		}
		defs = append(defs, info)
	}
	return defs
}

// Execute runs one requested tool call. The raw argument string comes straight
// from the provider; a parse failure surfaces as an error result attributed to
// this call only.
func (r *Registry) Execute(ctx context.Context, id, name, rawArgs string) model.ToolCall {
	call := model.ToolCall{ID: id, Name: name, Arguments: map[string]any{}}

	if strings.TrimSpace(rawArgs) != "" {
		if err := json.Unmarshal([]byte(rawArgs), &call.Arguments); err != nil {
			logx.Error().Err(err).Str("tool", name).Msg("tool arguments are not valid JSON")
			call.Arguments = map[string]any{}
			call.Result = model.NewErrorResult(fmt.Sprintf("Failed to execute %s: %v", name, err))
			return call
		}
	}

	switch name {
	case ToolSearchRoutes:
		call.Result = r.searchRoutes(call.Arguments)
	case ToolGetWeather:
		call.Result = r.getWeather(call.Arguments)
	default:
		call.Result = r.passthrough(ctx, name, rawArgs)
	}
	return call
}

func (r *Registry) searchRoutes(args map[string]any) model.ToolResult {
	origin := stringArg(args, "origin")
	destination := stringArg(args, "destination")
	date := r.resolveDate(stringArg(args, "date"))
	args["date"] = date

	logx.Debug().
		Str("origin", origin).
		Str("destination", destination).
		Str("date", date).
		Msg("searching routes")

	// Date is resolved for the conversation but never filters the catalog:
	// the mock dataset has no per-date inventory.
	return model.NewRoutesResult(catalog.Search(origin, destination))
}

// resolveDate canonicalizes the requested travel date: empty means today,
// "tomorrow" means today+1, anything else is parsed as a calendar date and
// falls back to today when unparsable.
func (r *Registry) resolveDate(date string) string {
	today := r.now()
	switch {
	case date == "":
		return today.Format(dateLayout)
	case strings.EqualFold(date, "tomorrow"):
		return today.AddDate(0, 0, 1).Format(dateLayout)
	}
	if parsed, err := time.Parse(dateLayout, date); err == nil {
		return parsed.Format(dateLayout)
	}
	if parsed, err := time.Parse(time.RFC3339, date); err == nil {
		return parsed.Format(dateLayout)
	}
	logx.Warn().Str("date", date).Msg("unparsable travel date, defaulting to today")
	return today.Format(dateLayout)
}

func (r *Registry) getWeather(args map[string]any) model.ToolResult {
	return model.NewWeatherResult(model.Weather{
		Location:    stringArg(args, "location"),
		Temperature: r.intN(40) - 10,
		Condition:   weatherConditions[r.intN(len(weatherConditions))],
		Humidity:    r.intN(100),
	})
}

func (r *Registry) passthrough(ctx context.Context, name, rawArgs string) model.ToolResult {
	t, ok := r.external[name]
	if !ok {
		return model.NewErrorResult(fmt.Sprintf("Failed to execute %s: unknown tool", name))
	}
	out, err := t.InvokableRun(ctx, rawArgs)
	if err != nil {
		logx.Error().Err(err).Str("tool", name).Msg("external tool execution failed")
		return model.NewErrorResult(fmt.Sprintf("Failed to execute %s: %v", name, err))
	}
	return model.NewContentResult(out)
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
