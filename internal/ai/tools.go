package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// ToolHandler executes one tool call. It receives parsed JSON parameters and
// returns the text shown to the agent. Business-rule failures are part of the
// normal return text; an error means the tool itself broke.
type ToolHandler func(ctx context.Context, params map[string]any) (string, error)

// ToolDefinition describes a single tool in a registry.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any // JSON Schema for the tool's input parameters
	Handler     ToolHandler
}

// ToolRegistry holds the tools allowed for one agent call. Each workflow
// stage gets its own registry — the partition is an authorization boundary:
// a stage can only reach the ledger through the tools registered for it.
type ToolRegistry struct {
	tools []ToolDefinition
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(t ToolDefinition) {
	r.tools = append(r.tools, t)
}

// Get returns the ToolDefinition for a given tool name, and whether it was found.
func (r *ToolRegistry) Get(name string) (ToolDefinition, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDefinition{}, false
}

// All returns all registered tools.
func (r *ToolRegistry) All() []ToolDefinition {
	return r.tools
}

// ToOpenAITools converts the registry to the OpenAI Responses API tool format.
func (r *ToolRegistry) ToOpenAITools() []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}

// SchemaFor generates a JSON Schema map from a Go args struct, so tool input
// contracts live on the struct tags rather than hand-written schema literals.
func SchemaFor(v any) map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(v)

	raw, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("tool schema marshal failed: %v", err))
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("tool schema unmarshal failed: %v", err))
	}
	return out
}
