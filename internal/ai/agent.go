package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"supplies-agent/internal/core"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// StageRunner is the black-box planner boundary: one prompt, a bounded tool
// set, a step budget in, final free text out. The orchestrator never sees
// anything of the planner beyond this contract.
type StageRunner interface {
	Run(ctx context.Context, prompt string, tools *ToolRegistry, maxSteps int) (string, error)
}

// Agent drives an OpenAI tool-calling loop against a per-stage ToolRegistry.
type Agent struct {
	client *openai.Client
	model  string
}

func NewAgent(apiKey, model string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client, model: model}
}

// Run sends the prompt and executes tool calls until the model produces final
// text or the step budget runs out. Step exhaustion and API failures surface
// as collaborator-kind errors for the orchestrator's apology boundary.
func (a *Agent) Run(ctx context.Context, prompt string, tools *ToolRegistry, maxSteps int) (string, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(a.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Tools: tools.ToOpenAITools(),
	}

	for step := 0; step < maxSteps; step++ {
		resp, err := a.client.Responses.New(ctx, params)
		if err != nil {
			return "", core.Collaboratorf("agent call failed: %v", err)
		}

		var outputs responses.ResponseNewParamsInputUnion
		calls := 0
		for _, item := range resp.Output {
			if item.Type != "function_call" {
				continue
			}
			calls++
			call := item.AsFunctionCall()
			result := a.invoke(ctx, tools, call.Name, call.Arguments)
			outputs.OfInputItemList = append(outputs.OfInputItemList,
				responses.ResponseInputItemParamOfFunctionCallOutput(call.CallID, result))
		}

		if calls == 0 {
			text := resp.OutputText()
			if text == "" {
				return "", core.Collaboratorf("agent returned empty response")
			}
			return text, nil
		}

		params = responses.ResponseNewParams{
			Model:              shared.ResponsesModel(a.model),
			PreviousResponseID: param.NewOpt(resp.ID),
			Input:              outputs,
			Tools:              tools.ToOpenAITools(),
		}
	}

	return "", core.Collaboratorf("agent exceeded %d steps without a final answer", maxSteps)
}

// invoke runs one tool call. Unknown tools and handler failures are reported
// back to the model as text so it can recover or explain, rather than
// aborting the stage.
func (a *Agent) invoke(ctx context.Context, tools *ToolRegistry, name, rawArgs string) string {
	def, ok := tools.Get(name)
	if !ok {
		return fmt.Sprintf("Error: tool %q is not available in this stage", name)
	}

	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for %s: %v", name, err)
		}
	}

	out, err := def.Handler(ctx, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return out
}
