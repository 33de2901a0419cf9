package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"golang.org/x/time/rate"
)

// Client is a client for OpenAI-compatible chat completion APIs.
type Client struct {
	Model       string
	Temperature float64
	MaxTokens   int
	api         openai.Client
	limiter     *rate.Limiter
}

// NewClient creates a new LLM client.
func NewClient(baseURL, apiKey, model string, opts ...Option) *Client {
	o := buildOptions(opts)
	return &Client{
		Model:       model,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
		api:         newAPIClient(baseURL, apiKey, o),
		limiter:     o.limiter,
	}
}

// Chat sends a chat completion request and returns the first choice.
func (c *Client) Chat(ctx context.Context, messages []Message, params ChatParams) (*Completion, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages")
	}

	if err := wait(ctx, c.limiter); err != nil {
		return nil, err
	}

	req, err := c.buildRequest(messages, params)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.Chat.Completions.New(ctx, req)
	if err != nil {
		return nil, wrapAPIError("chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	msg := resp.Choices[0].Message
	completion := &Completion{Content: msg.Content}
	for _, call := range msg.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return completion, nil
}

func (c *Client) buildRequest(messages []Message, params ChatParams) (openai.ChatCompletionNewParams, error) {
	model := params.Model
	if model == "" {
		model = c.Model
	}
	temperature := c.Temperature
	if params.Temperature != nil {
		temperature = *params.Temperature
	}
	maxTokens := c.MaxTokens
	if params.MaxTokens > 0 {
		maxTokens = params.MaxTokens
	}

	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for i, m := range messages {
		param, err := toMessageParam(m)
		if err != nil {
			return openai.ChatCompletionNewParams{}, fmt.Errorf("message %d: %w", i, err)
		}
		converted = append(converted, param)
	}

	req := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    converted,
		Temperature: openai.Float(temperature),
	}
	if maxTokens > 0 {
		req.MaxCompletionTokens = openai.Int(int64(maxTokens))
	}
	for _, tool := range params.Tools {
		req.Tools = append(req.Tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  openai.FunctionParameters(tool.Parameters),
			},
		})
	}
	return req, nil
}

func toMessageParam(m Message) (openai.ChatCompletionMessageParamUnion, error) {
	switch m.Role {
	case RoleSystem:
		return openai.SystemMessage(m.Content), nil
	case RoleUser:
		return openai.UserMessage(m.Content), nil
	case RoleAssistant:
		if len(m.ToolCalls) == 0 {
			return openai.AssistantMessage(m.Content), nil
		}
		assistant := openai.ChatCompletionAssistantMessageParam{}
		if m.Content != "" {
			assistant.Content.OfString = openai.String(m.Content)
		}
		for _, call := range m.ToolCalls {
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}, nil
	case RoleTool:
		if m.ToolCallID == "" {
			return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("tool message without tool_call_id")
		}
		return openai.ToolMessage(m.Content, m.ToolCallID), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unknown role %q", m.Role)
	}
}
