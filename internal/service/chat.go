package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService mansahay-rag/internal/service ChatService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mansahay-rag/internal/contextutil"
	"mansahay-rag/internal/llm"
	"mansahay-rag/internal/tools"
)

const systemPrompt = `You are Mansahay, an empathetic, personalized mental health AI companion.

Rules:
- If the user's name is known, use it naturally.
- Do not use tools in the very first greeting unless the user explicitly asks for immediate help.
- Evaluate the user's mental state continuously and call updateRealtimeAnalysis when it shifts.
- If suicide or self-harm is implied, call triggerEmergencyProtocol.
- Suggest art, journaling, grounding or breathing activities when appropriate.
- Use searchKnowledgeBase for questions the user's uploaded documents may answer, and readResource to open a saved resource by ID.

Risk levels:
- STABLE: casual conversation.
- ELEVATED: worry, mild stress.
- DISTRESS: panic, hopelessness.
- HIGH_RISK: self-harm, suicide.`

const titlePrompt = `Summarize the following user message into a very short title (max 4 words) for a chat history list. Do not use quotes. Message: %q`

// DefaultTitle is returned when no title can be generated.
const DefaultTitle = "New Conversation"

// ChatMessage is one turn of the conversation history.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Messages   []ChatMessage
	UserName   string
	Collection string // Empty means the configured default
}

// Action is a tool call the client must carry out (open a widget, play music, ...).
type Action struct {
	Name string     `json:"name"`
	Args tools.Call `json:"args"`
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Reply   string
	Actions []Action
}

// ChatService provides chat functionality.
type ChatService interface {
	// ProcessChat runs the conversation through the model, executing server-side
	// tools and collecting client-side ones as actions.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// GenerateTitle summarises a first message into a short title.
	GenerateTitle(ctx context.Context, message string) (string, error)
}

// ChatConfig tunes the chat loop.
type ChatConfig struct {
	Collection    string
	MaxToolRounds int
	Temperature   float64
	MaxTokens     int
	Timeout       time.Duration
}

// chatService implements ChatService.
type chatService struct {
	llm       ChatCompleter
	ingest    IngestService
	search    SearchService
	resources ResourceService
	cfg       ChatConfig
}

// NewChatService creates a new ChatService.
func NewChatService(completer ChatCompleter, ingest IngestService, search SearchService, resources ResourceService, cfg ChatConfig) ChatService {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 1
	}
	return &chatService{
		llm:       completer,
		ingest:    ingest,
		search:    search,
		resources: resources,
		cfg:       cfg,
	}
}

// ProcessChat processes a chat request.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	messages, err := s.buildMessages(req)
	if err != nil {
		logger.WarnContext(ctx, "invalid chat request", "error", err)
		return ChatResponse{}, err
	}

	temperature := s.cfg.Temperature
	params := llm.ChatParams{
		Temperature: &temperature,
		MaxTokens:   s.cfg.MaxTokens,
		Tools:       tools.Definitions(),
	}

	var actions []Action
	for round := 0; ; round++ {
		// The last round offers no tools so the model has to answer in text.
		if round == s.cfg.MaxToolRounds {
			params.Tools = nil
		}

		llmCtx, cancel := withTimeout(ctx, s.cfg.Timeout)
		completion, err := s.llm.Chat(llmCtx, messages, params)
		cancel()
		if err != nil {
			logger.ErrorContext(ctx, "failed to get LLM response", "round", round, "error", err)
			return ChatResponse{}, fmt.Errorf("failed to get LLM response: %w: %w", ErrExternalService, err)
		}

		if len(completion.ToolCalls) == 0 || params.Tools == nil {
			logger.InfoContext(ctx, "chat request processed successfully",
				"messages", len(req.Messages),
				"rounds", round+1,
				"actions", len(actions),
				"reply_length", len(completion.Content),
			)
			return ChatResponse{Reply: completion.Content, Actions: actions}, nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})
		for _, tc := range completion.ToolCalls {
			result, action := s.dispatch(ctx, tc, req.Collection)
			if action != nil {
				actions = append(actions, *action)
			}
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: tc.ID,
				Content:    encodeToolResult(result),
			})
		}
	}
}

func (s *chatService) buildMessages(req ChatRequest) ([]llm.Message, error) {
	if len(req.Messages) == 0 {
		return nil, &ValidationError{Field: "messages", Message: "cannot be empty"}
	}

	prompt := systemPrompt
	if name := strings.TrimSpace(req.UserName); name != "" {
		prompt += fmt.Sprintf("\n\nThe user's name is %s.", name)
	}

	messages := make([]llm.Message, 0, len(req.Messages)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: prompt})
	for i, m := range req.Messages {
		switch m.Role {
		case llm.RoleUser, llm.RoleAssistant:
		default:
			return nil, &ValidationError{Field: fmt.Sprintf("messages[%d].role", i), Message: fmt.Sprintf("must be user or assistant, got %q", m.Role)}
		}
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	last := req.Messages[len(req.Messages)-1]
	if last.Role != llm.RoleUser || strings.TrimSpace(last.Content) == "" {
		return nil, &ValidationError{Field: "messages", Message: "must end with a non-empty user message"}
	}
	return messages, nil
}

// dispatch executes server-side tools and turns the rest into client actions.
// Every outcome, including bad arguments, is reported back to the model.
func (s *chatService) dispatch(ctx context.Context, tc llm.ToolCall, collection string) (any, *Action) {
	logger := contextutil.LoggerFromContext(ctx)

	call, err := tools.Decode(tc.Name, tc.Arguments)
	if err != nil {
		logger.WarnContext(ctx, "rejected tool call", "tool", tc.Name, "error", err)
		return toolError(err), nil
	}

	switch c := call.(type) {
	case *tools.SaveResource:
		res, err := s.ingest.IngestText(ctx, IngestTextRequest{
			Collection: collection,
			Title:      c.Title,
			Kind:       string(c.Type),
			Text:       c.Content,
		})
		if err != nil {
			logger.ErrorContext(ctx, "saveResource failed", "title", c.Title, "error", err)
			return toolError(err), nil
		}
		return map[string]any{"status": "saved", "resourceId": res.ResourceID, "chunks": res.Chunks},
			&Action{Name: c.ToolName(), Args: c}

	case *tools.ReadResource:
		detail, err := s.resources.Get(ctx, c.ResourceID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return map[string]any{"error": "Resource not found in vault."}, nil
			}
			logger.ErrorContext(ctx, "readResource failed", "resource_id", c.ResourceID, "error", err)
			return toolError(err), nil
		}
		return map[string]any{
			"title":   detail.Source,
			"type":    detail.Kind,
			"content": detail.Content,
			"date":    detail.UploadedAt.Format(time.RFC3339),
		}, nil

	case *tools.SearchKnowledgeBase:
		resp, err := s.search.Search(ctx, SearchRequest{Query: c.Query, Collection: collection})
		if err != nil {
			logger.ErrorContext(ctx, "searchKnowledgeBase failed", "error", err)
			return toolError(err), nil
		}
		results := make([]map[string]any, len(resp.Results))
		for i, r := range resp.Results {
			results[i] = map[string]any{"content": r.Content, "source": r.Source}
		}
		if len(results) == 0 {
			return map[string]any{"count": 0, "note": "No relevant documents found."}, nil
		}
		return map[string]any{"count": len(results), "results": results}, nil

	default:
		return map[string]any{"status": "success", "note": "Action processed"},
			&Action{Name: call.ToolName(), Args: call}
	}
}

func toolError(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

func encodeToolResult(result any) string {
	b, err := json.Marshal(map[string]any{"result": result})
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(b)
}

// GenerateTitle returns a title of at most four words, or DefaultTitle when
// the model fails or answers with nothing usable.
func (s *chatService) GenerateTitle(ctx context.Context, message string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(message) == "" {
		return "", &ValidationError{Field: "message", Message: "cannot be empty"}
	}

	llmCtx, cancel := withTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	completion, err := s.llm.Chat(llmCtx, []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(titlePrompt, message)},
	}, llm.ChatParams{MaxTokens: 20})
	if err != nil {
		logger.WarnContext(ctx, "title generation failed, using default", "error", err)
		return DefaultTitle, nil
	}

	title := cleanTitle(completion.Content)
	if title == "" {
		return DefaultTitle, nil
	}
	return title, nil
}

// cleanTitle keeps the first line, strips quotes and trailing punctuation and
// caps the result at four words.
func cleanTitle(raw string) string {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.Trim(line, "\"'`*“”‘’ ")

	words := strings.Fields(line)
	if len(words) > 4 {
		words = words[:4]
	}
	title := strings.Join(words, " ")
	return strings.TrimRight(title, ".,;:!?\"'”’")
}
