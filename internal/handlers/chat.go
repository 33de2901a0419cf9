package handlers

import (
	"net/http"

	"mansahay-rag/internal/contextutil"
	"mansahay-rag/internal/service"
	"mansahay-rag/internal/tools"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// ChatMessage is one turn of the conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the HTTP request payload for chat.
//
// swagger:model ChatRequest
type ChatRequest struct {
	Messages   []ChatMessage `json:"messages"`
	UserName   string        `json:"userName,omitempty"`
	Collection string        `json:"collection,omitempty"`
}

// ActionResponse is a tool call the client must carry out.
type ActionResponse struct {
	Name string     `json:"name"`
	Args tools.Call `json:"args"`
}

// ChatResponse represents the HTTP response payload for chat.
//
// swagger:model ChatResponse
type ChatResponse struct {
	Reply   string           `json:"reply"`
	Actions []ActionResponse `json:"actions"`
}

// TitleRequest carries the first message of a conversation.
//
// swagger:model TitleRequest
type TitleRequest struct {
	Message string `json:"message"`
}

// TitleResponse carries the generated conversation title.
//
// swagger:model TitleResponse
type TitleResponse struct {
	Title string `json:"title"`
}

// ServeHTTP handles HTTP requests for chat.
//
// swagger:route POST /chat chat
//
// Send the conversation so far and get the companion's reply plus client actions.
//
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/ChatResponse"
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Convert HTTP request to service request
	svcReq := service.ChatRequest{
		Messages:   make([]service.ChatMessage, len(req.Messages)),
		UserName:   req.UserName,
		Collection: req.Collection,
	}
	for i, m := range req.Messages {
		svcReq.Messages[i] = service.ChatMessage{Role: m.Role, Content: m.Content}
	}

	svcResp, err := h.chatService.ProcessChat(ctx, svcReq)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to process chat request")
		return
	}

	// Convert service response to HTTP response
	resp := ChatResponse{
		Reply:   svcResp.Reply,
		Actions: make([]ActionResponse, len(svcResp.Actions)),
	}
	for i, a := range svcResp.Actions {
		resp.Actions[i] = ActionResponse{Name: a.Name, Args: a.Args}
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

// Title handles POST /chat/title.
func (h *ChatHandler) Title(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title, err := h.chatService.GenerateTitle(ctx, req.Message)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to generate title")
		return
	}

	writeJSON(ctx, w, http.StatusOK, TitleResponse{Title: title})
}
