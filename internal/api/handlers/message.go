package handlers

import (
	"errors"
	"net/http"

	"github.com/dom/chat-server/internal/service"
	"github.com/go-chi/chi/v5"
)

type MessageHandler struct {
	chatService *service.ChatService
}

func NewMessageHandler(chatService *service.ChatService) *MessageHandler {
	return &MessageHandler{chatService: chatService}
}

// SendMessageRequest takes either a concrete conversationId or "new" plus receiverId.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
	SenderID       string `json:"senderId" validate:"required"`
	ReceiverID     string `json:"receiverId" validate:"required_if=ConversationID new"`
	Message        string `json:"message" validate:"required"`
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), service.SendMessageInput{
		ConversationID: req.ConversationID,
		SenderID:       req.SenderID,
		ReceiverID:     req.ReceiverID,
		Text:           req.Message,
	})
	if err != nil {
		writeChatError(w, r, "send message", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Message:        msg.Text,
	})
}

// List returns a conversation's messages. For the "new" conversation id the
// senderId and receiverId query parameters identify the conversation.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	views, err := h.chatService.GetMessages(r.Context(), service.GetMessagesInput{
		ConversationID: chi.URLParam(r, "conversationId"),
		SenderID:       query.Get("senderId"),
		ReceiverID:     query.Get("receiverId"),
	})
	if err != nil {
		writeChatError(w, r, "list messages", err)
		return
	}

	resp := make([]MessageListItem, 0, len(views))
	for _, v := range views {
		resp = append(resp, MessageListItem{
			User:    newUserResponse(v.Author),
			Message: v.Text,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeChatError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		http.Error(w, msgMissingFields, http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidID):
		http.Error(w, msgInvalidID, http.StatusBadRequest)
	case errors.Is(err, service.ErrUserNotFound):
		http.Error(w, msgUserNotFound, http.StatusBadRequest)
	default:
		internalError(w, r, op, err)
	}
}
