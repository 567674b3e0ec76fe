package handlers

import (
	"errors"
	"net/http"

	"github.com/dom/chat-server/internal/service"
	"github.com/go-chi/chi/v5"
)

type ConversationHandler struct {
	chatService *service.ChatService
}

func NewConversationHandler(chatService *service.ChatService) *ConversationHandler {
	return &ConversationHandler{chatService: chatService}
}

type CreateConversationRequest struct {
	SenderID   string `json:"senderId" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
}

func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	conv, err := h.chatService.CreateConversation(r.Context(), req.SenderID, req.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			http.Error(w, msgMissingFields, http.StatusBadRequest)
		case errors.Is(err, service.ErrInvalidID):
			http.Error(w, msgInvalidID, http.StatusBadRequest)
		default:
			internalError(w, r, "create conversation", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, ConversationResponse{
		ID:      conv.ID,
		Members: conv.Members,
	})
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	views, err := h.chatService.ListConversations(r.Context(), userID)
	if err != nil {
		internalError(w, r, "list conversations", err)
		return
	}

	resp := make([]ConversationListItem, 0, len(views))
	for _, v := range views {
		resp = append(resp, ConversationListItem{
			User:           newReceiverResponse(v.Counterpart),
			ConversationID: v.ConversationID,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
