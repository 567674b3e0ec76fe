package handlers

import (
	"net/http"

	"github.com/dom/chat-server/internal/service"
	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	authService *service.AuthService
}

func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// ListOthers lists every user except the one in the path, as potential receivers.
func (h *UserHandler) ListOthers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	users, err := h.authService.ListOthers(r.Context(), userID)
	if err != nil {
		internalError(w, r, "list users", err)
		return
	}

	resp := make([]UserListItem, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserListItem{User: newReceiverResponse(u)})
	}

	writeJSON(w, http.StatusOK, resp)
}
