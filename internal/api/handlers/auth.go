package handlers

import (
	"errors"
	"net/http"

	"github.com/dom/chat-server/internal/api/middleware"
	"github.com/dom/chat-server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			http.Error(w, msgMissingFields, http.StatusBadRequest)
		case errors.Is(err, service.ErrEmailExists):
			http.Error(w, "User already exists", http.StatusBadRequest)
		default:
			internalError(w, r, "register", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user.Summary()))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			http.Error(w, msgMissingFields, http.StatusBadRequest)
		case errors.Is(err, service.ErrInvalidCredentials):
			http.Error(w, "User email or password is incorrect", http.StatusBadRequest)
		default:
			internalError(w, r, "login", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		User:  newUserResponse(result.User.Summary()),
		Token: result.Token,
	})
}

// Me returns the user the bearer token was issued to.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, msgUserNotFound, http.StatusNotFound)
			return
		}
		internalError(w, r, "me", err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user.Summary()))
}
