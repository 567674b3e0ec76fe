package handlers

import "github.com/dom/chat-server/internal/domain"

type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type LoginResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type ConversationResponse struct {
	ID      string    `json:"id"`
	Members [2]string `json:"members"`
}

// ReceiverResponse describes another user from the caller's point of view.
type ReceiverResponse struct {
	ReceiverID string `json:"receiverId"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
}

type ConversationListItem struct {
	User           ReceiverResponse `json:"user"`
	ConversationID string           `json:"conversationId"`
}

type UserListItem struct {
	User ReceiverResponse `json:"user"`
}

type MessageResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Message        string `json:"message"`
}

type MessageListItem struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message"`
}

func newUserResponse(u domain.UserSummary) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
	}
}

func newReceiverResponse(u domain.UserSummary) ReceiverResponse {
	return ReceiverResponse{
		ReceiverID: u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
	}
}
