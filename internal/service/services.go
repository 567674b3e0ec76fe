package service

import (
	"github.com/dom/chat-server/internal/config"
	"github.com/dom/chat-server/internal/repository"
	"github.com/rs/zerolog"
)

type Services struct {
	Auth *AuthService
	Chat *ChatService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Auth: NewAuthService(repos.User, cfg, log),
		Chat: NewChatService(repos.User, repos.Conversation, repos.Message, log),
	}
}
