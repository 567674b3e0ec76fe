package repository

import (
	"context"

	"github.com/dom/chat-server/internal/domain"
)

// Lookups return domain.ErrNotFound when nothing matches. Malformed ids are
// normalized by each backend: lookups treat them as not found, writes fail
// with domain.ErrInvalidID.

type UserRepository interface {
	// Create assigns the user's ID. Returns domain.ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateToken(ctx context.Context, id string, token string) error
	ListExcluding(ctx context.Context, id string) ([]*domain.User, error)
}

type ConversationRepository interface {
	// Create always inserts, even if the pair already has a conversation.
	Create(ctx context.Context, conv *domain.Conversation) error
	FindByMembers(ctx context.Context, a, b string) (*domain.Conversation, error)
	// FindOrCreate returns the pair's earliest conversation, creating one if none exists.
	// The bool reports whether a conversation was created.
	FindOrCreate(ctx context.Context, a, b string) (*domain.Conversation, bool, error)
	ListByMember(ctx context.Context, userID string) ([]*domain.Conversation, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// ListByConversation returns messages in the order they were appended.
	ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error)
}

type Repositories struct {
	User         UserRepository
	Conversation ConversationRepository
	Message      MessageRepository
}
