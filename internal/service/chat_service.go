package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dom/chat-server/internal/domain"
	"github.com/dom/chat-server/internal/metrics"
	"github.com/dom/chat-server/internal/repository"
	"github.com/rs/zerolog"
)

var ErrInvalidID = errors.New("invalid id")

type ChatService struct {
	userRepo         repository.UserRepository
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	log              zerolog.Logger
}

func NewChatService(
	userRepo repository.UserRepository,
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	log zerolog.Logger,
) *ChatService {
	return &ChatService{
		userRepo:         userRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		log:              log.With().Str("service", "chat").Logger(),
	}
}

type SendMessageInput struct {
	ConversationID string
	SenderID       string
	ReceiverID     string
	Text           string
}

type GetMessagesInput struct {
	ConversationID string
	SenderID       string
	ReceiverID     string
}

// CreateConversation always inserts a new conversation, even if the pair already has one.
func (s *ChatService) CreateConversation(ctx context.Context, senderID, receiverID string) (*domain.Conversation, error) {
	if isBlank(senderID) || isBlank(receiverID) {
		return nil, ErrMissingFields
	}

	conv := &domain.Conversation{Members: [2]string{senderID, receiverID}}
	if err := s.conversationRepo.Create(ctx, conv); err != nil {
		return nil, translate(err)
	}

	metrics.ConversationsCreated.WithLabelValues("explicit").Inc()
	return conv, nil
}

// FindConversation returns the conversation between a and b in either order, or nil.
func (s *ChatService) FindConversation(ctx context.Context, a, b string) (*domain.Conversation, error) {
	conv, err := s.conversationRepo.FindByMembers(ctx, a, b)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return conv, nil
}

// ListConversations joins each of the user's conversations with the other member's
// profile. Conversations whose counterpart no longer resolves are skipped.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]domain.ConversationView, error) {
	convs, err := s.conversationRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	views := make([]domain.ConversationView, 0, len(convs))
	for _, conv := range convs {
		otherID, ok := conv.Counterpart(userID)
		if !ok {
			continue
		}

		other, err := s.userRepo.GetByID(ctx, otherID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.log.Warn().
					Str("conversation_id", conv.ID).
					Str("user_id", otherID).
					Msg("skipping conversation with unknown member")
				continue
			}
			return nil, fmt.Errorf("resolve member: %w", err)
		}

		views = append(views, domain.ConversationView{
			ConversationID: conv.ID,
			Counterpart:    other.Summary(),
		})
	}

	return views, nil
}

// SendMessage appends a message. With the "new" sentinel the sender/receiver
// conversation is found or created first; a concrete conversation id is used as
// given, without a membership check.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error) {
	if isBlank(input.SenderID) || input.Text == "" || isBlank(input.ConversationID) {
		return nil, ErrMissingFields
	}

	if _, err := s.userRepo.GetByID(ctx, input.SenderID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve sender: %w", err)
	}

	conversationID := input.ConversationID
	if domain.IsNewConversation(conversationID) {
		if isBlank(input.ReceiverID) {
			return nil, ErrMissingFields
		}
		if _, err := s.userRepo.GetByID(ctx, input.ReceiverID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("resolve receiver: %w", err)
		}

		conv, created, err := s.conversationRepo.FindOrCreate(ctx, input.SenderID, input.ReceiverID)
		if err != nil {
			return nil, translate(err)
		}
		if created {
			metrics.ConversationsCreated.WithLabelValues("message").Inc()
			s.log.Debug().Str("conversation_id", conv.ID).Msg("conversation created for first message")
		}
		conversationID = conv.ID
	}

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderID:       input.SenderID,
		Text:           input.Text,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, translate(err)
	}

	metrics.MessagesSent.Inc()
	return msg, nil
}

// GetMessages returns the thread with author profiles, in append order. With the
// "new" sentinel the conversation is looked up by its members; none means no messages.
func (s *ChatService) GetMessages(ctx context.Context, input GetMessagesInput) ([]domain.MessageView, error) {
	if isBlank(input.ConversationID) {
		return nil, ErrMissingFields
	}

	conversationID := input.ConversationID
	if domain.IsNewConversation(conversationID) {
		if isBlank(input.SenderID) || isBlank(input.ReceiverID) {
			return nil, ErrMissingFields
		}
		conv, err := s.FindConversation(ctx, input.SenderID, input.ReceiverID)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return []domain.MessageView{}, nil
		}
		conversationID = conv.ID
	}

	msgs, err := s.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	authors := make(map[string]domain.UserSummary)
	views := make([]domain.MessageView, 0, len(msgs))
	for _, msg := range msgs {
		author, ok := authors[msg.SenderID]
		if !ok {
			user, err := s.userRepo.GetByID(ctx, msg.SenderID)
			if err != nil {
				return nil, fmt.Errorf("resolve author of message %s: %w", msg.ID, err)
			}
			author = user.Summary()
			authors[msg.SenderID] = author
		}

		views = append(views, domain.MessageView{
			Author: author,
			Text:   msg.Text,
		})
	}

	return views, nil
}

func translate(err error) error {
	if errors.Is(err, domain.ErrInvalidID) {
		return ErrInvalidID
	}
	return err
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
