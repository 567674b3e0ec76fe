package relational

import (
	"context"

	"github.com/dom/chat-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *messageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	conversationID, senderID, ok := normalizePair(msg.ConversationID, msg.SenderID)
	if !ok {
		return domain.ErrInvalidID
	}

	row := &messageRow{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           msg.Text,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}

	*msg = *row.toDomain()
	return nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	id, ok := normalizeID(conversationID)
	if !ok {
		return []*domain.Message{}, nil
	}

	var rows []messageRow
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", id).
		Order("seq").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	msgs := make([]*domain.Message, 0, len(rows))
	for i := range rows {
		msgs = append(msgs, rows[i].toDomain())
	}
	return msgs, nil
}
