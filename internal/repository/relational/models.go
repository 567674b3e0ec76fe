package relational

import (
	"time"

	"github.com/dom/chat-server/internal/domain"
)

type userRow struct {
	ID           string  `gorm:"type:uuid;primaryKey"`
	FullName     string  `gorm:"not null"`
	Email        string  `gorm:"uniqueIndex;not null"`
	PasswordHash string  `gorm:"not null"`
	Token        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		FullName:     r.FullName,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Token:        r.Token,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// pair_key is indexed but not unique: explicit creation may duplicate a pair.
type conversationRow struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	MemberA   string `gorm:"type:uuid;not null;index"`
	MemberB   string `gorm:"type:uuid;not null;index"`
	PairKey   string `gorm:"not null;index"`
	CreatedAt time.Time
}

func (conversationRow) TableName() string { return "conversations" }

func (r *conversationRow) toDomain() *domain.Conversation {
	return &domain.Conversation{
		ID:        r.ID,
		Members:   [2]string{r.MemberA, r.MemberB},
		CreatedAt: r.CreatedAt,
	}
}

// Seq carries append order; ID is the public identifier.
type messageRow struct {
	Seq            int64  `gorm:"primaryKey;autoIncrement"`
	ID             string `gorm:"type:uuid;uniqueIndex;not null"`
	ConversationID string `gorm:"type:uuid;not null;index"`
	SenderID       string `gorm:"type:uuid;not null"`
	Body           string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

func (messageRow) TableName() string { return "messages" }

func (r *messageRow) toDomain() *domain.Message {
	return &domain.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		SenderID:       r.SenderID,
		Text:           r.Body,
		CreatedAt:      r.CreatedAt,
	}
}
