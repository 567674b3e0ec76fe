package mongodb

import (
	"strings"
	"time"

	"github.com/dom/chat-server/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type userDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	FullName  string        `bson:"fullName"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	Token     *string       `bson:"token,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		FullName:     d.FullName,
		Email:        d.Email,
		PasswordHash: d.Password,
		Token:        d.Token,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// Members hold user ids as hex strings, in creation order.
type conversationDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Members   []string      `bson:"members"`
	PairKey   string        `bson:"pairKey"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d *conversationDocument) toDomain() *domain.Conversation {
	conv := &domain.Conversation{
		ID:        d.ID.Hex(),
		CreatedAt: d.CreatedAt,
	}
	copy(conv.Members[:], d.Members)
	return conv
}

type messageDocument struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	ConversationID string        `bson:"conversationId"`
	SenderID       string        `bson:"senderId"`
	Message        string        `bson:"message"`
	CreatedAt      time.Time     `bson:"createdAt"`
}

func (d *messageDocument) toDomain() *domain.Message {
	return &domain.Message{
		ID:             d.ID.Hex(),
		ConversationID: d.ConversationID,
		SenderID:       d.SenderID,
		Text:           d.Message,
		CreatedAt:      d.CreatedAt,
	}
}

func parseID(id string) (bson.ObjectID, bool) {
	oid, err := bson.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return bson.NilObjectID, false
	}
	return oid, true
}

// normalizeID returns the canonical lowercase hex form of an ObjectID string.
func normalizeID(id string) (string, bool) {
	oid, ok := parseID(id)
	if !ok {
		return "", false
	}
	return oid.Hex(), true
}

func normalizePair(a, b string) (string, string, bool) {
	na, okA := normalizeID(a)
	nb, okB := normalizeID(b)
	return na, nb, okA && okB
}

// now truncates to the millisecond precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
