package mongodb

import (
	"context"

	"github.com/dom/chat-server/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type messageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(coll *mongo.Collection) *messageRepository {
	return &messageRepository{coll: coll}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	conversationID, senderID, ok := normalizePair(msg.ConversationID, msg.SenderID)
	if !ok {
		return domain.ErrInvalidID
	}

	doc := &messageDocument{
		ID:             bson.NewObjectID(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Message:        msg.Text,
		CreatedAt:      now(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}

	*msg = *doc.toDomain()
	return nil
}

// ListByConversation sorts by creation time, then by ObjectID, whose counter
// orders inserts made by one process within the same millisecond.
func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	id, ok := normalizeID(conversationID)
	if !ok {
		return []*domain.Message{}, nil
	}

	cursor, err := r.coll.Find(ctx,
		bson.M{"conversationId": id},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	var docs []messageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	msgs := make([]*domain.Message, 0, len(docs))
	for i := range docs {
		msgs = append(msgs, docs[i].toDomain())
	}
	return msgs, nil
}
