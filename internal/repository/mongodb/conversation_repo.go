package mongodb

import (
	"context"
	"errors"

	"github.com/dom/chat-server/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var earliestFirst = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

type conversationRepository struct {
	coll *mongo.Collection
}

func NewConversationRepository(coll *mongo.Collection) *conversationRepository {
	return &conversationRepository{coll: coll}
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	a, b, ok := normalizePair(conv.Members[0], conv.Members[1])
	if !ok {
		return domain.ErrInvalidID
	}

	doc := &conversationDocument{
		ID:        bson.NewObjectID(),
		Members:   []string{a, b},
		PairKey:   domain.PairKey(a, b),
		CreatedAt: now(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}

	*conv = *doc.toDomain()
	return nil
}

func (r *conversationRepository) FindByMembers(ctx context.Context, a, b string) (*domain.Conversation, error) {
	a, b, ok := normalizePair(a, b)
	if !ok {
		return nil, domain.ErrNotFound
	}

	var doc conversationDocument
	err := r.coll.FindOne(ctx,
		bson.M{"pairKey": domain.PairKey(a, b)},
		options.FindOne().SetSort(earliestFirst),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// FindOrCreate is a single upsert on the pair key. Without a unique index on
// pairKey two upserts racing on an empty pair can both insert.
func (r *conversationRepository) FindOrCreate(ctx context.Context, a, b string) (*domain.Conversation, bool, error) {
	a, b, ok := normalizePair(a, b)
	if !ok {
		return nil, false, domain.ErrInvalidID
	}
	key := domain.PairKey(a, b)
	candidate := bson.NewObjectID()

	update := bson.M{"$setOnInsert": bson.M{
		"_id":       candidate,
		"members":   []string{a, b},
		"createdAt": now(),
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetSort(earliestFirst).
		SetReturnDocument(options.After)

	var doc conversationDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"pairKey": key}, update, opts).Decode(&doc); err != nil {
		return nil, false, err
	}

	return doc.toDomain(), doc.ID == candidate, nil
}

func (r *conversationRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	id, ok := normalizeID(userID)
	if !ok {
		return []*domain.Conversation{}, nil
	}

	cursor, err := r.coll.Find(ctx,
		bson.M{"members": id},
		options.Find().SetSort(earliestFirst),
	)
	if err != nil {
		return nil, err
	}

	var docs []conversationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	convs := make([]*domain.Conversation, 0, len(docs))
	for i := range docs {
		convs = append(convs, docs[i].toDomain())
	}
	return convs, nil
}
