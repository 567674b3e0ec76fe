// Package mongodb stores users, conversations and messages in MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/chat-server/internal/domain"
	"github.com/dom/chat-server/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection         = "users"
	conversationsCollection = "conversation"
	messagesCollection      = "messages"
)

// NewClient connects with the stable v1 server API and verifies the connection.
func NewClient(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on and backfills the
// pair key on conversations stored without one. The unique email index turns
// concurrent duplicate registrations into a duplicate-key error.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := backfillPairKeys(ctx, db.Collection(conversationsCollection)); err != nil {
		return fmt.Errorf("conversation pair keys: %w", err)
	}

	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	_, err = db.Collection(conversationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "pairKey", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "members", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("conversation indexes: %w", err)
	}

	_, err = db.Collection(messagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("messages index: %w", err)
	}

	return nil
}

func NewRepositories(db *mongo.Database) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(db.Collection(usersCollection)),
		Conversation: NewConversationRepository(db.Collection(conversationsCollection)),
		Message:      NewMessageRepository(db.Collection(messagesCollection)),
	}
}

// backfillPairKeys sets pairKey on conversations that only carry members.
// Documents whose members are not two ObjectID hex strings are left alone.
func backfillPairKeys(ctx context.Context, coll *mongo.Collection) error {
	cursor, err := coll.Find(ctx,
		bson.M{"pairKey": bson.M{"$exists": false}},
		options.Find().SetProjection(bson.M{"members": 1}),
	)
	if err != nil {
		return err
	}

	var docs []conversationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return err
	}

	for _, doc := range docs {
		if len(doc.Members) != 2 {
			continue
		}
		a, b, ok := normalizePair(doc.Members[0], doc.Members[1])
		if !ok {
			continue
		}
		_, err := coll.UpdateOne(ctx,
			bson.M{"_id": doc.ID, "pairKey": bson.M{"$exists": false}},
			bson.M{"$set": bson.M{"members": []string{a, b}, "pairKey": domain.PairKey(a, b)}},
		)
		if err != nil {
			return err
		}
	}
	return nil
}
