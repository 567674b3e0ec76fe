// Package repotest holds the behaviour every repository backend must share.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dom/chat-server/internal/domain"
	"github.com/dom/chat-server/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Suite struct {
	Repos *repository.Repositories
	// UnknownID is well-formed for the backend but matches no record.
	UnknownID string
	// AtomicFindOrCreate enables the concurrent find-or-create check.
	AtomicFindOrCreate bool
}

func Run(t *testing.T, s Suite) {
	t.Run("users", s.testUsers)
	t.Run("conversations", s.testConversations)
	t.Run("messages", s.testMessages)
	t.Run("concurrent duplicate email", s.testConcurrentDuplicateEmail)
	if s.AtomicFindOrCreate {
		t.Run("concurrent find or create", s.testConcurrentFindOrCreate)
	}
}

func (s Suite) newUser(t *testing.T) *domain.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := &domain.User{
		FullName:     "User " + suffix,
		Email:        fmt.Sprintf("%s@example.com", suffix),
		PasswordHash: "hash",
	}
	require.NoError(t, s.Repos.User.Create(context.Background(), user))
	return user
}

func (s Suite) testUsers(t *testing.T) {
	ctx := context.Background()
	users := s.Repos.User

	alice := s.newUser(t)
	require.NotEmpty(t, alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	t.Run("duplicate email", func(t *testing.T) {
		dup := &domain.User{FullName: "Other", Email: alice.Email, PasswordHash: "hash"}
		assert.ErrorIs(t, users.Create(ctx, dup), domain.ErrDuplicateEmail)
	})

	t.Run("get by id and email", func(t *testing.T) {
		byID, err := users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.Email, byID.Email)
		assert.Equal(t, alice.FullName, byID.FullName)
		assert.Equal(t, "hash", byID.PasswordHash)
		assert.Nil(t, byID.Token)

		byEmail, err := users.GetByEmail(ctx, alice.Email)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byEmail.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := users.GetByID(ctx, s.UnknownID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = users.GetByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = users.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("update token", func(t *testing.T) {
		require.NoError(t, users.UpdateToken(ctx, alice.ID, "token-1"))
		require.NoError(t, users.UpdateToken(ctx, alice.ID, "token-2"))

		got, err := users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Token)
		assert.Equal(t, "token-2", *got.Token)

		assert.ErrorIs(t, users.UpdateToken(ctx, s.UnknownID, "x"), domain.ErrNotFound)
	})

	t.Run("list excluding", func(t *testing.T) {
		bob := s.newUser(t)

		others, err := users.ListExcluding(ctx, alice.ID)
		require.NoError(t, err)
		ids := userIDs(others)
		assert.NotContains(t, ids, alice.ID)
		assert.Contains(t, ids, bob.ID)

		everyone, err := users.ListExcluding(ctx, "not-an-id")
		require.NoError(t, err)
		ids = userIDs(everyone)
		assert.Contains(t, ids, alice.ID)
		assert.Contains(t, ids, bob.ID)
	})
}

func (s Suite) testConversations(t *testing.T) {
	ctx := context.Background()
	convs := s.Repos.Conversation

	t.Run("find by members is symmetric", func(t *testing.T) {
		a, b := s.newUser(t), s.newUser(t)

		conv := &domain.Conversation{Members: [2]string{a.ID, b.ID}}
		require.NoError(t, convs.Create(ctx, conv))
		assert.NotEmpty(t, conv.ID)
		assert.Equal(t, [2]string{a.ID, b.ID}, conv.Members)

		ab, err := convs.FindByMembers(ctx, a.ID, b.ID)
		require.NoError(t, err)
		ba, err := convs.FindByMembers(ctx, b.ID, a.ID)
		require.NoError(t, err)
		assert.Equal(t, conv.ID, ab.ID)
		assert.Equal(t, conv.ID, ba.ID)
	})

	t.Run("find by members without conversation", func(t *testing.T) {
		a, b := s.newUser(t), s.newUser(t)

		_, err := convs.FindByMembers(ctx, a.ID, b.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = convs.FindByMembers(ctx, "bad", b.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("create allows duplicates and find returns the earliest", func(t *testing.T) {
		a, b := s.newUser(t), s.newUser(t)

		first := &domain.Conversation{Members: [2]string{a.ID, b.ID}}
		second := &domain.Conversation{Members: [2]string{b.ID, a.ID}}
		require.NoError(t, convs.Create(ctx, first))
		require.NoError(t, convs.Create(ctx, second))
		assert.NotEqual(t, first.ID, second.ID)

		found, err := convs.FindByMembers(ctx, b.ID, a.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)

		listed, err := convs.ListByMember(ctx, a.ID)
		require.NoError(t, err)
		assert.Len(t, listed, 2)
	})

	t.Run("create rejects malformed ids", func(t *testing.T) {
		a := s.newUser(t)
		err := convs.Create(ctx, &domain.Conversation{Members: [2]string{a.ID, "bad"}})
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("find or create reuses the pair's conversation", func(t *testing.T) {
		a, b := s.newUser(t), s.newUser(t)

		conv, created, err := convs.FindOrCreate(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, [2]string{a.ID, b.ID}, conv.Members)

		again, created, err := convs.FindOrCreate(ctx, b.ID, a.ID)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, conv.ID, again.ID)

		listed, err := convs.ListByMember(ctx, b.ID)
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})

	t.Run("find or create picks up an explicit conversation", func(t *testing.T) {
		a, b := s.newUser(t), s.newUser(t)

		explicit := &domain.Conversation{Members: [2]string{a.ID, b.ID}}
		require.NoError(t, convs.Create(ctx, explicit))

		conv, created, err := convs.FindOrCreate(ctx, b.ID, a.ID)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, explicit.ID, conv.ID)
	})

	t.Run("list by member", func(t *testing.T) {
		a, b, c := s.newUser(t), s.newUser(t), s.newUser(t)

		ab := &domain.Conversation{Members: [2]string{a.ID, b.ID}}
		ca := &domain.Conversation{Members: [2]string{c.ID, a.ID}}
		bc := &domain.Conversation{Members: [2]string{b.ID, c.ID}}
		for _, conv := range []*domain.Conversation{ab, ca, bc} {
			require.NoError(t, convs.Create(ctx, conv))
		}

		listed, err := convs.ListByMember(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, ab.ID, listed[0].ID)
		assert.Equal(t, ca.ID, listed[1].ID)

		none, err := convs.ListByMember(ctx, "bad")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func (s Suite) testMessages(t *testing.T) {
	ctx := context.Background()
	a, b := s.newUser(t), s.newUser(t)

	conv, _, err := s.Repos.Conversation.FindOrCreate(ctx, a.ID, b.ID)
	require.NoError(t, err)

	texts := []string{"hi", "hello", "how are you", "fine"}
	for i, text := range texts {
		sender := a.ID
		if i%2 == 1 {
			sender = b.ID
		}
		msg := &domain.Message{ConversationID: conv.ID, SenderID: sender, Text: text}
		require.NoError(t, s.Repos.Message.Create(ctx, msg))
		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, text, msg.Text)
	}

	t.Run("append order", func(t *testing.T) {
		msgs, err := s.Repos.Message.ListByConversation(ctx, conv.ID)
		require.NoError(t, err)
		require.Len(t, msgs, len(texts))
		for i, msg := range msgs {
			assert.Equal(t, texts[i], msg.Text)
			assert.Equal(t, conv.ID, msg.ConversationID)
		}
		assert.Equal(t, a.ID, msgs[0].SenderID)
		assert.Equal(t, b.ID, msgs[1].SenderID)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		msgs, err := s.Repos.Message.ListByConversation(ctx, s.UnknownID)
		require.NoError(t, err)
		assert.Empty(t, msgs)

		msgs, err = s.Repos.Message.ListByConversation(ctx, "bad")
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("malformed ids", func(t *testing.T) {
		err := s.Repos.Message.Create(ctx, &domain.Message{ConversationID: "bad", SenderID: a.ID, Text: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})
}

func (s Suite) testConcurrentDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	email := fmt.Sprintf("race_%s@example.com", uuid.NewString()[:8])

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Repos.User.Create(ctx, &domain.User{FullName: "Racer", Email: email, PasswordHash: "hash"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, domain.ErrDuplicateEmail):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, dupes)
}

func (s Suite) testConcurrentFindOrCreate(t *testing.T) {
	ctx := context.Background()
	a, b := s.newUser(t), s.newUser(t)

	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x, y := a.ID, b.ID
			if i%2 == 1 {
				x, y = y, x
			}
			conv, _, err := s.Repos.Conversation.FindOrCreate(ctx, x, y)
			if assert.NoError(t, err) {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	listed, err := s.Repos.Conversation.ListByMember(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func userIDs(users []*domain.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
