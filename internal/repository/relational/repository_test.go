package relational_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dom/chat-server/internal/domain"
	"github.com/dom/chat-server/internal/repository/relational"
	"github.com/dom/chat-server/internal/repository/repotest"
	"github.com/dom/chat-server/internal/testutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := relational.NewSQLiteConnection(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		relational.Close(db)
	})
	return db
}

func TestRepositories_SQLite(t *testing.T) {
	repotest.Run(t, repotest.Suite{
		Repos:              relational.NewRepositories(newSQLiteDB(t)),
		UnknownID:          uuid.NewString(),
		AtomicFindOrCreate: true,
	})
}

func TestRepositories_Postgres(t *testing.T) {
	db := testutil.NewPostgresTestDB(t)
	repotest.Run(t, repotest.Suite{
		Repos:              relational.NewRepositories(db),
		UnknownID:          uuid.NewString(),
		AtomicFindOrCreate: true,
	})
}

func TestUserRepository_NormalizesIDs(t *testing.T) {
	repos := relational.NewRepositories(newSQLiteDB(t))
	ctx := context.Background()

	user := &domain.User{FullName: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, repos.User.Create(ctx, user))

	tests := []struct {
		name string
		id   string
	}{
		{name: "canonical", id: user.ID},
		{name: "upper case", id: strings.ToUpper(user.ID)},
		{name: "surrounding space", id: "  " + user.ID + " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repos.User.GetByID(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)

			others, err := repos.User.ListExcluding(ctx, tt.id)
			require.NoError(t, err)
			assert.Empty(t, others)
		})
	}
}

func TestConversationRepository_StoresMembersAsGiven(t *testing.T) {
	repos := relational.NewRepositories(newSQLiteDB(t))
	ctx := context.Background()

	a, b := uuid.NewString(), uuid.NewString()
	conv := &domain.Conversation{Members: [2]string{b, a}}
	require.NoError(t, repos.Conversation.Create(ctx, conv))

	found, err := repos.Conversation.FindByMembers(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, [2]string{b, a}, found.Members)
	assert.Equal(t, domain.PairKey(a, b), domain.PairKey(found.Members[0], found.Members[1]))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newSQLiteDB(t)
	require.NoError(t, relational.Migrate(db))
	require.NoError(t, relational.Migrate(db))
}
