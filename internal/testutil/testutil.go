package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/chat-server/internal/api"
	"github.com/dom/chat-server/internal/config"
	"github.com/dom/chat-server/internal/repository"
	repoMongo "github.com/dom/chat-server/internal/repository/mongodb"
	"github.com/dom/chat-server/internal/repository/relational"
	"github.com/dom/chat-server/internal/service"
	"github.com/dom/chat-server/internal/storage"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	tcMongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		Environment:        "test",
		LogLevel:           "disabled",
		DatabaseURI:        "sqlite::memory:",
		DatabaseName:       "chat_test",
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 1,
	}
}

// NewTestStore opens a fresh in-memory SQLite store, closed when the test ends
func NewTestStore(t *testing.T) *storage.Store {
	t.Helper()

	ctx := context.Background()
	store, err := storage.Open(ctx, TestConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}

	t.Cleanup(func() {
		store.Close(ctx)
	})

	return store
}

// NewTestServices wires services over a fresh in-memory store
func NewTestServices(t *testing.T) (*service.Services, *repository.Repositories) {
	t.Helper()

	store := NewTestStore(t)
	return service.NewServices(store.Repos, TestConfig(), zerolog.Nop()), store.Repos
}

// NewPostgresTestDB starts a PostgreSQL testcontainer and returns a migrated connection
func NewPostgresTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_chat"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := relational.NewConnection(dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	t.Cleanup(func() {
		relational.Close(db)
	})

	return db
}

// NewMongoTestDB starts a MongoDB testcontainer and returns an indexed database
func NewMongoTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongodb integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcMongo.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongodb container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	client, err := repoMongo.NewClient(ctx, uri)
	if err != nil {
		t.Fatalf("failed to connect to mongodb: %v", err)
	}
	t.Cleanup(func() {
		client.Disconnect(context.Background())
	})

	db := client.Database("chat_test")
	if err := repoMongo.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	return db
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Config   *config.Config
}

// NewTestServer creates a complete test server backed by an in-memory store
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := TestConfig()
	store := NewTestStore(t)

	services := service.NewServices(store.Repos, cfg, zerolog.Nop())
	router := api.NewRouter(services, zerolog.Nop())

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Repos:    store.Repos,
		Services: services,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}
