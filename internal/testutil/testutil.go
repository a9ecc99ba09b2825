package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"autohaven/internal/api"
	"autohaven/internal/app/service"
	"autohaven/internal/common/security"
	"autohaven/internal/domain/repository"
	"autohaven/internal/platform/config"
	"autohaven/internal/platform/database"

	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		APIPort:          "0",
		StoreDriver:      config.DriverMemory,
		CORSOrigins:      []string{"http://localhost:3000"},
		JWTKey:           []byte("test-jwt-secret-key-for-testing-only"),
		JWTExp:           time.Hour,
		ContactQueueName: "contact_messages_test",
	}
}

// FastHasher keeps argon2 cheap in tests.
func FastHasher() security.PasswordHasher {
	return &security.Argon2{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Engine   *security.Engine
	Services api.Services
	Config   *config.Config
}

// NewTestServer serves the full router over in-memory stores.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithRepos(t, repository.NewMemoryRepositories())
}

func NewTestServerWithRepos(t *testing.T, repos *repository.Repositories) *TestServer {
	t.Helper()

	cfg := TestConfig()
	engine := security.NewEngine(cfg.JWTKey, cfg.JWTExp, repos.Users)
	services := api.Services{
		Auth:    service.NewAuthService(repos.Users, engine, FastHasher()),
		Catalog: service.NewCatalogService(repos.Listings),
		Contact: service.NewContactService(repos.Contacts, nil, cfg.ContactQueueName),
	}
	server := httptest.NewServer(api.NewRouter(services, engine, cfg.CORSOrigins))
	t.Cleanup(server.Close)

	return &TestServer{
		Server:   server,
		Repos:    repos,
		Engine:   engine,
		Services: services,
		Config:   cfg,
	}
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}

// TestDB is a migrated PostgreSQL testcontainer.
type TestDB struct {
	Container testcontainers.Container
	DSN       string
}

// NewTestDB starts PostgreSQL and applies the migrations. It skips the test
// under -short or when no container runtime is reachable.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcPostgres.Run(ctx,
		"postgres:16-alpine",
		tcPostgres.WithDatabase("autohaven_test"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	if err := database.Migrate(dsn); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return &TestDB{Container: container, DSN: dsn}
}
