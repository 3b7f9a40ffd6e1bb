package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/adrsyn/ballotbox/internal/adapters/handler/http"
	"github.com/adrsyn/ballotbox/internal/adapters/handler/ws"
	"github.com/adrsyn/ballotbox/internal/adapters/repository/postgres"
	"github.com/adrsyn/ballotbox/internal/adapters/repository/redis"
	"github.com/adrsyn/ballotbox/internal/core/services"
)

type TestApp struct {
	DB     *sql.DB
	Server *httptest.Server
	Cache  *services.StateCache
	Hub    *services.Hub

	cancel      context.CancelFunc
	pgContainer testcontainers.Container
	rdContainer testcontainers.Container
	redisClient *goredis.Client
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupRedisContainer(ctx context.Context) (testcontainers.Container, string, error) {
	rdContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return nil, "", fmt.Errorf("failed to start redis container: %w", err)
	}

	connStr, err := rdContainer.ConnectionString(ctx)
	if err != nil {
		return nil, "", err
	}

	return rdContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dirPath, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}

	return nil
}

func seedElection(t *testing.T, db *sql.DB) {
	t.Helper()
	statements := []string{
		`INSERT INTO voters (name, token, class, campus) VALUES
			('Alice', 'tok-alice', 'XI-A', 'MM'),
			('Bob', 'tok-bob', 'XI-B', 'PD')`,
		`INSERT INTO candidates (name, campus) VALUES
			('Carol', 'MM'),
			('Dave', 'PD')`,
		`INSERT INTO admins (id, password) VALUES ('root', 'hunter2')`,
	}
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	pgContainer, connStr, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	rdContainer, redisURL, err := setupRedisContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	require.NoError(t, applyMigrations(db))
	seedElection(t, db)

	redisOpts, err := goredis.ParseURL(redisURL)
	require.NoError(t, err)
	redisClient := goredis.NewClient(redisOpts)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := postgres.NewStore(db)
	overrides := redis.NewOverrideStore(redisClient)

	cache := services.NewStateCache(store, logger)
	require.NoError(t, cache.LoadAll(ctx))

	hub := services.NewHub(logger)

	listenerCtx, cancel := context.WithCancel(ctx)
	listener := services.NewChangeListener(postgres.NewFeed(connStr, logger), cache, hub, logger)
	listener.Start(listenerCtx)

	resolver := services.NewTokenResolver(cache, overrides, logger)
	ledger := services.NewVoteLedger(store, cache, logger)
	session := services.NewAdminSession(store, cache, logger)
	reset := services.NewResetFlow(cache, overrides, ledger, logger)

	voterHandler := handler.NewVoterHandler(resolver, ledger)
	adminHandler := handler.NewAdminHandler(resolver, session, reset, cache, overrides)
	candidateHandler := handler.NewCandidateHandler(cache)
	liveHandler := ws.NewLiveHandler(hub, logger)

	server := httptest.NewServer(handler.NewHandler(voterHandler, adminHandler, candidateHandler, liveHandler.Votes))

	return &TestApp{
		DB:          db,
		Server:      server,
		Cache:       cache,
		Hub:         hub,
		cancel:      cancel,
		pgContainer: pgContainer,
		rdContainer: rdContainer,
		redisClient: redisClient,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	t.Helper()
	app.cancel()
	app.Server.Close()
	app.redisClient.Close()
	app.DB.Close()

	ctx := context.Background()
	if err := app.pgContainer.Terminate(ctx); err != nil {
		t.Logf("failed to terminate postgres container: %v", err)
	}
	if err := app.rdContainer.Terminate(ctx); err != nil {
		t.Logf("failed to terminate redis container: %v", err)
	}
}
