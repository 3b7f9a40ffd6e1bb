package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/adrsyn/ballotbox/internal/adapters/handler/http"
	"github.com/adrsyn/ballotbox/internal/adapters/handler/ws"
	"github.com/adrsyn/ballotbox/internal/adapters/repository/postgres"
	"github.com/adrsyn/ballotbox/internal/adapters/repository/redis"
	"github.com/adrsyn/ballotbox/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connStr := dbConnString()
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	redisOpts, err := goredis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	redisClient := goredis.NewClient(redisOpts)
	defer redisClient.Close()

	store := postgres.NewStore(db)
	overrides := redis.NewOverrideStore(redisClient)

	cache := services.NewStateCache(store, logger)
	if err := cache.LoadAll(ctx); err != nil {
		// A vote referencing an unknown candidate means the store is
		// corrupted; refusing to start beats silently dropping votes.
		log.Fatalf("cache bootstrap failed: %v", err)
	}

	hub := services.NewHub(logger)
	listener := services.NewChangeListener(postgres.NewFeed(connStr, logger), cache, hub, logger)
	listener.Start(ctx)

	resolver := services.NewTokenResolver(cache, overrides, logger)
	ledger := services.NewVoteLedger(store, cache, logger)
	session := services.NewAdminSession(store, cache, logger)
	reset := services.NewResetFlow(cache, overrides, ledger, logger)

	voterHandler := http.NewVoterHandler(resolver, ledger)
	adminHandler := http.NewAdminHandler(resolver, session, reset, cache, overrides)
	candidateHandler := http.NewCandidateHandler(cache)
	liveHandler := ws.NewLiveHandler(hub, logger)

	handler := http.NewHandler(voterHandler, adminHandler, candidateHandler, liveHandler.Votes)
	server := &stdhttp.Server{Addr: "0.0.0.0:8080", Handler: handler}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

func dbConnString() string {
	user := os.Getenv("POSTGRES_USER")
	password := os.Getenv("POSTGRES_PASSWORD")
	host := os.Getenv("POSTGRES_HOST")
	port := os.Getenv("POSTGRES_PORT")
	dbName := os.Getenv("POSTGRES_DB")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}
