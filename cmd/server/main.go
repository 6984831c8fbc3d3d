package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"presence-chat/contract"
	"presence-chat/infrastructure/grpc/server"
	"presence-chat/infrastructure/rest"
	"presence-chat/internal"
	"presence-chat/moderation"
	"presence-chat/projection"
	"presence-chat/repositories"
	"presence-chat/runtime"
	"presence-chat/runtime/workers"
	"presence-chat/services"
	"presence-chat/sink"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the chat core and serves it until a signal is received.
// Deferred cleanups run before the exit code reaches main.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	warnings, err := config.Validate()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	for _, warning := range warnings {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	messages, err := repositories.NewMessageRepository(db, log)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = messages.Close() }()

	participants, closeParticipants, err := participantRepository(ctx, config, db, log)
	if err != nil {
		return exitRuntime, err
	}
	defer closeParticipants()

	// 3. Events
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(log, supervisor, config.EventBufferSize, config.SinkTimeout)
	timeline := projection.NewTimeline(config.TimelineSize)
	orchestrator.Add(sink.NewLogSink(log), timeline)
	if brokers := config.Brokers(); len(brokers) > 0 {
		writer := sink.NewKafkaWriter(brokers, config.KafkaTopic)
		kafkaSink := sink.NewKafkaSink(writer, log)
		defer func() { _ = kafkaSink.Close() }()
		orchestrator.Add(kafkaSink)
		log.Info("Publishing domain events to Kafka", "brokers", brokers, "topic", config.KafkaTopic)
	}

	// 4. Chat core
	registry := runtime.NewRegistry(log, participants, messages, orchestrator, config.BroadcastTarget)
	router := runtime.NewRouter(log, registry, messages, orchestrator, config.BroadcastTarget)
	if config.ModerationEnabled {
		moderator, err := newModerator(config, log)
		if err != nil {
			return exitConfig, err
		}
		router.WithModerator(moderator)
	}
	chatService := services.NewChatService(log, registry, router)

	healthServer := server.NewHealthServer(log)
	orchestrator.Register(workers.NewPresenceTracker(log, registry, healthServer,
		config.PresenceInterval, config.PresenceTTL))

	errChan := make(chan error, 2)
	orchestratorDone := make(chan struct{})
	go func() {
		defer close(orchestratorDone)
		orchestrator.Start(ctx)
	}()

	// 5. gRPC health
	healthAddress := fmt.Sprintf("%s:%d", config.Host, config.HealthPort)
	listener, err := net.Listen("tcp", healthAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", healthAddress, err)
	}
	grpcServer := grpc.NewServer()
	healthServer.Register(grpcServer)
	go func() {
		log.Info("Starting gRPC health server", "address", healthAddress)
		if err := grpcServer.Serve(listener); err != nil && !stderrors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 6. HTTP API
	handler := rest.NewHandler(log, chatService, config.BroadcastTarget, config.UserHeader).WithTimeline(timeline)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: rest.NewEngine(log, handler),
	}
	go func() {
		log.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	healthServer.Shutdown()
	grpcServer.GracefulStop()
	orchestrator.Stop()
	select {
	case <-orchestratorDone:
	case <-shutdownCtx.Done():
		log.Warn("Workers did not stop before the shutdown timeout")
	}
	log.Info("Program stopped cleanly")
	return code, runErr
}

// participantRepository picks the presence store. Redis lets several
// instances share presence while messages stay in Badger.
func participantRepository(ctx context.Context, config internal.Config, db *badger.DB,
	log *slog.Logger) (repositories.IParticipantRepository, func(), error) {
	if config.PresenceBackend != internal.PresenceBackendRedis {
		return repositories.NewParticipantRepository(db, log), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis unreachable at %s: %w", config.RedisAddr, err)
	}
	log.Info("Presence stored in Redis", "address", config.RedisAddr)
	return repositories.NewRedisParticipantRepository(client, log), func() { _ = client.Close() }, nil
}

func newModerator(config internal.Config, log *slog.Logger) (contract.IModerator, error) {
	char, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return nil, err
	}
	data, err := moderation.NewEmbeddedLoader().LoadAll("censored")
	if err != nil {
		return nil, fmt.Errorf("loading censored words: %w", err)
	}
	log.Info("Moderation enabled", "words", len(data.Words), "languages", data.Languages)
	return moderation.NewModerator(data.Words, char, log)
}
