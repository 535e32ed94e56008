package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/chatgames-backend/internal/config"
	"github.com/rocketscienceinc/chatgames-backend/internal/drive"
	"github.com/rocketscienceinc/chatgames-backend/internal/game"
	"github.com/rocketscienceinc/chatgames-backend/internal/repository"
	"github.com/rocketscienceinc/chatgames-backend/internal/repository/storage"
	"github.com/rocketscienceinc/chatgames-backend/internal/usecase"
	"github.com/rocketscienceinc/chatgames-backend/transport/rest"
	"github.com/rocketscienceinc/chatgames-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

const sweepInterval = time.Minute

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var (
		sessionRepo repository.SessionRepository
		memberRepo  repository.MembershipRepository
	)

	switch conf.Store {
	case config.StoreRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		sessionRepo = repository.NewSessionRepository(redisStorage.Connection, conf.SessionTTL)
		memberRepo = repository.NewMembershipRepository(redisStorage.Connection)
	default:
		memorySessions := repository.NewMemorySessionRepository(conf.SessionTTL, time.Now)
		go sweepSessions(ctx, log, memorySessions)

		sessionRepo = memorySessions
		memberRepo = repository.NewMemoryMembershipRepository()
	}

	log.Info("Session store ready", "store", conf.Store, "ttl", conf.SessionTTL)

	opts := game.Options{
		ConnectFourMaxDepth:  conf.Games.ConnectFourMaxDepth,
		HangmanAllowedWrongs: conf.Games.HangmanAllowedWrongs,
	}
	if conf.Drive.Root != "" {
		opts.Drive = drive.NewLocal(os.DirFS(conf.Drive.Root), conf.Drive.BaseURL)
		log.Info("Drive browser enabled", "root", conf.Drive.Root)
	}

	router := usecase.NewRouter(logger, game.NewRegistry(opts), sessionRepo, memberRepo)

	if conf.Postgres.DSN != "" {
		postgresStorage, err := storage.NewPostgresStorage(ctx, conf.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		defer func() {
			if err = postgresStorage.Close(); err != nil {
				log.Error("could not close postgres storage", "error", err)
			}
		}()

		resultRepo := repository.NewResultRepository(postgresStorage.Connection)
		if err = resultRepo.Migrate(ctx); err != nil {
			return err
		}

		router.WithHistory(resultRepo)
		log.Info("Game history enabled")
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewHandler(logger, router)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, router)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// sweepSessions - frees memory held by expired sessions until ctx is canceled.
func sweepSessions(ctx context.Context, log *slog.Logger, sessions *repository.MemorySessionRepository) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.Sweep(ctx); removed > 0 {
				log.Debug("expired sessions swept", "removed", removed)
			}
		}
	}
}
