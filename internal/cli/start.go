package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/identity"
	"trivia-quiz-service/internal/infra/memory"
	redisinfra "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/quiz"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}
	pool := newQuestionPool(redisClient, backend.loader, config.TTLDuration(cfg.Quiz.PoolTTL, 10*time.Minute))

	var games app.GameRepository = memory.NewGameStore()
	if redisClient != nil {
		games = redisinfra.NewGameStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour))
	}

	leaderboardLimit := config.IntOr(cfg.Quiz.LeaderboardLimit, 20)
	gameService := app.NewGameService(games, pool, backend.gateway, app.GameConfig{
		Quiz:             quizConfig(cfg),
		LeaderboardLimit: leaderboardLimit,
		AttemptTTL:       config.TTLDuration(cfg.Quiz.AttemptTTL, time.Hour),
	})
	adminService := app.NewAdminService(backend.gateway, pool, 0)

	if cfg.Admin.JWTSecret == "" {
		log.Printf("warning: admin jwt secret not set; admin API disabled")
	}

	handler := transport.NewRouter(transport.RouterConfig{
		Games:            gameService,
		Admin:            adminService,
		Identity:         identity.NewService(0),
		AdminSecret:      cfg.Admin.JWTSecret,
		CORSOrigins:      cfg.Server.CORSOrigins,
		LeaderboardLimit: leaderboardLimit,
	})

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WebSocket writes are long-lived; the pump handles its own failures.
		WriteTimeout: 0,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// quizConfig overlays the configured values on the defaults.
func quizConfig(cfg config.Config) quiz.Config {
	qc := quiz.DefaultConfig()
	qc.QuestionCount = config.IntOr(cfg.Quiz.QuestionCount, qc.QuestionCount)
	qc.TimerSeconds = config.IntOr(cfg.Quiz.TimerSeconds, qc.TimerSeconds)
	qc.RevealDelay = config.TTLDuration(cfg.Quiz.RevealDelay, qc.RevealDelay)
	qc.HintWindow = config.TTLDuration(cfg.Quiz.HintWindow, qc.HintWindow)
	return qc
}
