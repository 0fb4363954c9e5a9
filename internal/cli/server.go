package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cricket-quiz-service/internal/ads"
	"cricket-quiz-service/internal/analysis"
	"cricket-quiz-service/internal/app"
	"cricket-quiz-service/internal/auth"
	"cricket-quiz-service/internal/config"
	"cricket-quiz-service/internal/events"
	"cricket-quiz-service/internal/facts"
	"cricket-quiz-service/internal/generation"
	"cricket-quiz-service/internal/infra/memory"
	"cricket-quiz-service/internal/infra/mongodb"
	"cricket-quiz-service/internal/infra/postgres"
	infraredis "cricket-quiz-service/internal/infra/redis"
	"cricket-quiz-service/internal/llm"
	"cricket-quiz-service/internal/summary"
	transport "cricket-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
	slotTTL := config.TTLDuration(cfg.Quiz.SlotTTL, 5*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		slotLoader memory.SlotLoader = memory.NewStaticSlotLoader(nil)
		adSource   ads.Repository    = memory.NewAdStore()
		attempts   app.AttemptStore  = memory.NewAttemptStore()
	)
	if pool != nil {
		slotLoader = postgres.NewSlotLoader(pool)
		adSource = postgres.NewAdRepository(pool)
		attempts = postgres.NewAttemptStore(pool)
	}

	var slots app.SlotRepository
	var store app.SessionRegistry
	if redisClient != nil {
		slots = infraredis.NewSlotRepository(redisClient, slotLoader, slotTTL)
		adSource = infraredis.NewAdRepository(redisClient, adSource, slotTTL)
		store = infraredis.NewSessionStore(redisClient, redisTTL)
	} else {
		slots = memory.NewSlotRepository(slotLoader, slotTTL)
		store = memory.NewSessionStore()
	}
	resolver := ads.NewResolver(adSource)

	var (
		completer llm.Completer
		generator app.QuizGenerator
	)
	llmClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, config.TTLDuration(cfg.LLM.Timeout, 60*time.Second))
	if llmClient.Available() {
		completer = llmClient
		var opts []generation.Option
		if cfg.Quiz.HistoryDepth > 0 {
			opts = append(opts, generation.WithHistoryDepth(cfg.Quiz.HistoryDepth))
		}
		generator = generation.NewGateway(llmClient, attempts, opts...)
	} else {
		log.Printf("llm not configured, serving slot and fallback quizzes only")
	}
	analyzer := analysis.NewService(completer)

	var publisher app.EventPublisher = events.NewLogPublisher(nil)
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	var (
		reports       app.ReportStore
		contributions app.ContributionStore
	)
	if cfg.Mongo.URI != "" {
		client, err := mongodb.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		database := cfg.Mongo.Database
		if database == "" {
			database = "cricket_quiz"
		}
		db := client.Database(database)
		reports = mongodb.NewReportRepository(db)
		contributions = mongodb.NewContributionRepository(db)
	} else {
		moderationStore := memory.NewModerationStore()
		reports, contributions = moderationStore, moderationStore
	}

	var identity auth.IdentityProvider
	if cfg.Auth.JWTSecret != "" {
		identity = auth.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer, config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour))
	} else {
		log.Printf("auth.jwtSecret not set, authenticated routes are disabled")
	}

	quizzes := app.NewQuizService(slots, generator)
	sessions := app.NewSessionService(app.SessionDeps{
		Quizzes:  quizzes,
		Ads:      resolver,
		Attempts: attempts,
		Renderer: summary.New(summary.Kind(cfg.Summary.Renderer), analyzer),
		Events:   publisher,
	}, store)
	revealDelay := config.TTLDuration(cfg.Quiz.RevealDelay, app.DefaultRevealDelay)

	router := transport.NewRouter(transport.RouterDeps{
		Quizzes:        quizzes,
		Analyzer:       analyzer,
		Facts:          facts.NewService(completer),
		Moderation:     app.NewModerationService(reports, contributions, publisher),
		Attempts:       attempts,
		Ads:            resolver,
		WS:             transport.NewWSHandler(sessions, identity, revealDelay),
		Identity:       identity,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting cricket quiz service on :%s", finalPort)
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
