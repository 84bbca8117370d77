package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iam-academy-service/internal/app"
	"iam-academy-service/internal/config"
	"iam-academy-service/internal/content"
	"iam-academy-service/internal/infra/memory"
	pgstore "iam-academy-service/internal/infra/postgres"
	redisstore "iam-academy-service/internal/infra/redis"
	transport "iam-academy-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the course platform server",
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
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	// Content: the built-in catalog serves zero-infrastructure deployments;
	// Postgres replaces it when configured. Either way the loader sits
	// behind a TTL cache (shared via Redis when available).
	var loader memory.ModuleLoader = memory.NewStaticModuleLoader(content.Catalog())
	if pool != nil {
		loader = pgstore.NewModuleLoader(pool)
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var modules app.ModuleRepository
	if redisClient != nil {
		modules = redisstore.NewModuleRepository(redisClient, loader, contentTTL)
	} else {
		modules = memory.NewModuleRepository(loader, contentTTL)
	}

	// Progress: prefer the durable store. Postgres over Redis over memory.
	var progress app.ProgressStore
	switch {
	case pool != nil:
		progress = pgstore.NewProgressStore(pool)
	case redisClient != nil:
		progress = redisstore.NewProgressStore(redisClient)
	default:
		progress = memory.NewProgressStore()
	}

	service := app.NewQuizService(modules, progress, cfg.Quiz.PassingScore)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting iam-academy service on :%s", finalPort)
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
