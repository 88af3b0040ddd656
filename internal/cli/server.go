package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"studyhub-service/internal/app"
	"studyhub-service/internal/config"
	"studyhub-service/internal/domain"
	"studyhub-service/internal/infra/memory"
	pginfra "studyhub-service/internal/infra/postgres"
	redisinfra "studyhub-service/internal/infra/redis"
	transport "studyhub-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the studyhub server",
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

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 5*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(sampleCatalog())
	if pool != nil {
		loader = pginfra.NewCatalogLoader(pool)
	}

	var catalog app.CatalogRepository
	if redisClient != nil {
		catalog = redisinfra.NewCatalogCache(redisClient, loader, catalogTTL)
	} else {
		catalog = memory.NewCatalogCache(loader, catalogTTL)
	}

	var (
		users       app.UserStore
		attempts    app.AttemptStore
		qotdAnswers app.QotdStore
		ranks       app.RankStore
	)
	if pool != nil {
		pgUsers := pginfra.NewUserStore(pool)
		users = pgUsers
		attempts = pginfra.NewAttemptStore(pool)
		qotdAnswers = pginfra.NewQotdStore(pool)
		ranks = pgUsers
	} else {
		memUsers := memory.NewUserStore(sampleUsers()...)
		users = memUsers
		attempts = memory.NewAttemptStore()
		qotdAnswers = memory.NewQotdStore(memUsers)
		ranks = memUsers
	}
	if redisClient != nil {
		rankSet := redisinfra.NewRankStore(redisClient, ranks)
		// Seed the rank set before serving so score deltas never race the
		// cold-start fill.
		if err := rankSet.Warm(ctx); err != nil {
			return fmt.Errorf("warm rank store: %w", err)
		}
		ranks = rankSet
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	leaderboard := app.NewLeaderboardService(ranks, users, cfg.Leaderboard.Size)
	browse := app.NewBrowseService(catalog, users)
	attemptSvc := app.NewAttemptService(sessions, catalog, users, attempts)
	qotdSvc := app.NewQotdService(catalog, qotdAnswers, leaderboard)

	handler := transport.NewHandler(browse, attemptSvc, qotdSvc, leaderboard, users, cfg.JWTSecret())
	wsHandler := transport.NewWSHandler(leaderboard)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("GET /ws/leaderboard", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting studyhub service on :%s", finalPort)
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

// sampleCatalog provides demo content for running without Postgres.
func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		Subjects: []domain.Subject{
			{
				ID:   "science",
				Name: "Science",
				SubSubjects: []domain.SubSubject{
					{
						ID:   "physics",
						Name: "Physics",
						Chapters: []domain.Chapter{
							{
								ID:   "motion",
								Name: "Motion",
								Notes: []domain.Note{
									{
										ID:       "n-kinematics",
										Name:     "Kinematics basics",
										Type:     "pdf",
										PDFURL:   "https://example.com/kinematics.pdf",
										IsPublic: true,
									},
								},
								MCQSets: []domain.MCQSet{
									{
										ID:   "set-motion-1",
										Name: "Motion fundamentals",
										Questions: []domain.MCQ{
											{
												ID:                 "q1",
												Question:           "SI unit of velocity?",
												Options:            []string{"m/s", "m", "s", "kg"},
												CorrectOptionIndex: 0,
											},
											{
												ID:                 "q2",
												Question:           "Acceleration is the rate of change of?",
												Options:            []string{"distance", "velocity", "mass"},
												CorrectOptionIndex: 1,
											},
										},
									},
								},
							},
						},
					},
				},
			},
		},
		Questions: []domain.QuestionOfTheDay{
			{
				ID:       "qotd-demo",
				Question: "What is 2 + 2?",
				Options: []domain.QotdOption{
					{ID: "a", Text: "4"},
					{ID: "b", Text: "5"},
				},
				CorrectOptionID: "a",
				Date:            domain.CurrentDate(time.Now()),
			},
		},
	}
}

func sampleUsers() []domain.User {
	return []domain.User{
		{ID: "admin", DisplayName: "Admin", Role: domain.RoleAdmin, ShowOnLeaderboard: false},
		{ID: "demo", DisplayName: "Demo Student", Role: domain.RoleUser, ShowOnLeaderboard: true},
	}
}
