package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edugames-service/internal/app"
	"edugames-service/internal/config"
	"edugames-service/internal/domain"
	"edugames-service/internal/infra/memory"
	pginfra "edugames-service/internal/infra/postgres"
	redisinfra "edugames-service/internal/infra/redis"
	transport "edugames-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
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
	sessionTTL := config.TTLDuration(cfg.Redis.SessionTTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.GameLoader = memory.NewStaticGameLoader(sampleGames())
	if pool != nil {
		loader = pginfra.NewGameLoader(pool)
	}

	gamesTTL := config.TTLDuration(cfg.Games.TTL, 10*time.Minute)
	var games app.GameRepository
	if redisClient != nil {
		games = redisinfra.NewGameRepository(redisClient, loader, gamesTTL)
	} else {
		games = memory.NewGameRepository(loader, gamesTTL)
	}

	var rewards app.RewardsRepository
	switch {
	case pool != nil:
		rewards = pginfra.NewRewardsRepository(pool)
	case redisClient != nil:
		keyTTL := config.TTLDuration(cfg.Rewards.KeyTTL, 30*24*time.Hour)
		rewards = redisinfra.NewRewardsStore(redisClient, keyTTL)
	default:
		rewards = memory.NewRewardsStore()
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	service := app.NewGameService(games, rewards, sessions)
	wsHandler := transport.NewWSHandler(service)
	apiHandler := transport.NewAPIHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/play", wsHandler.ServePlay)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting edugames service on :%s", finalPort)
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

// sampleGames provides a small demo catalog with one game per type; swap
// the loader for the Postgres-backed one in production.
func sampleGames() map[string]domain.Game {
	return map[string]domain.Game{
		"puzzle-map": {
			ID:           "puzzle-map",
			Title:        "World Map Puzzle",
			Type:         domain.GamePuzzle,
			PointsReward: 50,
			Config: domain.GameConfig{
				Type: domain.GamePuzzle,
				Puzzle: &domain.PuzzleConfig{
					ImageURL: "/assets/puzzles/world-map.png",
					GridSize: 3,
				},
			},
		},
		"match-animals": {
			ID:           "match-animals",
			Title:        "Animal Pairs",
			Type:         domain.GameMatch,
			PointsReward: 40,
			Config: domain.GameConfig{
				Type: domain.GameMatch,
				Match: &domain.MatchConfig{
					Pairs: []domain.MatchPair{
						{ID: "lion", Front: "Lion", Back: "Savanna"},
						{ID: "whale", Front: "Whale", Back: "Ocean"},
						{ID: "eagle", Front: "Eagle", Back: "Mountains"},
						{ID: "camel", Front: "Camel", Back: "Desert"},
					},
				},
			},
		},
		"quiz-space": {
			ID:           "quiz-space",
			Title:        "Space Quiz",
			Type:         domain.GameQuiz,
			PointsReward: 60,
			Config: domain.GameConfig{
				Type: domain.GameQuiz,
				Quiz: &domain.QuizConfig{
					Questions: []domain.QuizQuestion{
						{
							ID:           "q1",
							Question:     "Which planet is closest to the sun?",
							Options:      []string{"Venus", "Mercury", "Mars"},
							CorrectIndex: 1,
							Explanation:  "Mercury orbits closest to the sun.",
						},
						{
							ID:           "q2",
							Question:     "What do we call a group of stars that forms a picture?",
							Options:      []string{"A constellation", "A galaxy", "A comet"},
							CorrectIndex: 0,
						},
						{
							ID:           "q3",
							Question:     "Which planet has rings you can see with a telescope?",
							Options:      []string{"Earth", "Jupiter", "Saturn"},
							CorrectIndex: 2,
						},
					},
				},
			},
		},
		"timeline-inventions": {
			ID:           "timeline-inventions",
			Title:        "Great Inventions",
			Type:         domain.GameTimeline,
			PointsReward: 50,
			Config: domain.GameConfig{
				Type: domain.GameTimeline,
				Timeline: &domain.TimelineConfig{
					Events: []domain.TimelineEvent{
						{ID: "wheel", Title: "The wheel", Order: 1},
						{ID: "press", Title: "The printing press", Order: 2},
						{ID: "bulb", Title: "The light bulb", Order: 3},
						{ID: "plane", Title: "The airplane", Order: 4},
					},
				},
			},
		},
		"whack-veggies": {
			ID:           "whack-veggies",
			Title:        "Veggie Whack",
			Type:         domain.GameWhack,
			PointsReward: 30,
			Config: domain.GameConfig{
				Type: domain.GameWhack,
				Whack: &domain.WhackConfig{
					TargetImage:     "/assets/whack/carrot.png",
					TargetLabel:     "Carrot",
					DurationSeconds: 30,
				},
			},
		},
	}
}
