package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"edugames-service/internal/app"
	"edugames-service/internal/domain"
	"edugames-service/internal/engine"
	pginfra "edugames-service/internal/infra/postgres"
	pgmigrations "edugames-service/internal/infra/postgres/migrations"
	infraredis "edugames-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestPlayAndRewardEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedGame(t, ctx, pgURL, sampleGame())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	games := infraredis.NewGameRepository(redisClient, pginfra.NewGameLoader(pool), 5*time.Minute)
	rewards := pginfra.NewRewardsRepository(pool)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewGameService(games, rewards, sessions)

	// First fetch goes to Postgres, the repeat is served out of Redis.
	game, err := service.GetGame(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if game.Title != "Animal Quiz" {
		t.Fatalf("unexpected game: %+v", game)
	}
	if _, err := service.GetGame(ctx, "quiz-1"); err != nil {
		t.Fatalf("cached get game: %v", err)
	}

	session, err := service.StartSession(ctx, "quiz-1", "u1")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	defer service.EndSession(session.ID)

	// Answer both questions correctly; advancing past the last completes.
	for i := 0; i < 2; i++ {
		session.Apply(engine.Input{Action: engine.ActionAnswer, Option: 1})
		session.Apply(engine.Input{Action: engine.ActionAdvance})
	}
	score, done := session.FinalScore()
	if !done || score != 100 {
		t.Fatalf("expected final score 100, got %d done=%v", score, done)
	}

	result, err := service.CompleteGame(ctx, "quiz-1", "u1", score, session.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.PointsEarned != 50 || result.TotalPoints != 50 {
		t.Fatalf("expected 50/50 points, got %+v", result)
	}

	// A retried report with the same key must not credit twice.
	replay, err := service.CompleteGame(ctx, "quiz-1", "u1", score, session.ID)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.TotalPoints != 50 {
		t.Fatalf("expected total to stay 50, got %+v", replay)
	}

	total, err := service.TotalPoints(ctx, "u1")
	if err != nil {
		t.Fatalf("total points: %v", err)
	}
	if total != 50 {
		t.Fatalf("expected 50 total points, got %d", total)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "games", "POSTGRES_PASSWORD": "gamespass", "POSTGRES_DB": "gamesdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://games:gamespass@%s:%s/gamesdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedGame(t *testing.T, ctx context.Context, dsn string, game domain.Game) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(game)
	if err != nil {
		t.Fatalf("marshal game: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO games (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, game.ID, string(data)); err != nil {
		t.Fatalf("insert game: %v", err)
	}
}

func sampleGame() domain.Game {
	return domain.Game{
		ID:           "quiz-1",
		Title:        "Animal Quiz",
		Type:         domain.GameQuiz,
		PointsReward: 50,
		Config: domain.GameConfig{
			Type: domain.GameQuiz,
			Quiz: &domain.QuizConfig{
				Questions: []domain.QuizQuestion{
					{
						ID:           "q1",
						Question:     "Which animal says moo?",
						Options:      []string{"Cat", "Cow", "Dog"},
						CorrectIndex: 1,
					},
					{
						ID:           "q2",
						Question:     "Which animal has a trunk?",
						Options:      []string{"Mouse", "Elephant", "Horse"},
						CorrectIndex: 1,
					},
				},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
