package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"cricket-quiz-service/internal/ads"
	"cricket-quiz-service/internal/app"
	"cricket-quiz-service/internal/domain"
	"cricket-quiz-service/internal/infra/mongodb"
	"cricket-quiz-service/internal/infra/postgres"
	infraredis "cricket-quiz-service/internal/infra/redis"

	"github.com/docker/go-connections/nat"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	if _, err := postgres.Migrate(ctx, pgURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := postgres.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := postgres.NewSlotLoader(pool)
	if err := loader.UpsertSlot(ctx, sampleSlot()); err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	adRepo := postgres.NewAdRepository(pool)
	if err := adRepo.UpsertAd(ctx, domain.AdRecord{
		ID: "ad-1", CompanyName: "Acme", AdSlot: domain.SlotQ3Q4,
		MediaURL: "https://cdn.example.com/acme.MP4", Revenue: 120, IsActive: true,
	}); err != nil {
		t.Fatalf("seed ad: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	attempts := postgres.NewAttemptStore(pool)
	service := app.NewSessionService(app.SessionDeps{
		Quizzes:  app.NewQuizService(infraredis.NewSlotRepository(redisClient, loader, 5*time.Minute), nil),
		Ads:      ads.NewResolver(infraredis.NewAdRepository(redisClient, adRepo, 5*time.Minute)),
		Attempts: attempts,
	}, infraredis.NewSessionStore(redisClient, 5*time.Minute))

	session, err := service.Open(ctx, app.SessionParams{Brand: "Acme", Format: "T20", UserID: "u1", RevealDelay: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer service.Close(session.ID())

	answers := []string{"a", "b", "a", "a", "c"}
	for i, answer := range answers {
		v := waitFor(t, session, func(v app.View) bool {
			return (v.Phase == app.PhasePlaying && v.QuestionIndex == i) || v.Phase == app.PhaseLoadingNext
		})
		if v.Phase == app.PhaseLoadingNext {
			if v.Interstitial == nil || v.Interstitial.Config.Kind != domain.InterstitialVideo {
				t.Fatalf("expected video interstitial before question %d, got %+v", i+1, v.Interstitial)
			}
			if err := session.FinishInterstitial(ctx); err != nil {
				t.Fatalf("finish interstitial: %v", err)
			}
			waitFor(t, session, func(v app.View) bool { return v.Phase == app.PhasePlaying && v.QuestionIndex == i })
		}
		if err := session.Answer(ctx, answer); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	v := waitFor(t, session, func(v app.View) bool { return v.Phase == app.PhaseCompleted && v.ReviewUnlocked })
	if v.Score != 3 || v.Source != app.SourceSlot {
		t.Fatalf("expected slot quiz scored 3, got score=%d source=%s", v.Score, v.Source)
	}
	if err := session.Review(ctx); err != nil {
		t.Fatalf("review: %v", err)
	}

	saved, err := attempts.RecentAttempts(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("recent attempts: %v", err)
	}
	if len(saved) != 1 || saved[0].Score != 3 || saved[0].SlotID != "slot-t20" || !saved[0].Reviewed {
		t.Fatalf("unexpected stored attempts %+v", saved)
	}
}

func TestModerationStoresInMongo(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	mongoURI, cleanup := startMongo(t, ctx)
	defer cleanup()

	client, err := mongodb.Connect(ctx, mongoURI)
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	defer client.Disconnect(ctx)
	db := client.Database("cricket_quiz_test")

	service := app.NewModerationService(mongodb.NewReportRepository(db), mongodb.NewContributionRepository(db), nil)
	report := service.ReportQuestion(ctx, app.ReportInput{QuestionID: "q1", QuestionText: "Who?", Reason: "Wrong answer", UserID: "u1"})
	if !report.Success {
		t.Fatalf("report: %+v", report)
	}
	contribution := service.SubmitContribution(ctx, app.ContributionInput{
		UserID: "u1", Type: domain.ContributionFact, Content: "Sachin scored 100 international centuries.",
	})
	if !contribution.Success {
		t.Fatalf("contribution: %+v", contribution)
	}

	var stored domain.Report
	if err := db.Collection(mongodb.ReportsCollection).FindOne(ctx, bson.M{"_id": report.ReportID}).Decode(&stored); err != nil {
		t.Fatalf("find report: %v", err)
	}
	if stored.Status != app.ReportStatusNew || stored.Reason != "Wrong answer" {
		t.Fatalf("unexpected report %+v", stored)
	}
	n, err := db.Collection(mongodb.ContributionsCollection).CountDocuments(ctx, bson.M{"status": app.ContributionStatusPending})
	if err != nil {
		t.Fatalf("count contributions: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pending contribution, got %d", n)
	}
}

func waitFor(t *testing.T, session *app.QuizSession, ok func(app.View) bool) app.View {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if v := session.Snapshot(); ok(v) {
			return v
		}
		time.Sleep(10 * time.Millisecond)
	}
	v := session.Snapshot()
	t.Fatalf("timed out waiting, last view phase=%s index=%d", v.Phase, v.QuestionIndex)
	return v
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	host, port, cleanup := startContainer(t, ctx, req, "5432/tcp")
	return fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port), cleanup
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	host, port, cleanup := startContainer(t, ctx, req, "6379/tcp")
	return fmt.Sprintf("redis://%s:%s", host, port), cleanup
}

func startMongo(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}
	host, port, cleanup := startContainer(t, ctx, req, "27017/tcp")
	return fmt.Sprintf("mongodb://%s:%s", host, port), cleanup
}

func startContainer(t *testing.T, ctx context.Context, req tc.ContainerRequest, exposed string) (string, string, func()) {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", req.Image, err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("%s host: %v", req.Image, err)
	}
	port, err := container.MappedPort(ctx, nat.Port(exposed))
	if err != nil {
		t.Fatalf("%s port: %v", req.Image, err)
	}
	return host, port.Port(), func() {
		_ = container.Terminate(ctx)
	}
}

func sampleSlot() domain.QuizSlot {
	q := func(id, text string) domain.QuestionRecord {
		return domain.QuestionRecord{
			ID:            id,
			Question:      text,
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: "a",
		}
	}
	return domain.QuizSlot{
		ID:     "slot-t20",
		Format: "T20",
		Status: domain.SlotLive,
		Title:  "Friday Night T20",
		Questions: []domain.QuestionRecord{
			q("q1", "Who hit the first T20I century?"),
			q("q2", "Which team won the first T20 World Cup?"),
			q("q3", "Who took the first T20I hat-trick?"),
			q("q4", "Which ground hosted the first T20I?"),
			q("q5", "Who has the most T20I sixes?"),
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
