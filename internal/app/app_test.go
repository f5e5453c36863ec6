package app

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RunRaiser/internal/config"
	"RunRaiser/internal/domain"
	"RunRaiser/internal/infrastructure/simulated"
	"RunRaiser/internal/infrastructure/storage"
	"RunRaiser/internal/judge"
)

var fixedNow = time.Date(2025, time.November, 28, 9, 0, 0, 0, time.UTC)

func testConfig() config.Config {
	return config.Config{
		Logging: config.LoggingConfig{Level: "error"},
		Request: domain.PostRequest{
			TargetPlatform:   domain.PlatformLinkedIn,
			Tone:             domain.ToneProfessional,
			Objective:        "Celebrate hitting the £500+ fundraising milestone and encourage further support.",
			Audience:         "Corporate partners and professional network",
			CallToActionHint: "Invite colleagues and partners to donate or share the campaign.",
		},
		Campaign:  config.CampaignConfig{ID: "test", CharityName: "Ronald McDonald House Charities", CurrencySymbol: "£"},
		Judge:     config.JudgeConfig{Rubric: judge.DefaultRubric()},
		Publisher: config.PublisherConfig{Mode: config.PublisherSimulated, PreviewLength: 120},
		Memory:    config.MemoryConfig{Backend: config.MemoryInProcess, HistoryLimit: 50},
		Scheduler: config.SchedulerConfig{Interval: time.Hour},
	}
}

func newTestApp(t *testing.T, cfg config.Config) *Application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	application, err := New(context.Background(), cfg, logger, Options{
		Clock: func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })
	return application
}

func TestRunPublishesMilestonePost(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	application := newTestApp(t, cfg)

	result, err := application.Run(context.Background(), cfg.Request)
	require.NoError(t, err)

	assert.Equal(t, "c2", result.FinalPost.CandidateID)
	assert.Equal(t, 85, result.Feedback.Score)
	assert.Equal(t, domain.DecisionApprove, result.Feedback.Decision)
	require.Len(t, result.Trajectory.Steps, 7)
	assert.Contains(t, result.Trajectory.Steps[5].Notes["publish_result"], "[SIMULATED PUBLISH] Platform=linkedin")

	rec := httptest.NewRecorder()
	application.Metrics().Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `runraiser_runs_total{outcome="success"} 1`)
}

func TestRunRejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	application := newTestApp(t, cfg)

	req := cfg.Request
	req.Tone = "sarcastic"
	_, err := application.Run(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestRunBannedPhraseBlocksPublication(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Judge.BannedPhrases = []string{"smashed"}
	application := newTestApp(t, cfg)

	_, err := application.Run(context.Background(), cfg.Request)
	require.Error(t, err)
	assert.Equal(t, domain.KindSelection, domain.KindOf(err))
	assert.True(t, strings.Contains(err.Error(), "REJECT"), err.Error())
}

func TestRunPersistsToSQLite(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Memory.Backend = config.MemorySQLite
	cfg.Memory.DSN = filepath.Join(t.TempDir(), "runraiser.db")
	application := newTestApp(t, cfg)

	for i := 0; i < 2; i++ {
		_, err := application.Run(context.Background(), cfg.Request)
		require.NoError(t, err)
	}

	db, err := storage.Open(context.Background(), storage.DialectSQLite, cfg.Memory.DSN)
	require.NoError(t, err)
	defer db.Close()

	mem, err := storage.NewSQLStore(db, storage.DialectSQLite, cfg.Campaign.ID, domain.EmptyMemory()).Get(context.Background())
	require.NoError(t, err)

	seed := simulated.SeedMemory(fixedNow)
	require.Len(t, mem.Episodic.PastSuccessfulPosts, len(seed.Episodic.PastSuccessfulPosts)+1)
	assert.Contains(t, mem.Episodic.PastSuccessfulPosts[len(mem.Episodic.PastSuccessfulPosts)-1], "smashed")
	assert.Equal(t, "2025-11-28", mem.Statistical.LastUpdateDate)
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*config.Config){
		"unknown backend":   func(c *config.Config) { c.Memory.Backend = "etcd" },
		"telegram no token": func(c *config.Config) { c.Publisher.Mode = config.PublisherTelegram },
		"unknown publisher": func(c *config.Config) { c.Publisher.Mode = "fax" },
		"snapshot no path":  func(c *config.Config) { c.Fundraising.Source = config.SourceSnapshot },
		"unknown source":    func(c *config.Config) { c.Fundraising.Source = "oracle" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			mutate(&cfg)
			_, err := New(context.Background(), cfg, slog.New(slog.DiscardHandler), Options{})
			require.Error(t, err)
		})
	}
}

func TestScheduleStopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	application := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Schedule(ctx, cfg.Request) }()

	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		application.Metrics().Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		return strings.Contains(rec.Body.String(), `runraiser_runs_total{outcome="success"} 1`)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("schedule did not return after cancel")
	}
}
