package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/impactlink/pulse/internal/config"
	"github.com/impactlink/pulse/internal/database"
	"github.com/impactlink/pulse/internal/engagement"
	"github.com/impactlink/pulse/internal/feed"
	"github.com/impactlink/pulse/internal/gesture"
	"github.com/impactlink/pulse/internal/identity"
	"github.com/impactlink/pulse/internal/orchestrator"
	"github.com/impactlink/pulse/internal/sampler"
	"github.com/impactlink/pulse/internal/tui"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath(), "path to config file")
	userID := flag.String("user", os.Getenv("PULSE_USER_ID"), "viewer user id")
	userName := flag.String("name", os.Getenv("PULSE_USER_NAME"), "viewer display name")
	flag.Parse()

	if err := run(*configPath, *userID, *userName); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, userID, userName string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		// First run: fall back to defaults and write them out.
		cfg = config.Default()
		if saveErr := config.Save(cfg, configPath); saveErr != nil {
			return fmt.Errorf("writing default config: %w", saveErr)
		}
	}

	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	session := identity.NewSession()
	if userID == "" {
		userID = uuid.NewString()
	}
	if userName == "" {
		userName = "Guest"
	}
	session.Login(userID, userName)

	source, cleanup, err := buildSource(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	store := engagement.NewStore()
	orch := orchestrator.New(source, store, session, cfg.Feed.PageSize, logger)
	defer orch.Close()

	minIndicator, err := cfg.Gesture.GetMinIndicator()
	if err != nil {
		return fmt.Errorf("parsing gesture min_indicator: %w", err)
	}
	gest := gesture.NewController(gesture.Config{
		Threshold:    cfg.Gesture.PullThreshold,
		MaxDistance:  cfg.Gesture.MaxPullDistance,
		Damping:      cfg.Gesture.Damping,
		MinIndicator: minIndicator,
	}, orch.Refresh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := startSampler(ctx, cfg.Sampler, store, orch, source, logger); err != nil {
		return err
	}

	program := tea.NewProgram(
		tui.New(orch, gest),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

func newLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	var w io.Writer = io.Discard
	closeLog := func() {}
	if cfg.Path != "" {
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeLog = func() { f.Close() }
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeLog, nil
}

// buildSource picks the primary feed source and wraps it with the
// sqlite offline cache when a database path is configured.
func buildSource(cfg *config.Config, logger *slog.Logger) (feed.Source, func(), error) {
	var primary feed.Source
	switch {
	case cfg.API.BaseURL != "":
		primary = feed.NewClient(cfg.API.BaseURL, cfg.API.APIToken)
	case len(cfg.Feeds) > 0:
		primary = feed.NewRSSSource(cfg.Feeds)
	default:
		return nil, nil, fmt.Errorf("no feed source configured: set api.base_url or feeds in %s", config.DefaultConfigPath())
	}

	if cfg.Database.Path == "" {
		return primary, func() {}, nil
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache database: %w", err)
	}
	cached := feed.NewCachingSource(primary, db, cfg.Feed.MaxCachedItems, logger)
	return cached, func() { db.Close() }, nil
}

func startSampler(ctx context.Context, cfg config.SamplerConfig, store *engagement.Store, orch *orchestrator.Orchestrator, source feed.Source, logger *slog.Logger) error {
	tick, err := cfg.GetTick()
	if err != nil {
		return fmt.Errorf("parsing sampler tick: %w", err)
	}
	window, err := cfg.GetFlagWindow()
	if err != nil {
		return fmt.Errorf("parsing sampler flag_window: %w", err)
	}

	// A source that can push real counter deltas supersedes the
	// simulated heartbeat.
	var src sampler.Source
	if live, ok := source.(feed.LiveSource); ok {
		src = feed.NewLiveFanIn(live, orch.Items)
	} else {
		src = sampler.NewSimulatedSource(tick, cfg.Probability, cfg.Step, orch.Items, nil)
	}
	s := sampler.New(store, orch.Items, window, logger)
	go s.Run(ctx, src)
	return nil
}
