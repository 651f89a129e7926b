package app

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/steward/internal/backend"
	"github.com/five82/steward/internal/config"
	"github.com/five82/steward/internal/logging"
	"github.com/five82/steward/internal/prefs"
	"github.com/five82/steward/internal/state"
	"github.com/five82/steward/internal/ui"
)

// Options configure a steward session.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/steward/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
	LogLevel   string // overrides the configured level when set
}

// Run boots the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logger, closer, err := logging.Open(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closer.Close()
	logger.Info().Str("api", cfg.APIBind).Str("config", opts.ConfigPath).Msg("steward starting")

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	client, err := backend.NewClient(cfg.APIBind,
		backend.WithToken(cfg.APIToken),
		backend.WithLogger(logging.Component(logger, "backend")),
	)
	if err != nil {
		return fmt.Errorf("init backend client: %w", err)
	}

	interval := cfg.PollInterval()
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	store := &state.Store{}
	model := ui.New(ui.Options{
		Context:   ctx,
		Config:    cfg,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Fetcher:   client,
		Store:     store,
		Logger:    logger,
	})

	StartPoller(ctx, store, sourcesFor(model.PollSources()), PollOptions{
		Interval: interval,
		Logger:   logger,
		OnUpdate: model.StoreUpdated,
	})

	err = ui.Run(ctx, model)
	logger.Info().Err(err).Msg("steward stopped")
	return err
}

func sourcesFor(polls []ui.PollSource) []Source {
	out := make([]Source, 0, len(polls))
	for _, p := range polls {
		out = append(out, Source{Resource: p.Resource, Fetch: p.Fetch})
	}
	return out
}
