package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sectorlock/internal/config"
	"github.com/matzehuels/sectorlock/pkg/journal"
	"github.com/matzehuels/sectorlock/pkg/observability"
	"github.com/matzehuels/sectorlock/pkg/server"
	"github.com/matzehuels/sectorlock/pkg/session"
)

// connectTimeout bounds how long serve waits for Redis or MongoDB.
const connectTimeout = 30 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	sessions string
	journal  string
	noCache  bool
}

// serveCommand runs the JSON HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Long: `Serve widget sessions over HTTP.

Sessions are kept in memory or in Redis (--sessions redis), so several
instances can share them. Adjusted and rejected placements are journaled
to the log or to MongoDB (--journal mongo).`,
		Example: `  sectorlock serve
  sectorlock serve --addr 0.0.0.0:9000 --sessions redis --journal mongo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if opts.addr != "" {
				cfg.Server.Addr = opts.addr
			}
			if opts.sessions != "" {
				cfg.Server.Sessions = opts.sessions
			}
			if opts.journal != "" {
				cfg.Server.Journal = opts.journal
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg, opts.noCache)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.sessions, "sessions", "", "session store: memory or redis")
	cmd.Flags().StringVar(&opts.journal, "journal", "", "journal sink: log, mongo or none")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render every frame afresh")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, noCache bool) error {
	observability.NewLogHooks(c.Logger).Install()
	defer observability.Reset()

	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	sink, err := c.openJournal(ctx, cfg)
	if err != nil {
		store.Close()
		return err
	}

	srv := server.New(
		server.WithStore(store),
		server.WithJournal(sink),
		server.WithCache(c.newCache(noCache)),
		server.WithLogger(c.Logger),
		server.WithSessionTTL(cfg.Server.SessionTTL),
		server.WithHoldInterval(cfg.Server.HoldInterval),
		server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
		server.WithControllerOptions(cfg.ControllerOptions()...),
	)

	printInfo("Serving on %s", StyleHighlight.Render("http://"+cfg.Server.Addr))
	printDetail("sessions: %s, journal: %s", cfg.Server.Sessions, cfg.Server.Journal)

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		return fmt.Errorf("serve %s: %w", cfg.Server.Addr, err)
	}
	printSuccess("Server stopped")
	return nil
}

// openStore opens the configured session store.
func (c *CLI) openStore(ctx context.Context, cfg config.Config) (session.Store, error) {
	if cfg.Server.Sessions != config.BackendRedis {
		return session.NewMemoryStore(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	spinner := newSpinnerWithContext(ctx, "Connecting to Redis at "+cfg.Redis.Addr+"...")
	spinner.Start()
	store, err := session.NewRedisStore(ctx, session.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	})
	if err != nil {
		spinner.StopWithError("Redis unavailable")
		return nil, err
	}
	spinner.StopWithSuccess("Connected to Redis")
	return store, nil
}

// openJournal opens the configured journal sink.
func (c *CLI) openJournal(ctx context.Context, cfg config.Config) (journal.Sink, error) {
	switch cfg.Server.Journal {
	case config.BackendNone:
		return journal.NopSink{}, nil
	case config.BackendMongo:
	default:
		return journal.NewLogSink(c.Logger), nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	spinner := newSpinnerWithContext(ctx, "Connecting to MongoDB...")
	spinner.Start()
	sink, err := journal.NewMongoSink(ctx, journal.MongoConfig{
		URI:        cfg.Mongo.URI,
		Database:   cfg.Mongo.Database,
		Collection: cfg.Mongo.Collection,
	})
	if err != nil {
		spinner.StopWithError("MongoDB unavailable")
		return nil, err
	}
	spinner.StopWithSuccess("Connected to MongoDB")
	return sink, nil
}
