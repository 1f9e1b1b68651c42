package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"draftboard/internal/server"
	"draftboard/pkg/cache"
	"draftboard/pkg/config"
	"draftboard/pkg/diagram"
	"draftboard/pkg/errors"
	"draftboard/pkg/export"
	"draftboard/pkg/store"
)

// serveOpts holds options for the serve command.
type serveOpts struct {
	addr    string // override listen address from the config file
	open    string // diagram file to load on startup
	history int    // undo history depth
}

// newServeCmd creates the serve command.
func newServeCmd(configPath *string) *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor API server",
		Long:  `Serve runs the diagram editor as an HTTP API with websocket sync. Connected editors receive a diagram_updated event on every mutation and re-fetch the authoritative state.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.open, "open", "", "diagram file to load on startup")
	cmd.Flags().IntVar(&opts.history, "history", 0, "undo history depth (0 = unlimited)")
	return cmd
}

func runServe(ctx context.Context, configPath string, opts *serveOpts) error {
	logger := loggerFromContext(ctx)
	registerLogHooks(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}

	st, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())
	logger.Debug("storage ready", "backend", cfg.Storage.Backend)

	manager := diagram.NewManager(opts.history)
	if opts.open != "" {
		if _, err := manager.Open(opts.open); err != nil {
			return err
		}
		logger.Info("Loaded diagram", "path", opts.open)
	}

	renderer, err := newRenderer(cfg.Export)
	if err != nil {
		return err
	}

	srv := server.New(manager,
		server.WithStore(st),
		server.WithRenderer(renderer),
		server.WithLogger(logger),
	)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", cfg.Server.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	srv.Hub().Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

// openStore builds the persistence backend selected in the config.
func openStore(ctx context.Context, cfg config.Storage) (store.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	case "file", "":
		return store.NewFileStore(cfg.Dir)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown storage backend: %s", cfg.Backend)
	}
}

// newRenderer builds the export renderer, backed by the file cache unless
// caching is disabled.
func newRenderer(cfg config.Export) (*export.Renderer, error) {
	if cfg.NoCache {
		return export.NewRenderer(), nil
	}
	fc, err := cache.NewFileCache(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	return export.NewRenderer(export.WithCache(fc), export.WithTTL(cfg.TTL())), nil
}
