package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wikindex/internal/app"
	"github.com/kailas-cloud/wikindex/internal/config"
	dbRedis "github.com/kailas-cloud/wikindex/internal/db/redis"
	"github.com/kailas-cloud/wikindex/internal/db/sqlite"
	"github.com/kailas-cloud/wikindex/internal/i18n"
	logpkg "github.com/kailas-cloud/wikindex/internal/logger"
	"github.com/kailas-cloud/wikindex/internal/metrics"
	"github.com/kailas-cloud/wikindex/internal/permission"
	"github.com/kailas-cloud/wikindex/internal/usecase/enrich"
	"github.com/kailas-cloud/wikindex/internal/usecase/tree"
	"github.com/kailas-cloud/wikindex/internal/version"
)

// services is everything a command needs once config and storage are up.
type services struct {
	cfg        config.Config
	logger     *zap.Logger
	store      *sqlite.Store
	exclusions *config.Exclusions
	app        *app.App
}

func bootstrap(ctx context.Context, command string) (*services, error) {
	env := config.GetEnv()

	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting wikindex",
		zap.String("command", command),
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("db_path", cfg.Database.Path),
	)

	store, err := sqlite.NewStore(sqlite.Config{
		Path:         cfg.Database.Path,
		BusyTimeout:  time.Duration(cfg.Database.BusyTimeoutMs) * time.Millisecond,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		_ = store.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	// Register index metrics explicitly (no init())
	metrics.RegisterIndexMetrics()

	// Pass nil interface (not typed nil pointer!) when no policy is configured.
	var perms permission.Checker
	if len(cfg.Permissions) > 0 {
		perms = permission.NewNamespacePolicy(cfg.Permissions)
	}

	exclusions := config.NewExclusions(cfg.Exclusions)
	a := app.Wire(store, app.Settings{
		Namespaces:  cfg.NamespaceRegistry(),
		Exclusions:  exclusions,
		Messages:    i18n.New(cfg.Messages),
		Site:        enrich.Site{ArticlePath: cfg.Site.ArticlePath, UploadPath: cfg.Site.UploadPath},
		Permissions: perms,
		TreeLimits: tree.Limits{
			MaxDepth: cfg.Index.TreeMaxDepth,
			MaxNodes: cfg.Index.TreeMaxNodes,
		},
		PopulateBatch: cfg.Index.BatchSize,
	})

	return &services{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		exclusions: exclusions,
		app:        a,
	}, nil
}

// watchExclusions hot-reloads the exclusion lists until ctx is done.
func (s *services) watchExclusions(ctx context.Context) {
	if s.cfg.Path() == "" {
		return
	}
	go func() {
		if err := config.WatchExclusions(ctx, s.cfg.Path(), s.exclusions, s.logger); err != nil {
			s.logger.Warn("exclusion hot reload disabled", zap.Error(err))
		}
	}()
}

// openStream connects to the event stream configured under events.
func (s *services) openStream(ctx context.Context) (*dbRedis.Stream, error) {
	ev := s.cfg.Events
	stream, err := dbRedis.NewStream(dbRedis.Config{
		Addrs:    ev.Addrs,
		Username: ev.Username,
		Password: ev.Password,
		DB:       ev.DB,
		Stream:   ev.Stream,
		Group:    ev.Group,
		Consumer: ev.Consumer,
	})
	if err != nil {
		return nil, fmt.Errorf("create event stream: %w", err)
	}
	if err := stream.WaitForReady(ctx, time.Duration(s.cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		stream.Close()
		return nil, fmt.Errorf("event stream not ready: %w", err)
	}
	s.logger.Info("Connected to event stream",
		zap.Strings("addrs", ev.Addrs),
		zap.String("stream", ev.Stream),
		zap.String("group", ev.Group),
	)
	return stream, nil
}

func (s *services) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("close database", zap.Error(err))
	}
	_ = s.logger.Sync()
}
