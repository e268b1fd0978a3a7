package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"audio_bridge/internal/config"
	"audio_bridge/internal/daemon"
	"audio_bridge/internal/handlers"
	"audio_bridge/internal/logger"
	"audio_bridge/internal/repository"
	"audio_bridge/internal/repository/db"
	"audio_bridge/internal/server"
	"audio_bridge/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConfigPath = "configs/config.yml"
	shutdownTimeout   = 10 * time.Second
	// headroom on top of a full daemon exchange before the HTTP write times out
	writeSlack = 5 * time.Second
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bridge",
		Short:        "HTTP to TCP command bridge for the audio daemon",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newWatchCmd(), newSendCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge HTTP server and the peak monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				// level unknown until the config loads
				logger.Get(logger.InfoLevel).Errorw("error reading config", "err", err, "path", cfgPath)
				return err
			}
			if err := serve(cmd.Context(), cfg); err != nil {
				logger.Get(cfg.LogLevel).Errorw("bridge_stopped", "err", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", defaultConfigPath, "path to config.yml")
	return cmd
}

func serve(parent context.Context, cfg *config.Config) error {
	log := logger.Get(cfg.LogLevel)

	repos, closeDB, err := openRepos(cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	// wire dependencies
	exchanger := daemon.NewClient(
		daemon.WithDialTimeout(cfg.DialTimeout),
		daemon.WithReadTimeout(cfg.ReadTimeout),
	)
	services := service.NewService(repos, service.DaemonParams{
		Address:  cfg.DaemonAddress,
		BasePort: cfg.DaemonPort,
	}, exchanger, log.Named("service"))
	apiHandler := handlers.NewHandler(services, log.Named("http"))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	srv := server.New(writeTimeoutFor(cfg))

	g.Go(func() error {
		log.Infow("http_server_started",
			"port", cfg.HTTPPort,
			"daemon", fmt.Sprintf("%s:%d", cfg.DaemonAddress, cfg.DaemonPort),
			"audit", repos != nil,
		)
		if err := srv.Run(cfg.HTTPPort, apiHandler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.MonitorEnabled {
		g.Go(func() error {
			services.PeakMonitor.Run(gctx, cfg.MonitorInterval)
			return nil
		})
	}

	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// writeTimeoutFor bounds HTTP writes just past a full daemon exchange. With no
// daemon read timeout there is no bound either.
func writeTimeoutFor(cfg *config.Config) time.Duration {
	if cfg.ReadTimeout <= 0 {
		return 0
	}
	return cfg.DialTimeout + cfg.ReadTimeout + writeSlack
}

// openRepos opens the audit database. With auditing disabled it returns nil
// repositories and a no-op close.
func openRepos(cfg *config.Config, log *logger.Logger) (*repository.Repository, func(), error) {
	if !cfg.AuditEnabled {
		log.Infow("audit log disabled")
		return nil, func() {}, nil
	}
	sqlDB, err := db.InitDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("init sqlite: %w", err)
	}
	closeDB := func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}
	return repository.NewRepository(sqlDB), closeDB, nil
}
