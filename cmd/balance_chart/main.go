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

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"balance_chart/internal/app/cache"
	"balance_chart/internal/app/port"
	"balance_chart/internal/app/provider"
	"balance_chart/internal/app/service"
	"balance_chart/internal/config"
	"balance_chart/internal/domain/entity"
	"balance_chart/internal/infrastructure/httpclient"
	"balance_chart/internal/infrastructure/restapi"
	"balance_chart/internal/pkg/logger"
	"balance_chart/internal/pkg/metrics"
	"balance_chart/internal/pkg/utils"
	"balance_chart/internal/tui"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("No .env file loaded: %v", err)
	}

	var configPath string

	rootCmd := &cobra.Command{
		Use:          "balance_chart",
		Short:        "Wallet token balance chart backed by the Bitquery GraphQL API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		utils.GetEnv("CONFIG_PATH", "config/config.yaml"), "Path to the YAML configuration file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the widget API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Show the balance chart in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), configPath)
		},
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	zapLogger, err := logger.New(cfg.Logging, false)
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.Init(zapLogger)
	zapLogger.Info("Configuration loaded", zap.String("path", configPath))

	metrics.MustRegisterMetrics()

	client := newBalanceClient(cfg, zapLogger)
	sessions := provider.NewSessionProvider(
		time.Duration(cfg.Cache.DefaultExpirationMinutes)*time.Minute,
		time.Duration(cfg.Cache.CleanupIntervalMinutes)*time.Minute,
		newOrchestratorFactory(cfg, client),
		logger.NewSlogAdapter(),
	)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := restapi.NewSessionHandler(ctx, sessions, cfg)
	router := restapi.SetupRouter(handler, cfg, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if waitErr := sessions.WaitContext(drainCtx); waitErr != nil {
		logger.Warn("Abandoning in-flight balance fetches", "error", waitErr)
	}

	if err != nil {
		zapLogger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	zapLogger.Info("Server exiting")
	return nil
}

func runTUI(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	zapLogger, err := logger.New(cfg.Logging, true)
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.Init(zapLogger)

	orchestrator := newOrchestratorFactory(cfg, newBalanceClient(cfg, zapLogger))()
	initial := entity.Selection{Network: cfg.Defaults.Network, Address: cfg.Defaults.Address}

	logger.Info("Terminal widget starting", "network", initial.Network, "address", initial.Address)
	err = tui.Run(ctx, tui.NewModel(ctx, orchestrator, cfg.Networks, initial))
	switch {
	case errors.Is(err, tea.ErrProgramKilled):
		logger.Debug("Terminal widget interrupted")
		return nil
	case err != nil:
		logger.Error("Terminal widget failed", "error", err)
		return err
	}
	logger.Info("Terminal widget closed")
	return nil
}

func newBalanceClient(cfg *config.Config, zapLogger *zap.Logger) port.BalanceClient {
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	return httpclient.NewBitqueryClient(
		cfg.Bitquery.Endpoint,
		cfg.Bitquery.APIKey,
		time.Duration(cfg.Bitquery.RequestTimeoutMillis)*time.Millisecond,
		limiter,
		zapLogger,
	)
}

func newOrchestratorFactory(cfg *config.Config, client port.BalanceClient) provider.OrchestratorFactory {
	presenter := service.NewPresenter(cfg.Chart.Palette)
	opts := service.OrchestratorOptions{SurfaceErrors: cfg.Fetch.SurfaceErrors}
	return func() *service.Orchestrator {
		return service.NewOrchestrator(client, cache.NewStore(), presenter, logger.NewSlogAdapter(), opts)
	}
}
