// Command api serve the job search HTTP api
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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Nishanth-cyber/Job-search/internal/config"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/logger"
	"github.com/Nishanth-cyber/Job-search/internal/server"
)

const app = "job-search"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "job-search serve job board api with resume screening",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-search.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("json"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDBInstance(&cfg.DB, log)
	if err != nil {
		log.Error("database failed to initialize", zap.Error(err))
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	if err := db.SeedAdmin(cfg.Admin); err != nil {
		log.Error("failed to seed admin", zap.Error(err))
		return err
	}

	comp, cleanup, err := server.BuildComponents(ctx, cfg, db, log)
	if err != nil {
		log.Error("failed to build components", zap.Error(err))
		return err
	}
	defer cleanup()

	srv := server.NewMyServer(cfg, db, comp, log).HTTPServer()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("server exited")
	return nil
}
