package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/lukinkratas/zapis-stavy/internal/config"
	"github.com/lukinkratas/zapis-stavy/internal/db"
	"github.com/lukinkratas/zapis-stavy/internal/handler"
	"github.com/lukinkratas/zapis-stavy/internal/job"
	"github.com/lukinkratas/zapis-stavy/internal/middleware"
	"github.com/lukinkratas/zapis-stavy/internal/model"
	"github.com/lukinkratas/zapis-stavy/internal/pkg/jwt"
	"github.com/lukinkratas/zapis-stavy/internal/pkg/password"
	"github.com/lukinkratas/zapis-stavy/internal/repo"
	"github.com/lukinkratas/zapis-stavy/internal/schedule"
	"github.com/lukinkratas/zapis-stavy/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "zapisstavy",
		Short: "meter readings backend",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (environment variables override it)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "apply migrations and serve the http api",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.ApplyMigrations(cmd.Context(), conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			return db.ApplyMigrations(cmd.Context(), conn)
		},
	}

	var page model.Page
	metersCmd := &cobra.Command{
		Use:   "meters",
		Short: "print every meter across all users as json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			store := repo.NewDB(conn, cfg.Database.AcquireTimeout())
			meters := service.NewMeterService(repo.NewMeterRepo(store), repo.NewReadingRepo(store))
			items, err := meters.ListAll(cmd.Context(), page)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		},
	}
	metersCmd.Flags().IntVar(&page.Offset, "offset", 0, "rows to skip")
	metersCmd.Flags().IntVar(&page.Limit, "limit", model.DefaultPageLimit, "rows to return")

	rootCmd.AddCommand(runCmd, migrateCmd, metersCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func bootstrap(configPath string) (*config.Config, *sql.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded",
		zap.String("config", configPath),
		zap.String("env", cfg.Env),
	)
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	return cfg, conn, nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	store := repo.NewDB(conn, cfg.Database.AcquireTimeout())
	userRepo := repo.NewUserRepo(store)
	meterRepo := repo.NewMeterRepo(store)
	readingRepo := repo.NewReadingRepo(store)

	hasher, err := password.NewHasher(cfg.Auth.PasswordAlgorithm)
	if err != nil {
		return err
	}
	issuer, err := jwt.NewIssuer([]byte(cfg.Auth.SecretKey), cfg.Auth.Algorithm, cfg.Auth.TokenTTL())
	if err != nil {
		return err
	}
	authService, err := service.NewAuthService(userRepo, hasher, issuer, service.AuthConfig{
		CacheSize: cfg.Auth.CacheSize,
		CacheTTL:  cfg.Auth.CacheTTL(),
	})
	if err != nil {
		return err
	}
	userService := service.NewUserService(userRepo, authService)
	meterService := service.NewMeterService(meterRepo, readingRepo)
	readingService := service.NewReadingService(readingRepo, meterRepo)

	deps := handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authService),
		Users:         handler.NewUserHandler(userService),
		Meters:        handler.NewMeterHandler(meterService),
		Readings:      handler.NewReadingHandler(readingService),
		Health:        handler.NewHealthHandler(store),
		Principals:    authService,
		AuthRateLimit: time.Duration(cfg.AuthRateLimitMs) * time.Millisecond,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.AccessLog(),
			middleware.CORS(cfg.CORSAllowOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewDBStatsJob(store), cfg.DBStatsCron); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(ctx).Info("http server listening",
		zap.String("addr", addr),
		zap.String("env", cfg.Env),
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
	)
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
