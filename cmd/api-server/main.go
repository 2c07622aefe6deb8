package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mediastats/internal/analysis"
	"mediastats/internal/events"
	"mediastats/internal/runs"
	"mediastats/internal/upload"
	"mediastats/pkg/database"
	"mediastats/pkg/logger"
	"mediastats/pkg/utils"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "api-server",
		Short:        "Serve the catalog upload form, analysis API and run history",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := utils.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "mediastats.yaml", "YAML config file (optional)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cfg *utils.Config) error {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.OpenAndMigrate(database.Config{Path: cfg.DBPath})
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer db.Close()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(logger.Gin(log))
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	hub := events.NewHub(log.Named("events"))
	router.GET("/ws", events.WSHandler(hub))

	var tcpSrv *events.Server
	if cfg.EventsAddr != "" {
		tcpSrv = events.NewServer(cfg.EventsAddr, hub)
		// bind now so a taken port fails startup
		if err := tcpSrv.Listen(); err != nil {
			return fmt.Errorf("event feed: %w", err)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.DBPath})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	router.Static("/static/outputs", cfg.OutputDir)

	runRepo := runs.NewRepo(db)
	runs.NewHandler(runRepo).RegisterRoutes(router.Group("/runs"))

	svc := &upload.Service{
		Analyzer:  analysis.New(log.Named("analysis")),
		Runs:      runRepo,
		Hub:       hub,
		UploadDir: cfg.UploadDir,
		OutputDir: cfg.OutputDir,
		Log:       log.Named("upload"),
	}
	upload.NewHandler(svc, cfg.MaxUploadBytes()).RegisterRoutes(router)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	if tcpSrv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server listening", zap.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		log.Error("server error", zap.Error(runErr))
	}

	log.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			log.Warn("event feed shutdown", zap.Error(err))
		}
	}
	hub.CloseAll()

	wg.Wait()
	log.Info("servers stopped")
	return runErr
}
