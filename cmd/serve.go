package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nigerian-states/internal/api"
	"github.com/sells-group/nigerian-states/internal/config"
	"github.com/sells-group/nigerian-states/internal/resilience"
)

var (
	servePort         int
	serveStoreChoices bool
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Serve the reference data as a JSON API",
	Annotations: map[string]string{modeAnnotation: config.ModeServe},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dir, err := initDirectory()
		if err != nil {
			return err
		}

		opts := []api.Option{api.WithSettings(choiceSettings())}

		if serveStoreChoices {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			opts = append(opts, api.WithChoicesSource(st))
		}

		if client := api.OpenRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB); client != nil {
			defer client.Close() //nolint:errcheck
			breaker := resilience.NewCircuitBreaker(resilience.BreakerConfig{
				OnStateChange: func(from, to resilience.CircuitState) {
					zap.L().Warn("redis cache circuit changed",
						zap.String("from", from.String()),
						zap.String("to", to.String()),
					)
				},
			})
			ttl := time.Duration(cfg.Cache.TTLSecs) * time.Second
			opts = append(opts, api.WithCache(api.NewRedisCache(client, ttl, breaker)))
			zap.L().Info("response cache enabled", zap.String("redis", cfg.Cache.RedisAddr), zap.Duration("ttl", ttl))
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		server := api.NewServer(dir, api.Config{
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
			CORSOrigins:    cfg.Server.CORSOrigins,
		}, opts...)
		srv := server.HTTPServer(fmt.Sprintf(":%d", port))

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("server shutdown failed", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveStoreChoices, "store-choices", false, "serve /choices from the database instead of the embedded fixture")
	rootCmd.AddCommand(serveCmd)
}
