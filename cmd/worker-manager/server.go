// cmd/worker-manager/server.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"advocacy-workers/internal/common/camunda"
	"advocacy-workers/internal/common/database"
)

type checkFunc func(ctx context.Context) error

type server struct {
	http   *http.Server
	logger *zap.Logger
}

func newServer(addr string, ready checkFunc, log *zap.Logger) *server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", "")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err.Error())
			return
		}
		writeStatus(w, http.StatusOK, "ready", "")
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &server{
		http: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: log,
	}
}

func (s *server) run() {
	s.logger.Info("Health/Metrics server listening", zap.String("address", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Health/Metrics server failed", zap.Error(err))
	}
}

func (s *server) shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func writeStatus(w http.ResponseWriter, code int, status, reason string) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if reason != "" {
		body["error"] = reason
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// readinessCheck reports the first unreachable dependency.
func readinessCheck(zeebe *camunda.Client, pg *database.PostgresClient, redis *database.RedisClient) checkFunc {
	return func(ctx context.Context) error {
		if err := zeebe.HealthCheck(ctx); err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			return err
		}
		return redis.Ping(ctx)
	}
}
