package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/egysentiment/collector/internal/logger"
	"github.com/egysentiment/collector/internal/metrics"
)

// serveMonitoring exposes /health and /metrics for the long-lived collect
// deployment. It is opt-in; one-shot cron runs leave it off.
func serveMonitoring(port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Info("monitoring server starting", "port", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("monitoring server failed", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := http.StatusOK
	if healthy, ok := stats["is_healthy"].(bool); ok && !healthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     http.StatusText(status),
		"timestamp":  time.Now().Format(time.RFC3339),
		"last_error": stats["last_error"],
	})
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
