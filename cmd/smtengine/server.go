package main

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vishalvchavan/streamsmt/internal/orchestrator"
	"github.com/vishalvchavan/streamsmt/internal/tree"
	"github.com/vishalvchavan/streamsmt/pkg/logger"
)

// newHTTPServer wires a minimal development harness around the
// orchestrator alongside the Prometheus metrics endpoint: POST a raw
// payload to /transform?topic=...&connector=... and get the projected
// record back, the same shape a Kafka Connect SMT or stream-processor
// host would invoke Process from in-process.
func newHTTPServer(addr string, reg *prometheus.Registry, o *orchestrator.Orchestrator, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/transform", func(w http.ResponseWriter, r *http.Request) {
		handleTransform(w, r, o, log)
	})

	return &http.Server{Addr: addr, Handler: mux}
}

func handleTransform(w http.ResponseWriter, r *http.Request, o *orchestrator.Orchestrator, log logger.Logger) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	partition, _ := strconv.Atoi(r.URL.Query().Get("partition"))
	rec := orchestrator.Record{
		ConnectorName: r.URL.Query().Get("connector"),
		Topic:         r.URL.Query().Get("topic"),
		Partition:     partition,
		Payload:       body,
	}

	out, err := o.Process(rec)
	if err != nil {
		log.Warnw("transform request failed", "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	encoded, err := tree.Encode(out)
	if err != nil {
		http.Error(w, "failed to encode projected record", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(encoded)
}

func shutdownHTTPServer(ctx context.Context, srv *http.Server, log logger.Logger) {
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnw("HTTP server shutdown did not complete cleanly", "error", err)
	}
}
