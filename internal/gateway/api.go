package gateway

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relwatch/relwatch/internal/notify"
)

// buildHandler wires all REST routes onto a new ServeMux.
func buildHandler(gw *Gateway) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", gw.handleHealth)

	mux.HandleFunc("GET /api/repos", gw.handleListRepos)
	mux.HandleFunc("GET /api/repos/{id...}", gw.handleGetRepo)
	mux.HandleFunc("POST /api/check", gw.handleCheckAll)
	mux.HandleFunc("POST /api/check/{id...}", gw.handleCheckOne)
	mux.HandleFunc("GET /api/alerts", gw.handleListAlerts)
	mux.HandleFunc("POST /api/test/{channel}", gw.handleTestChannel)

	mux.HandleFunc("POST /webhook/github", gw.handleGitHubWebhook)

	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

func (gw *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	gw.mu.Lock()
	lastSweep := gw.lastSweepAt
	gw.mu.Unlock()

	resp := map[string]any{
		"status": "ok",
		"uptime": time.Since(gw.startedAt).Round(time.Second).String(),
		"repos":  len(gw.runner.Repos()),
	}
	if !lastSweep.IsZero() {
		resp["last_sweep_at"] = lastSweep.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (gw *Gateway) handleListRepos(w http.ResponseWriter, r *http.Request) {
	recs, err := gw.store.ListRepositories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repositories": recs})
}

func (gw *Gateway) handleGetRepo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := gw.store.GetRepository(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "repository not tracked: "+id)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (gw *Gateway) handleCheckAll(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	summary := gw.runner.CheckAll(r.Context())
	gw.metrics.RecordSweep(summary, time.Since(start))

	gw.mu.Lock()
	gw.lastSweepAt = time.Now()
	gw.mu.Unlock()

	writeJSON(w, http.StatusOK, summary)
}

func (gw *Gateway) handleCheckOne(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !gw.runner.IsMonitored(id) {
		writeError(w, http.StatusNotFound, "repository not monitored: "+id)
		return
	}
	outcome := gw.runner.CheckRepository(r.Context(), id)
	gw.metrics.RecordOutcome(outcome)
	writeJSON(w, http.StatusOK, outcome)
}

func (gw *Gateway) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	repoID := r.URL.Query().Get("repo")
	limit := queryLimit(r, 50)
	recs, err := gw.store.ListAlertHistory(r.Context(), repoID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": recs})
}

func (gw *Gateway) handleTestChannel(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("channel")
	ch := gw.dispatcher.Channel(name)
	if ch == nil {
		writeError(w, http.StatusNotFound, "unknown channel: "+name)
		return
	}
	if !ch.IsConfigured() {
		writeError(w, http.StatusBadRequest, "channel not configured: "+name)
		return
	}
	if err := ch.Send(r.Context(), notify.TestAlert()); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"channel": name, "ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"channel": name, "ok": true})
}
