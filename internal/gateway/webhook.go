package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// githubWebhookPayload covers the fields relwatch needs from the "release"
// and "create" event shapes.
type githubWebhookPayload struct {
	Action  string `json:"action"`
	RefType string `json:"ref_type"`
	Ref     string `json:"ref"`
	Release struct {
		TagName    string `json:"tag_name"`
		Prerelease bool   `json:"prerelease"`
		Draft      bool   `json:"draft"`
	} `json:"release"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// handleGitHubWebhook turns push-style platform events into immediate
// checks, so an update lands well before the next scheduled sweep. Only two
// events act as triggers: a published non-prerelease release, and a tag
// creation. Everything else is acknowledged and dropped, as are events for
// repositories relwatch does not monitor.
func (gw *Gateway) handleGitHubWebhook(w http.ResponseWriter, r *http.Request) {
	event := r.Header.Get("X-GitHub-Event")

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}
	var payload githubWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	triggers := false
	switch event {
	case "release":
		triggers = payload.Action == "published" && !payload.Release.Prerelease && !payload.Release.Draft
	case "create":
		triggers = payload.RefType == "tag"
	}
	if !triggers {
		writeJSON(w, http.StatusOK, map[string]any{"triggered": false, "reason": "event ignored"})
		return
	}

	repoID := payload.Repository.FullName
	if repoID == "" || !gw.runner.IsMonitored(repoID) {
		writeJSON(w, http.StatusOK, map[string]any{"triggered": false, "reason": "repository not monitored"})
		return
	}

	gw.metrics.WebhookTriggers.Inc()
	slog.Info("webhook triggered check", "event", event, "repo", repoID)

	// The check runs detached from the request: GitHub's delivery timeout is
	// short and the response only acknowledges the trigger.
	go func() {
		outcome := gw.runner.CheckRepository(context.Background(), repoID)
		gw.metrics.RecordOutcome(outcome)
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{"triggered": true, "repo": repoID})
}
