package handler

import (
	"fmt"
	"net/http"

	"github.com/nomvote/nomvote/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "nomvote_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "nomvote_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "nomvote_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "nomvote_tokens_revoked_total %d\n", snap.TokensRevoked)

	writeMetric(w, "nomvote_auth_cache_hits_total %d\n", snap.AuthCacheHits)
	writeMetric(w, "nomvote_auth_cache_misses_total %d\n", snap.AuthCacheMisses)

	writeMetric(w, "nomvote_nominees_created_total %d\n", snap.NomineesCreated)
	writeMetric(w, "nomvote_nominees_updated_total %d\n", snap.NomineesUpdated)
	writeMetric(w, "nomvote_nominees_deleted_total %d\n", snap.NomineesDeleted)
	writeMetric(w, "nomvote_vote_requests_total %d\n", snap.VotesCast)
	writeMetric(w, "nomvote_votes_net %d\n", snap.VotesNet)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
