package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// StatsReport is the JSON body served by the analytics endpoint: the
// aggregated library counters plus the time the report was generated.
type StatsReport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Library     AggregatedStats `json:"library"`
}

// StatsHandler serves library usage reports as JSON.
type StatsHandler struct {
	aggregator *Aggregator
	logger     *slog.Logger
	now        func() time.Time
}

func NewStatsHandler(aggregator *Aggregator) *StatsHandler {
	return &StatsHandler{
		aggregator: aggregator,
		logger:     slog.Default().With("component", "analytics-handler"),
		now:        time.Now,
	}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report := StatsReport{
		GeneratedAt: h.now().UTC(),
		Library:     h.aggregator.Stats(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Error("failed to write library stats report", "error", err)
	}
}
