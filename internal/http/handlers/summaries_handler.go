package handlers

import (
	"net/http"
	"time"

	"meterhub/internal/service"
)

// SummariesDeps are the reads the summary endpoint needs.
type SummariesDeps struct {
	Loader    *service.ContextLoader
	Summaries service.SummaryStore
}

// NewMeterSummaryHandler returns GET /summaries?meter_code=&date= handler.
func NewMeterSummaryHandler(deps SummariesDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meterCode := r.URL.Query().Get("meter_code")
		if meterCode == "" {
			writeError(w, http.StatusBadRequest, "meter_code is required")
			return
		}
		dateStr := r.URL.Query().Get("date")
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		mctx, err := deps.Loader.Load(r.Context(), meterCode)
		if err != nil {
			writeError(w, http.StatusNotFound, "meter not found")
			return
		}

		summary, err := deps.Summaries.SummaryFor(r.Context(), mctx.Meter.ID, day)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to fetch summary")
			return
		}
		if summary == nil {
			writeError(w, http.StatusNotFound, "no summary for that date")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
