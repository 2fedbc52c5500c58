package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	IngestReading http.HandlerFunc
	MeterSummary  http.HandlerFunc
	SetMainDef    http.HandlerFunc
	Health        http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.IngestReading != nil {
		mux.Handle("/readings", method(http.MethodPost, routes.IngestReading))
	}
	if routes.MeterSummary != nil {
		mux.Handle("/summaries", method(http.MethodGet, routes.MeterSummary))
	}
	if routes.SetMainDef != nil {
		mux.Handle("/internal/templates/definitions/main", method(http.MethodPost, routes.SetMainDef))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
