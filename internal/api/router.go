package api

import "net/http"

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", h.Health)

	mux.HandleFunc("POST /v1/messages", h.SubmitMessage)
	mux.HandleFunc("GET /v1/messages", h.ListMessages)
	mux.HandleFunc("GET /v1/messages/retry-eligible", h.ListRetryEligible)

	mux.HandleFunc("GET /v1/sweeper/status", h.SweeperStatus)
	mux.HandleFunc("POST /v1/sweeper/start", h.SweeperStart)
	mux.HandleFunc("POST /v1/sweeper/stop", h.SweeperStop)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("messaging-gateway-service"))
	})

	return mux
}
