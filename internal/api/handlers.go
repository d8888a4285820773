package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/adams-okode/messaging-gateway-service/internal/dispatch"
	"github.com/adams-okode/messaging-gateway-service/internal/model"
	"github.com/adams-okode/messaging-gateway-service/internal/repo"
	"github.com/adams-okode/messaging-gateway-service/internal/retry"
)

type Handler struct {
	svc     *dispatch.Service
	store   repo.MessageRepository
	sweeper *retry.Sweeper
}

// NewHandler wires the HTTP surface. sweeper may be nil when redelivery
// sweeping is disabled by configuration.
func NewHandler(svc *dispatch.Service, store repo.MessageRepository, sweeper *retry.Sweeper) *Handler {
	return &Handler{svc: svc, store: store, sweeper: sweeper}
}

// messageView is the API representation of a record; the entity itself
// carries no serialization concerns.
type messageView struct {
	ID        int64     `json:"id,omitempty"`
	Recipient string    `json:"recipient"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Retries   int       `json:"retries"`
	Subject   string    `json:"subject,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func toView(m model.Message) messageView {
	return messageView{
		ID:        m.ID,
		Recipient: m.Recipient,
		Type:      string(m.Type),
		Status:    string(m.Status),
		Retries:   m.Retries,
		Subject:   m.Subject,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toViews(msgs []model.Message) []messageView {
	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toView(m))
	}
	return out
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req dispatch.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	m, err := h.svc.Submit(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, toView(m))
	case errors.Is(err, dispatch.ErrInvalidRequest), errors.Is(err, dispatch.ErrUnsupportedChannel):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		// Transport could not take the message; the caller must know it
		// was not queued.
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	status := model.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = model.Pending
	}
	switch status {
	case model.Pending, model.Sent, model.Failed:
	default:
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 50)
	offset := parseInt(r.URL.Query().Get("offset"), 0)

	var items []model.Message
	var err error
	if typ := r.URL.Query().Get("type"); typ != "" {
		items, err = h.store.FindByTypeAndStatus(r.Context(), model.MessageType(typ), status, limit, offset)
	} else {
		items, err = h.store.FindByStatus(r.Context(), status, limit, offset)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": toViews(items)})
}

func (h *Handler) ListRetryEligible(w http.ResponseWriter, r *http.Request) {
	maxRetries := parseInt(r.URL.Query().Get("maxRetries"), 3)
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	offset := parseInt(r.URL.Query().Get("offset"), 0)

	items, err := h.store.FindEligibleToRetry(r.Context(), model.Pending, maxRetries, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": toViews(items)})
}

func (h *Handler) SweeperStatus(w http.ResponseWriter, r *http.Request) {
	if h.sweeper == nil {
		writeError(w, http.StatusServiceUnavailable, "retry sweeper disabled")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sweeper.IsRunning()})
}

func (h *Handler) SweeperStart(w http.ResponseWriter, r *http.Request) {
	if h.sweeper == nil {
		writeError(w, http.StatusServiceUnavailable, "retry sweeper disabled")
		return
	}
	h.sweeper.Start()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sweeper.IsRunning()})
}

func (h *Handler) SweeperStop(w http.ResponseWriter, r *http.Request) {
	if h.sweeper == nil {
		writeError(w, http.StatusServiceUnavailable, "retry sweeper disabled")
		return
	}
	h.sweeper.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sweeper.IsRunning()})
}

func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
