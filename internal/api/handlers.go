package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/urbantrend/cart-recall/internal/repo"
	"github.com/urbantrend/cart-recall/internal/scheduler"
	"github.com/urbantrend/cart-recall/internal/transport"
)

type Handler struct {
	sched   *scheduler.Scheduler
	users   repo.UserRepository
	inbound transport.Handler
}

func NewHandler(s *scheduler.Scheduler, users repo.UserRepository, inbound transport.Handler) *Handler {
	return &Handler{sched: s, users: users, inbound: inbound}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"running":       h.sched.IsRunning(),
		"skipped_ticks": h.sched.SkippedTicks(),
	})
}

func (h *Handler) SchedulerStart(w http.ResponseWriter, r *http.Request) {
	h.sched.Start()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func (h *Handler) SchedulerStop(w http.ResponseWriter, r *http.Request) {
	h.sched.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

type userItem struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Reminded  bool   `json:"reminded"`
	Reminders int    `json:"reminders"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	items := make([]userItem, 0, len(users))
	for _, u := range users {
		items = append(items, userItem{
			Name:      u.Name,
			Contact:   u.Contact,
			Reminded:  u.Reminded,
			Reminders: u.ReminderCount,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type inboundRequest struct {
	From string `json:"from"`
	Body string `json:"body"`
}

// Inbound is the provider's delivery webhook: it acks fast and hands the
// message to the router off the request goroutine.
func (h *Handler) Inbound(w http.ResponseWriter, r *http.Request) {
	var req inboundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.From == "" || req.Body == "" {
		http.Error(w, "from and body are required", http.StatusBadRequest)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go h.inbound(ctx, req.From, req.Body)

	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
