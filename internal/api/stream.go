package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Spok95/solar-bom/internal/domain/completed"
)

// streamCompleted отдаёт отметки проекта как SSE: событие snapshot на каждую доставку
// трекера, комментарий keepalive по таймеру. Подписка снимается, когда клиент уходит.
func (h *Handler) streamCompleted(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	projectID := r.PathValue("id")

	// держим только последний снимок: каждый из них полный
	snapshots := make(chan []completed.Item, 1)
	push := func(items []completed.Item) {
		select {
		case <-snapshots:
		default:
		}
		snapshots <- items
	}

	unsubscribe, err := h.tracker.Subscribe(ctx, projectID, push)
	if err != nil {
		h.internalError(w, "subscribe completed", err)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.log.Debug("completed stream opened", "project_id", projectID)
	defer h.log.Debug("completed stream closed", "project_id", projectID)

	heartbeat := time.NewTicker(h.keepalive)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case items := <-snapshots:
			data, err := json.Marshal(toCompletedDTOs(items))
			if err != nil {
				h.log.Error("encode snapshot", "err", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
