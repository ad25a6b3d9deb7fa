package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/St1cky1/task-portal/internal/entity"
	"github.com/St1cky1/task-portal/internal/events"
)

const (
	streamBuffer      = 32
	keepAliveInterval = 25 * time.Second
)

type Subscriber interface {
	Subscribe(topic string, handler events.Handler) (unsubscribe func())
}

type TaskViewer interface {
	GetTask(ctx context.Context, session *entity.Session, taskID string) (*entity.Task, error)
}

// EventsHandler streams bus events for one topic as server-sent events.
type EventsHandler struct {
	bus    Subscriber
	tasks  TaskViewer
	logger *slog.Logger
}

func NewEventsHandler(bus Subscriber, tasks TaskViewer, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		bus:    bus,
		tasks:  tasks,
		logger: logger,
	}
}

// authorize allows a user topic only to its owner and a task topic to anyone
// who can view the task.
func (h *EventsHandler) authorize(ctx context.Context, session *entity.Session, topic string) error {
	switch {
	case strings.HasPrefix(topic, "user:"):
		if topic != entity.UserTopic(session.UserID) {
			return entity.ErrForbidden
		}
		return nil
	case strings.HasPrefix(topic, "task:"):
		taskID := strings.TrimPrefix(topic, "task:")
		if taskID == "" {
			return &entity.ValidationError{Field: "topic", Message: "task id is required"}
		}
		_, err := h.tasks.GetTask(ctx, session, taskID)
		return err
	default:
		return &entity.ValidationError{Field: "topic", Message: "topic must be task:<id> or user:<id>"}
	}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	session := mustSession(r)
	topic := r.URL.Query().Get("topic")
	if err := h.authorize(r.Context(), session, topic); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, h.logger, fmt.Errorf("response writer does not support streaming"))
		return
	}

	queue := make(chan entity.Event, streamBuffer)
	unsubscribe := h.bus.Subscribe(topic, func(ctx context.Context, event entity.Event) {
		select {
		case queue <- event:
		default:
			h.logger.Warn("slow event subscriber, event dropped",
				slog.String("topic", topic),
				slog.String("user_id", session.UserID))
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": subscribed\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event := <-queue:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("encoding event", slog.Any("err", err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}
