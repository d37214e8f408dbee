package events

import (
	"encoding/json"
	"ferreteria_server/api/middleware"
	"ferreteria_server/services"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MonkyMars/gecho"
)

// Stream pushes the session events to the client as server-sent events until
// the client disconnects or the session ends.
func (erm *EventRoutesManager) Stream(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.MustSession(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		gecho.InternalServerError(w, gecho.WithMessage("Streaming unsupported"), gecho.Send())
		return
	}

	events, detach := session.Subscribe(listenerBuffer)
	defer detach()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// Current state first, so a reconnecting client catches up
	if err := writeEvent(w, services.Event{Topic: services.TopicCatalogState, Data: session.Status()}); err != nil {
		return
	}
	if err := writeEvent(w, services.Event{Topic: services.TopicEditState, Data: session.Edit.View()}); err != nil {
		return
	}
	flusher.Flush()

	erm.logger.Debug("Event stream opened", gecho.Field("session_id", session.ID))
	defer erm.logger.Debug("Event stream closed", gecho.Field("session_id", session.ID))

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			if err := writeEvent(w, event); err != nil {
				erm.logger.Warn("Failed to write event", gecho.Field("topic", event.Topic), gecho.Field("error", err))
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			session.Touch()
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, event services.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Topic, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Topic, data)
	return err
}
