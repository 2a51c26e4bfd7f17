package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aristath/etfadvisor/internal/events"
	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// SnapshotMessage is the type of the first message on a session stream
const SnapshotMessage = "SNAPSHOT"

const (
	streamBuffer       = 32
	streamWriteTimeout = 5 * time.Second
	streamHeartbeat    = 30 * time.Second
)

// streamMessage is one frame pushed to a session stream
type streamMessage struct {
	Type      string      `json:"type"`
	Module    string      `json:"module,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// HandleStream handles GET /api/sessions/{id}/stream.
// It upgrades to a websocket, sends the current session as a snapshot and
// then forwards every event of that session until the client disconnects or
// the session ends.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.service.Get(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("session_id", id).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	// Incoming messages are ignored; CloseRead cancels ctx when the client goes away.
	ctx := conn.CloseRead(r.Context())

	eventChan := make(chan *events.Event, streamBuffer)
	unsubscribe := h.bus.Subscribe(func(event *events.Event) {
		if event.SessionID() != id {
			return
		}

		// Non-blocking send (drop if channel full)
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("session_id", id).
				Str("event_type", string(event.Type)).
				Msg("Stream channel full, dropping event")
		}
	})
	defer unsubscribe()

	h.log.Info().Str("session_id", id).Msg("Client connected to session stream")

	if err := h.send(ctx, conn, streamMessage{
		Type:      SnapshotMessage,
		Timestamp: time.Now(),
		Data:      session,
	}); err != nil {
		return
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Str("session_id", id).Msg("Client disconnected from session stream")
			return

		case event := <-eventChan:
			if err := h.send(ctx, conn, streamMessage{
				Type:      string(event.Type),
				Module:    event.Module,
				Timestamp: event.Timestamp,
				Data:      event.Data,
			}); err != nil {
				return
			}
			if event.Type == events.SessionDeleted || event.Type == events.SessionExpired {
				conn.Close(websocket.StatusNormalClosure, "session ended")
				return
			}

		case <-heartbeat.C:
			pingCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Str("session_id", id).Msg("Heartbeat failed")
				return
			}
		}
	}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg streamMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()

	if err := wsjson.Write(writeCtx, conn, msg); err != nil {
		h.log.Debug().Err(err).Str("type", msg.Type).Msg("Failed to write stream message")
		return err
	}
	return nil
}
