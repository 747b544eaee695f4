package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jpalmerr/queueboard/internal/store"
)

// handleSSE streams store updates via Server-Sent Events.
//
// The first event is a snapshot of the current status. Write deadlines keep
// a slow or disconnected client from pinning the handler goroutine.
func (s *Server) handleSSE(c *gin.Context) {
	w := c.Writer
	if _, ok := w.(http.Flusher); !ok {
		c.String(http.StatusInternalServerError, "SSE not supported")
		return
	}

	rc := http.NewResponseController(w)

	// may not be supported by every ResponseWriter
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.WithError(err).Debug("sse write deadlines not supported")
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe before the snapshot so no update falls in between
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	snapshot := store.Update{Action: store.ActionSnapshot, Status: s.store.Status()}
	if data, err := json.Marshal(snapshot); err == nil {
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	ctx := c.Request.Context()
	for {
		select {
		case update, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(update)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-ctx.Done():
			// fires on client disconnect and on server shutdown
			return
		}
	}
}
