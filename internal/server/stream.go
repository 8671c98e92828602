package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"markscan/internal/pipeline"
)

const (
	streamWriteWait = 10 * time.Second
	streamPongWait  = 60 * time.Second
	streamPingEvery = (streamPongWait * 9) / 10
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// streamMessage is one websocket frame. Type is "record", "done" or "error".
type streamMessage struct {
	Type       string          `json:"type"`
	Event      *pipeline.Event `json:"event,omitempty"`
	ScanID     string          `json:"scanId,omitempty"`
	Modules    int             `json:"modules,omitempty"`
	Components int             `json:"components,omitempty"`
	Marked     int             `json:"marked,omitempty"`
	Failures   int             `json:"failures,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// streamScan runs a scan and pushes each record to the client as its file
// completes, then a final done message carrying the stored scan ID.
func (h *Handler) streamScan(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("target"))

	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(streamPongWait)); err != nil {
		h.Log.Error(err, "stream set read deadline failed")
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	// The reader only services control frames; a closed client cancels the scan.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	writeCh := make(chan streamMessage, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(streamPingEvery)
		defer ticker.Stop()

		for {
			select {
			case out, ok := <-writeCh:
				if !ok {
					_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
				if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
					cancel()
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					cancel()
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
					cancel()
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	push := func(msg streamMessage) {
		select {
		case writeCh <- msg:
		case <-writerDone:
		}
	}

	report, err := h.runScan(ctx, target, func(ev pipeline.Event) {
		push(streamMessage{Type: "record", Event: &ev})
	})
	if err != nil {
		h.Log.Error(err, "streamed scan failed", "target", target)
		push(streamMessage{Type: "error", Message: err.Error()})
	} else {
		push(streamMessage{
			Type:       "done",
			ScanID:     report.ID,
			Modules:    len(report.Modules),
			Components: len(report.Components),
			Marked:     report.MarkedCount(),
			Failures:   len(report.Failures),
		})
	}
	close(writeCh)
	<-writerDone
}
