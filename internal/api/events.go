package api

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// streamEvents serves the live event feed as Server-Sent Events. The
// connection stays open for the life of the subscription; the subscriber
// slot is released as soon as the client disconnects.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	lg := zctx.From(r.Context())
	lg.Debug("Feed subscriber connected")

	events := h.feed.Subscribe(r.Context())
	enc := &jx.Encoder{}
	for ev := range events {
		enc.Reset()
		ev.Encode(enc)

		if _, err := w.Write([]byte("data: ")); err != nil {
			break
		}
		if _, err := w.Write(enc.Bytes()); err != nil {
			break
		}
		if _, err := w.Write([]byte("\n\n")); err != nil {
			break
		}
		flusher.Flush()
	}

	lg.Debug("Feed subscriber disconnected", zap.String("remote", r.RemoteAddr))
}
