package logging

import (
	"context"
	"log/slog"
)

// requestIDHandler wraps another handler to inject a request_id attribute into all records.
type requestIDHandler struct {
	base      slog.Handler
	requestID string
}

func newRequestIDHandler(base slog.Handler, requestID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &requestIDHandler{base: base, requestID: requestID}
}

func (h *requestIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *requestIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldRequestID, h.requestID))
	return h.base.Handle(ctx, record)
}

func (h *requestIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &requestIDHandler{base: h.base.WithAttrs(attrs), requestID: h.requestID}
}

func (h *requestIDHandler) WithGroup(name string) slog.Handler {
	return &requestIDHandler{base: h.base.WithGroup(name), requestID: h.requestID}
}
