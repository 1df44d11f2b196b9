package ipc

import (
	"io"
	"strings"
)

// FallbackPayload is printed when the daemon replied with only whitespace.
const FallbackPayload = `{"status": "error", "hint": "unknown"}`

// Render writes reply to w the way the CLI presents it: nothing when the
// daemon hung up silently, FallbackPayload for a blank reply, otherwise the
// trimmed payload unchanged.
func Render(w io.Writer, reply Reply) error {
	if reply.Closed {
		return nil
	}
	text := strings.TrimSpace(reply.Payload)
	if text == "" {
		text = FallbackPayload
	}
	_, err := io.WriteString(w, text+"\n")
	return err
}
