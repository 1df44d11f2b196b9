package ipc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// FrameDelimiter terminates every message on the socket.
const FrameDelimiter = '\n'

// LaunchRequest is the single message sent to the launcher daemon. Field order
// is the wire order.
type LaunchRequest struct {
	Directory   string       `json:"directory"`
	Command     string       `json:"command"`
	Package     string       `json:"package"`
	App         string       `json:"app"`
	SaveFilters []SaveFilter `json:"save_filters,omitempty"`
}

// SaveFilter selects files under the game directory that the daemon persists
// between runs: everything matching Include except paths matching Exclude.
// It travels as a two-element array: ["include", ["exclude", ...]].
type SaveFilter struct {
	Include string
	Exclude []string
}

// MarshalJSON encodes the filter in the daemon's tuple form.
func (f SaveFilter) MarshalJSON() ([]byte, error) {
	exclude := f.Exclude
	if exclude == nil {
		exclude = []string{}
	}
	return json.Marshal([]any{f.Include, exclude})
}

// UnmarshalJSON decodes the tuple form produced by MarshalJSON.
func (f *SaveFilter) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 2 {
		return fmt.Errorf("save filter: expected 2 elements, got %d", len(tuple))
	}
	var decoded SaveFilter
	if err := json.Unmarshal(tuple[0], &decoded.Include); err != nil {
		return fmt.Errorf("save filter include: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &decoded.Exclude); err != nil {
		return fmt.Errorf("save filter exclude: %w", err)
	}
	*f = decoded
	return nil
}

// EncodeFrame serializes req as one JSON line terminated by FrameDelimiter.
func EncodeFrame(req LaunchRequest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil {
		return nil, err
	}
	frame := buf.Bytes()
	// Encode terminates with exactly one newline; any other newline would split the frame.
	if bytes.IndexByte(frame, FrameDelimiter) != len(frame)-1 {
		return nil, errors.New("encoded frame spans multiple lines")
	}
	return frame, nil
}

// DecodeFrame parses one request frame; the trailing delimiter is optional.
func DecodeFrame(frame []byte) (LaunchRequest, error) {
	var req LaunchRequest
	line := bytes.TrimRight(frame, "\r\n")
	if err := json.Unmarshal(line, &req); err != nil {
		return LaunchRequest{}, fmt.Errorf("decode launch request: %w", err)
	}
	return req, nil
}
