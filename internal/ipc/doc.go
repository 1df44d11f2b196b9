// Package ipc delivers launch requests to the launcher daemon over its Unix
// domain socket and hands back whatever the daemon replied.
//
// The wire format is one JSON object terminated by a newline in each
// direction; the daemon reads until the delimiter, so EncodeFrame must keep
// the request on a single line. Replies are opaque: the client never parses
// or re-serializes them, it only trims whitespace and substitutes a fallback
// payload when nothing meaningful arrived.
//
// Failures are typed (ConnectionError, TimeoutError, ProtocolError) so the
// CLI can map them to distinct exit codes without string matching.
package ipc
