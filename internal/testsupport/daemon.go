package testsupport

import (
	"bufio"
	"errors"
	"io"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// Responder decides what the fake daemon does after reading a request frame.
type Responder func(conn net.Conn)

// ReplyWith writes payload verbatim and closes the connection.
func ReplyWith(payload string) Responder {
	return func(conn net.Conn) {
		_, _ = io.WriteString(conn, payload)
	}
}

// CloseSilently hangs up without writing anything.
func CloseSilently() Responder {
	return func(net.Conn) {}
}

// Stall keeps the connection open without replying until the client hangs up
// or max elapses.
func Stall(max time.Duration) Responder {
	return func(conn net.Conn) {
		_ = conn.SetReadDeadline(time.Now().Add(max))
		_, _ = io.Copy(io.Discard, conn)
	}
}

// ReplyAndHold writes payload, then keeps the connection open until the
// client hangs up or hold elapses.
func ReplyAndHold(payload string, hold time.Duration) Responder {
	return func(conn net.Conn) {
		_, _ = io.WriteString(conn, payload)
		Stall(hold)(conn)
	}
}

// FakeDaemon is a Unix socket listener standing in for the launcher daemon.
// It records every request frame it receives.
type FakeDaemon struct {
	path     string
	listener net.Listener
	respond  Responder
	wg       sync.WaitGroup

	mu          sync.Mutex
	frames      []string
	connections int
}

// StartFakeDaemon listens on a fresh socket and serves until the test ends.
func StartFakeDaemon(t testing.TB, respond Responder) *FakeDaemon {
	t.Helper()

	path := filepath.Join(ShortTempDir(t), "launcher.sock")
	listener, err := net.Listen("unix", path)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping fake daemon: %v", err)
		}
		t.Fatalf("listen on socket: %v", err)
	}

	d := &FakeDaemon{path: path, listener: listener, respond: respond}
	d.wg.Add(1)
	go d.serve()
	t.Cleanup(d.Close)
	return d
}

func (d *FakeDaemon) serve() {
	defer d.wg.Done()
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		d.mu.Lock()
		d.connections++
		d.mu.Unlock()

		d.wg.Add(1)
		go func(c net.Conn) {
			defer d.wg.Done()
			defer c.Close()
			d.handle(c)
		}(conn)
	}
}

func (d *FakeDaemon) handle(conn net.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	d.mu.Lock()
	d.frames = append(d.frames, line)
	d.mu.Unlock()

	if d.respond != nil {
		d.respond(conn)
	}
}

// Path returns the socket path clients should dial.
func (d *FakeDaemon) Path() string {
	return d.path
}

// Frames returns the raw request frames received so far, delimiters included.
func (d *FakeDaemon) Frames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.frames...)
}

// Connections reports how many connections were accepted.
func (d *FakeDaemon) Connections() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connections
}

// Close stops accepting and waits for in-flight handlers.
func (d *FakeDaemon) Close() {
	_ = d.listener.Close()
	d.wg.Wait()
}
