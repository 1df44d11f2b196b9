package ipc_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hawarun/internal/ipc"
	"hawarun/internal/testsupport"
)

var scenarioRequest = ipc.LaunchRequest{
	Directory: "/games/foo",
	Command:   "run.sh --x",
	Package:   "org.foo",
	App:       "bar",
}

func newTestClient(socket string, opts ...func(*ipc.Options)) *ipc.Client {
	options := ipc.Options{
		SocketPath:      socket,
		ConnectTimeout:  time.Second,
		ResponseTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return ipc.NewClient(options)
}

func TestSendDeliversFrameAndReturnsReply(t *testing.T) {
	daemon := testsupport.StartFakeDaemon(t, testsupport.ReplyWith("{\"status\":\"ok\"}\n"))

	reply, err := newTestClient(daemon.Path()).Send(context.Background(), scenarioRequest)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	frames := daemon.Frames()
	if len(frames) != 1 {
		t.Fatalf("expected one frame, got %d", len(frames))
	}
	want := `{"directory":"/games/foo","command":"run.sh --x","package":"org.foo","app":"bar"}` + "\n"
	if frames[0] != want {
		t.Fatalf("unexpected frame:\n got %q\nwant %q", frames[0], want)
	}

	var out bytes.Buffer
	if err := ipc.Render(&out, reply); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if out.String() != "{\"status\":\"ok\"}\n" {
		t.Fatalf("unexpected rendered reply: %q", out.String())
	}
}

func TestSendReportsSilentClose(t *testing.T) {
	daemon := testsupport.StartFakeDaemon(t, testsupport.CloseSilently())

	reply, err := newTestClient(daemon.Path()).Send(context.Background(), scenarioRequest)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !reply.Closed || reply.Payload != "" {
		t.Fatalf("expected closed reply, got %+v", reply)
	}
}

func TestSendKeepsWhitespaceReplyForFallback(t *testing.T) {
	daemon := testsupport.StartFakeDaemon(t, testsupport.ReplyWith("   \n"))

	reply, err := newTestClient(daemon.Path()).Send(context.Background(), scenarioRequest)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if reply.Closed {
		t.Fatal("whitespace reply must not be treated as a silent close")
	}
	var out bytes.Buffer
	_ = ipc.Render(&out, reply)
	if out.String() != ipc.FallbackPayload+"\n" {
		t.Fatalf("expected fallback payload, got %q", out.String())
	}
}

func TestSendReadsOnlyFirstFrame(t *testing.T) {
	daemon := testsupport.StartFakeDaemon(t, testsupport.ReplyWith("{\"a\":1}\n{\"b\":2}\n"))

	reply, err := newTestClient(daemon.Path()).Send(context.Background(), scenarioRequest)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if reply.Payload != "{\"a\":1}\n" {
		t.Fatalf("unexpected payload: %q", reply.Payload)
	}
}

func TestSendAcceptsReplyWithoutDelimiterOnClose(t *testing.T) {
	daemon := testsupport.StartFakeDaemon(t, testsupport.ReplyWith(`{"status":"error","hint":"directory:invalid"}`))

	reply, err := newTestClient(daemon.Path()).Send(context.Background(), scenarioRequest)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if reply.Payload != `{"status":"error","hint":"directory:invalid"}` {
		t.Fatalf("unexpected payload: %q", reply.Payload)
	}
}

func TestSendReassemblesLargeReply(t *testing.T) {
	body := "{\"log\":\"" + strings.Repeat("x", 10000) + "\"}\n"
	daemon := testsupport.StartFakeDaemon(t, testsupport.ReplyWith(body))

	reply, err := newTestClient(daemon.Path()).Send(context.Background(), scenarioRequest)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if reply.Payload != body {
		t.Fatalf("expected %d bytes, got %d", len(body), len(reply.Payload))
	}
}

func TestSendTimesOutWhenDaemonStalls(t *testing.T) {
	daemon := testsupport.StartFakeDaemon(t, testsupport.Stall(5*time.Second))
	client := newTestClient(daemon.Path(), func(o *ipc.Options) {
		o.ResponseTimeout = 100 * time.Millisecond
	})

	start := time.Now()
	_, err := client.Send(context.Background(), scenarioRequest)
	var timeoutErr *ipc.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if !errors.Is(err, ipc.ErrTimeout) {
		t.Fatalf("expected ErrTimeout marker, got %v", err)
	}
	if timeoutErr.Timeout != 100*time.Millisecond {
		t.Fatalf("unexpected timeout recorded: %s", timeoutErr.Timeout)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("timeout took too long: %s", elapsed)
	}
}

func TestSendReturnsUndelimitedReplyWhenDaemonHoldsConnection(t *testing.T) {
	daemon := testsupport.StartFakeDaemon(t, testsupport.ReplyAndHold(`{"status":"ok"}`, 2*time.Second))
	client := newTestClient(daemon.Path(), func(o *ipc.Options) {
		o.ResponseTimeout = 200 * time.Millisecond
	})

	reply, err := client.Send(context.Background(), scenarioRequest)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if reply.Closed || reply.Payload != `{"status":"ok"}` {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestSendRejectsOversizedReply(t *testing.T) {
	daemon := testsupport.StartFakeDaemon(t, testsupport.ReplyWith(strings.Repeat("y", 4096)+"\n"))
	client := newTestClient(daemon.Path(), func(o *ipc.Options) {
		o.MaxResponseBytes = 1024
	})

	_, err := client.Send(context.Background(), scenarioRequest)
	var protoErr *ipc.ProtocolError
	if !errors.As(err, &protoErr) || !errors.Is(err, ipc.ErrProtocol) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestSendRejectsInvalidUTF8(t *testing.T) {
	daemon := testsupport.StartFakeDaemon(t, testsupport.ReplyWith("\xff\xfe\n"))

	_, err := newTestClient(daemon.Path()).Send(context.Background(), scenarioRequest)
	if !errors.Is(err, ipc.ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestSendClassifiesMissingSocket(t *testing.T) {
	socket := filepath.Join(testsupport.ShortTempDir(t), "absent.sock")

	_, err := newTestClient(socket).Send(context.Background(), scenarioRequest)
	assertConnectionReason(t, err, ipc.ReasonMissing)
}

func TestSendClassifiesRefusedSocket(t *testing.T) {
	socket := filepath.Join(testsupport.ShortTempDir(t), "stale.sock")
	listener, err := net.Listen("unix", socket)
	if err != nil {
		t.Skipf("cannot create unix socket: %v", err)
	}
	listener.(*net.UnixListener).SetUnlinkOnClose(false)
	_ = listener.Close()

	_, err = newTestClient(socket).Send(context.Background(), scenarioRequest)
	assertConnectionReason(t, err, ipc.ReasonRefused)
}

func TestSendClassifiesRegularFile(t *testing.T) {
	socket := testsupport.WriteFile(t, filepath.Join(testsupport.ShortTempDir(t), "plain.sock"), []byte("x"))

	_, err := newTestClient(socket).Send(context.Background(), scenarioRequest)
	assertConnectionReason(t, err, ipc.ReasonNotSocket)
}

func TestSendClassifiesPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses socket permissions")
	}
	daemon := testsupport.StartFakeDaemon(t, testsupport.CloseSilently())
	if err := os.Chmod(daemon.Path(), 0o000); err != nil {
		t.Fatalf("chmod socket: %v", err)
	}

	_, err := newTestClient(daemon.Path()).Send(context.Background(), scenarioRequest)
	assertConnectionReason(t, err, ipc.ReasonPermission)
	if daemon.Connections() != 0 {
		t.Fatalf("expected no accepted connections, got %d", daemon.Connections())
	}
}

func TestSendBoundsConnectPhase(t *testing.T) {
	client := ipc.NewClient(ipc.Options{
		SocketPath:     "/unused.sock",
		ConnectTimeout: 50 * time.Millisecond,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})

	_, err := client.Send(context.Background(), scenarioRequest)
	assertConnectionReason(t, err, ipc.ReasonTimeout)
}

func TestSendHonoursCancellationWhileWaiting(t *testing.T) {
	daemon := testsupport.StartFakeDaemon(t, testsupport.Stall(5*time.Second))
	client := newTestClient(daemon.Path(), func(o *ipc.Options) {
		o.ResponseTimeout = 5 * time.Second
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := client.Send(ctx, scenarioRequest)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSendClosesConnectionExactlyOnce(t *testing.T) {
	cases := map[string]struct {
		respond testsupport.Responder
		timeout time.Duration
	}{
		"reply":   {respond: testsupport.ReplyWith("ok\n"), timeout: time.Second},
		"silent":  {respond: testsupport.CloseSilently(), timeout: time.Second},
		"timeout": {respond: testsupport.Stall(2 * time.Second), timeout: 50 * time.Millisecond},
		"invalid": {respond: testsupport.ReplyWith("\xff\n"), timeout: time.Second},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			daemon := testsupport.StartFakeDaemon(t, tc.respond)
			var closes atomic.Int32
			client := ipc.NewClient(ipc.Options{
				SocketPath:      daemon.Path(),
				ResponseTimeout: tc.timeout,
				Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
					var d net.Dialer
					conn, err := d.DialContext(ctx, network, address)
					if err != nil {
						return nil, err
					}
					return &countingConn{Conn: conn, closes: &closes}, nil
				},
			})

			_, _ = client.Send(context.Background(), scenarioRequest)
			if got := closes.Load(); got != 1 {
				t.Fatalf("expected exactly one close, got %d", got)
			}
		})
	}
}

func TestSendIgnoresCloseFailure(t *testing.T) {
	daemon := testsupport.StartFakeDaemon(t, testsupport.ReplyWith("{\"status\":\"ok\"}\n"))
	client := ipc.NewClient(ipc.Options{
		SocketPath: daemon.Path(),
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, network, address)
			if err != nil {
				return nil, err
			}
			return &failingCloseConn{Conn: conn}, nil
		},
	})

	reply, err := client.Send(context.Background(), scenarioRequest)
	if err != nil {
		t.Fatalf("close failure must not surface, got %v", err)
	}
	if reply.Payload != "{\"status\":\"ok\"}\n" {
		t.Fatalf("unexpected payload: %q", reply.Payload)
	}
}

type countingConn struct {
	net.Conn
	closes *atomic.Int32
}

func (c *countingConn) Close() error {
	c.closes.Add(1)
	return c.Conn.Close()
}

type failingCloseConn struct {
	net.Conn
}

func (c *failingCloseConn) Close() error {
	_ = c.Conn.Close()
	return errors.New("close exploded")
}

func assertConnectionReason(t *testing.T, err error, want ipc.ConnectionReason) {
	t.Helper()
	var connErr *ipc.ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if !errors.Is(err, ipc.ErrConnection) {
		t.Fatalf("expected ErrConnection marker, got %v", err)
	}
	if connErr.Reason != want {
		t.Fatalf("expected reason %q, got %q (%v)", want, connErr.Reason, err)
	}
}
