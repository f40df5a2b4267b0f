package redisserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/metric"
	"github.com/yndnr/respkv/pkg/resp"
)

func startTestServer(t *testing.T, cfg *Config, opts ...Option) *Server {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Addr = "127.0.0.1:0"

	srv := New(cfg, memory.New(memory.WithShards(4)), opts...)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

// rawClient speaks RESP over a bare TCP connection.
type rawClient struct {
	t    *testing.T
	conn net.Conn
	buf  bytes.Buffer
}

func dialRaw(t *testing.T, srv *Server) *rawClient {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &rawClient{t: t, conn: conn}
}

func (c *rawClient) send(s string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(s))
	require.NoError(c.t, err)
}

// read returns the next reply frame.
func (c *rawClient) read() resp.Frame {
	c.t.Helper()
	f, err := c.tryRead()
	require.NoError(c.t, err)
	return f
}

func (c *rawClient) tryRead() (resp.Frame, error) {
	chunk := make([]byte, 4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		f, err := resp.Decode(&c.buf)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, resp.ErrIncomplete) {
			return nil, err
		}
		n, err := c.conn.Read(chunk)
		c.buf.Write(chunk[:n])
		if err != nil {
			return nil, err
		}
	}
}

// expectClosed asserts that the server closes the connection.
func (c *rawClient) expectClosed() {
	c.t.Helper()
	_, err := c.tryRead()
	require.Error(c.t, err)
	assert.True(c.t, errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || strings.Contains(err.Error(), "reset"),
		"expected closed connection, got %v", err)
}

func TestServer_StartDisabled(t *testing.T) {
	srv := New(&Config{}, memory.New())
	require.NoError(t, srv.Start(context.Background()))
	assert.Nil(t, srv.Addr())
	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestServer_StartBindError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := New(&Config{Addr: ln.Addr().String()}, memory.New())
	assert.Error(t, srv.Start(context.Background()))
}

func TestServer_TLSRequiresConfig(t *testing.T) {
	srv := New(&Config{TLSAddr: "127.0.0.1:0"}, memory.New())
	assert.Error(t, srv.Start(context.Background()))
}

func TestServer_Ping(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dialRaw(t, srv)

	c.send("*1\r\n$4\r\nPING\r\n")
	assert.Equal(t, resp.SimpleString("PONG"), c.read())
}

func TestServer_Pipelining(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dialRaw(t, srv)

	c.send("*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n" +
		"*2\r\n$3\r\nGET\r\n$1\r\nk\r\n" +
		"*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n" +
		"*1\r\n$6\r\nDBSIZE\r\n")

	assert.Equal(t, resp.OK, c.read())
	assert.Equal(t, resp.BulkString("v"), c.read())
	assert.Equal(t, resp.BulkString("hi"), c.read())
	assert.Equal(t, resp.Integer(1), c.read())
}

func TestServer_FrameSplitAcrossWrites(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dialRaw(t, srv)

	req := "*2\r\n$4\r\nECHO\r\n$11\r\nhello world\r\n"
	for i := 0; i < len(req); i += 3 {
		c.send(req[i:min(i+3, len(req))])
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, resp.BulkString("hello world"), c.read())
}

func TestServer_InlineCommands(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dialRaw(t, srv)

	c.send("SET greeting hello\r\n\r\nGET greeting\nping\r\n")
	assert.Equal(t, resp.OK, c.read())
	assert.Equal(t, resp.BulkString("hello"), c.read())
	assert.Equal(t, resp.SimpleString("PONG"), c.read())
}

func TestServer_CommandErrorsKeepConnection(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dialRaw(t, srv)

	c.send("*1\r\n$3\r\nFOO\r\n")
	assert.Equal(t, resp.SimpleError("ERR unknown command 'FOO'"), c.read())

	c.send(":1\r\n")
	assert.Equal(t, resp.SimpleError("ERR Protocol error: expected array of bulk strings"), c.read())

	c.send("*1\r\n$4\r\nPING\r\n")
	assert.Equal(t, resp.SimpleString("PONG"), c.read())
}

func TestServer_FatalProtocolErrors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   *Config
		input string
		kind  string
	}{
		{
			name:  "invalid frame type",
			input: "?what\r\n",
			kind:  "invalid_frame_type",
		},
		{
			name:  "malformed length",
			input: "*x\r\n",
			kind:  "malformed",
		},
		{
			name:  "nesting too deep",
			cfg:   &Config{Limits: resp.Limits{MaxDepth: 2}},
			input: "*1\r\n*1\r\n*1\r\n:1\r\n",
			kind:  "limit_exceeded",
		},
		{
			name:  "buffer limit",
			cfg:   &Config{MaxBuffer: 64},
			input: "$1000\r\n" + strings.Repeat("x", 100),
			kind:  "buffer_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := metric.NewRegistry()
			srv := startTestServer(t, tt.cfg, WithMetrics(reg))
			c := dialRaw(t, srv)

			c.send("*1\r\n$4\r\nPING\r\n" + tt.input)
			assert.Equal(t, resp.SimpleString("PONG"), c.read())

			reply, ok := c.read().(resp.SimpleError)
			require.True(t, ok)
			assert.True(t, strings.HasPrefix(string(reply), "ERR Protocol error"), "reply %q", reply)

			c.expectClosed()
			assert.Equal(t, 1.0, testutil.ToFloat64(reg.ProtocolErrors.WithLabelValues(tt.kind)))
		})
	}
}

func TestServer_Quit(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dialRaw(t, srv)

	c.send("*1\r\n$4\r\nQUIT\r\n*1\r\n$4\r\nPING\r\n")
	assert.Equal(t, resp.OK, c.read())
	c.expectClosed()
}

func TestServer_MaxClients(t *testing.T) {
	reg := metric.NewRegistry()
	srv := startTestServer(t, &Config{MaxClients: 1}, WithMetrics(reg))

	first := dialRaw(t, srv)
	first.send("*1\r\n$4\r\nPING\r\n")
	require.Equal(t, resp.SimpleString("PONG"), first.read())

	second := dialRaw(t, srv)
	assert.Equal(t, resp.SimpleError("ERR max number of clients reached"), second.read())
	second.expectClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ConnectionsRejected.WithLabelValues("max_clients")))

	// The slot frees up once the first client leaves.
	require.NoError(t, first.conn.Close())
	require.Eventually(t, func() bool { return srv.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	third := dialRaw(t, srv)
	third.send("*1\r\n$4\r\nPING\r\n")
	assert.Equal(t, resp.SimpleString("PONG"), third.read())
}

func TestServer_RateLimit(t *testing.T) {
	srv := startTestServer(t, &Config{RateLimit: 0.001, RateBurst: 2})
	c := dialRaw(t, srv)

	c.send(strings.Repeat("*1\r\n$4\r\nPING\r\n", 3))
	assert.Equal(t, resp.SimpleString("PONG"), c.read())
	assert.Equal(t, resp.SimpleString("PONG"), c.read())
	assert.Equal(t, resp.SimpleError("ERR rate limit exceeded"), c.read())

	// Connections from the same IP share the budget.
	other := dialRaw(t, srv)
	other.send("*1\r\n$4\r\nPING\r\n")
	assert.Equal(t, resp.SimpleError("ERR rate limit exceeded"), other.read())
}

func TestServer_IdleTimeout(t *testing.T) {
	srv := startTestServer(t, &Config{IdleTimeout: 100 * time.Millisecond})
	c := dialRaw(t, srv)

	c.send("*1\r\n$4\r\nPING\r\n")
	require.Equal(t, resp.SimpleString("PONG"), c.read())
	c.expectClosed()
}

func TestServer_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	srv := startTestServer(t, nil, WithMetrics(reg))
	c := dialRaw(t, srv)

	c.send("*1\r\n$4\r\nPING\r\n")
	require.Equal(t, resp.SimpleString("PONG"), c.read())

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ConnectionsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ConnectionsActive))
	assert.Equal(t, float64(len("*1\r\n$4\r\nPING\r\n")), testutil.ToFloat64(reg.BytesRead))
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(reg.BytesWritten) == float64(len("+PONG\r\n"))
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CommandsTotal.WithLabelValues("PING", metric.StatusOK)))

	require.NoError(t, c.conn.Close())
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(reg.ConnectionsActive) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_ShutdownClosesConnections(t *testing.T) {
	srv := New(&Config{Addr: "127.0.0.1:0"}, memory.New())
	assert.False(t, srv.Running())
	require.NoError(t, srv.Start(context.Background()))
	assert.True(t, srv.Running())

	c := dialRaw(t, srv)
	c.send("*1\r\n$4\r\nPING\r\n")
	require.Equal(t, resp.SimpleString("PONG"), c.read())
	require.Equal(t, 1, srv.ClientCount())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.False(t, srv.Running())

	c.expectClosed()
	assert.Zero(t, srv.ClientCount())

	_, err := net.DialTimeout("tcp", srv.Addr().String(), 200*time.Millisecond)
	assert.Error(t, err)
}

func TestServer_ConnectionIDs(t *testing.T) {
	a := newConn(&net.TCPConn{}, nil)
	b := newConn(&net.TCPConn{}, nil)
	assert.Len(t, a.ID(), 26)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestReadInline(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("SET k v\r\nGET")

	f, err := readInline(&buf)
	require.NoError(t, err)
	assert.Equal(t, resp.Array{resp.BulkString("SET"), resp.BulkString("k"), resp.BulkString("v")}, f)

	_, err = readInline(&buf)
	assert.ErrorIs(t, err, resp.ErrIncomplete)
	assert.Equal(t, "GET", buf.String())

	buf.Reset()
	buf.WriteString(strings.Repeat("a", maxInlineLen+1))
	_, err = readInline(&buf)
	assert.ErrorIs(t, err, resp.ErrLimitExceeded)
}
