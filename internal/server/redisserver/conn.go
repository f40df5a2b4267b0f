package redisserver

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/pkg/resp"
)

const (
	// readChunk is the size of one socket read.
	readChunk = 16 * 1024

	// maxInlineLen bounds an inline command line.
	maxInlineLen = 64 * 1024
)

// Conn represents a single client connection.
type Conn struct {
	id      string
	netConn net.Conn
	ip      string

	// buf holds bytes read but not yet decoded.
	buf bytes.Buffer
	bw  *bufio.Writer

	limiter *rate.Limiter
	quit    bool
	closed  atomic.Bool
}

func newConn(c net.Conn, bytesWritten prometheus.Counter) *Conn {
	var w io.Writer = c
	if bytesWritten != nil {
		w = &countingWriter{w: c, n: bytesWritten}
	}
	return &Conn{
		id:      newConnID(),
		netConn: c,
		ip:      remoteIP(c.RemoteAddr()),
		bw:      bufio.NewWriter(w),
	}
}

// ID returns the connection id.
func (c *Conn) ID() string {
	return c.id
}

// Close closes the underlying connection. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// writeReply encodes f into the write buffer.
func (c *Conn) writeReply(f resp.Frame) error {
	return resp.WriteFrame(c.bw, f)
}

// newConnID returns a lower-case ULID.
func newConnID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return ""
	}
	return strings.ToLower(id.String())
}

func remoteIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

type countingWriter struct {
	w io.Writer
	n prometheus.Counter
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n.Add(float64(n))
	return n, err
}

// serveConn runs the feed loop until the client leaves, a fatal protocol
// error occurs or the server shuts down.
func (s *Server) serveConn(ctx context.Context, c *Conn) {
	ctx = logger.WithLogger(ctx, s.logger)
	ctx = logger.WithConnID(ctx, c.id)
	ctx = logger.WithRemoteAddr(ctx, c.RemoteAddr().String())
	log := logger.L(ctx)

	defer func() {
		_ = c.Close()
		log.Info("connection closed")
	}()
	log.Info("connection accepted")

	chunk := make([]byte, readChunk)
	for {
		if !s.drain(ctx, c) {
			return
		}
		if c.bw.Buffered() > 0 {
			if err := c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				return
			}
			if err := c.bw.Flush(); err != nil {
				log.Debug("connection write error", "error", err)
				return
			}
		}
		if c.quit {
			return
		}
		if c.buf.Len() > s.cfg.MaxBuffer {
			s.fatal(ctx, c, errBufferLimit)
			return
		}

		// An empty buffer means the client is between commands and may
		// idle; a partial frame must complete within the read timeout.
		timeout := s.cfg.IdleTimeout
		if c.buf.Len() > 0 {
			timeout = s.cfg.ReadTimeout
		}
		if err := c.netConn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return
		}

		n, err := c.netConn.Read(chunk)
		if n > 0 {
			c.buf.Write(chunk[:n])
			if s.metrics != nil {
				s.metrics.BytesRead.Add(float64(n))
			}
		}
		if err != nil {
			var netErr net.Error
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
			case errors.As(err, &netErr) && netErr.Timeout():
				log.Debug("connection timed out")
			default:
				log.Debug("connection read error", "error", err)
			}
			return
		}
	}
}

// drain decodes and executes every complete request in the buffer. It
// returns false if the connection must be closed.
func (s *Server) drain(ctx context.Context, c *Conn) bool {
	for c.buf.Len() > 0 && !c.quit {
		var (
			req resp.Frame
			err error
		)
		if isInline(c.buf.Bytes()[0]) {
			req, err = readInline(&c.buf)
		} else {
			req, err = s.decoder.Decode(&c.buf)
		}
		if errors.Is(err, resp.ErrIncomplete) {
			return true
		}
		if err != nil {
			s.fatal(ctx, c, err)
			return false
		}
		if req == nil {
			continue
		}

		if err := c.writeReply(s.handler.Handle(ctx, c, req)); err != nil {
			return false
		}
	}
	return true
}

// fatal sends a best-effort error reply for a protocol error.
func (s *Server) fatal(ctx context.Context, c *Conn, err error) {
	kind := protocolErrorKind(err)
	logger.L(ctx).Warn("protocol error, closing connection", "kind", kind, "error", err)
	if s.metrics != nil {
		s.metrics.ProtocolErrors.WithLabelValues(kind).Inc()
	}

	reply := errorReply(errProtocol(err))
	if errors.Is(err, errBufferLimit) {
		reply = errorReply(err)
	}
	_ = c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	_ = c.writeReply(reply)
	_ = c.bw.Flush()
}

// isInline reports whether b starts an inline command rather than a RESP
// frame.
func isInline(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// readInline consumes one "NAME arg ...\r\n" line. A blank line yields a
// nil frame.
func readInline(buf *bytes.Buffer) (resp.Frame, error) {
	b := buf.Bytes()
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		if len(b) > maxInlineLen {
			return nil, resp.ErrLimitExceeded
		}
		return nil, resp.ErrIncomplete
	}
	if i > maxInlineLen {
		return nil, resp.ErrLimitExceeded
	}

	line := strings.TrimRight(string(b[:i]), "\r")
	buf.Next(i + 1)

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	req := make(resp.Array, len(fields))
	for k, f := range fields {
		req[k] = resp.BulkString(f)
	}
	return req, nil
}
