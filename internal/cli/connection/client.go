package connection

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/yndnr/respkv/pkg/resp"
)

// DefaultTimeout bounds dialing and each request.
const DefaultTimeout = 5 * time.Second

const readChunk = 16 * 1024

// Options configures a Client.
type Options struct {
	// Timeout bounds dialing and each round trip. 0 uses DefaultTimeout.
	Timeout time.Duration
	// TLSConfig enables TLS when set.
	TLSConfig *tls.Config
	// Limits bounds decoded replies.
	Limits resp.Limits
}

// Client sends commands to a RESP server and reads the replies. A Client
// is not safe for concurrent use.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	bw      *bufio.Writer
	buf     bytes.Buffer
	decoder *resp.Decoder
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string, opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialer := &net.Dialer{Timeout: timeout}
	var (
		conn net.Conn
		err  error
	)
	if opts.TLSConfig != nil {
		td := &tls.Dialer{NetDialer: dialer, Config: opts.TLSConfig}
		conn, err = td.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	limits := opts.Limits
	if limits == (resp.Limits{}) {
		limits = resp.DefaultLimits()
	}

	return &Client{
		addr:    addr,
		timeout: timeout,
		conn:    conn,
		bw:      bufio.NewWriter(conn),
		decoder: resp.NewDecoder(resp.WithLimits(limits)),
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends args as an array of bulk strings and returns the reply. A
// server error reply is returned as a resp.SimpleError frame, not an error.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Frame, error) {
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	req := make(resp.Array, len(args))
	for i, a := range args {
		req[i] = resp.BulkString(a)
	}
	return c.Send(ctx, req)
}

// Send writes an arbitrary frame and returns the next reply.
func (c *Client) Send(ctx context.Context, req resp.Frame) (resp.Frame, error) {
	if err := c.setDeadline(ctx); err != nil {
		return nil, err
	}
	if err := resp.WriteFrame(c.bw, req); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	if err := c.bw.Flush(); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return c.readReply()
}

// Pipeline writes every request before reading the replies, which come
// back in order.
func (c *Client) Pipeline(ctx context.Context, reqs ...resp.Frame) ([]resp.Frame, error) {
	if err := c.setDeadline(ctx); err != nil {
		return nil, err
	}
	for _, req := range reqs {
		if err := resp.WriteFrame(c.bw, req); err != nil {
			return nil, fmt.Errorf("write: %w", err)
		}
	}
	if err := c.bw.Flush(); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	replies := make([]resp.Frame, 0, len(reqs))
	for range reqs {
		reply, err := c.readReply()
		if err != nil {
			return replies, err
		}
		replies = append(replies, reply)
	}
	return replies, nil
}

// readReply decodes from the buffer, reading more from the socket until a
// whole frame is available.
func (c *Client) readReply() (resp.Frame, error) {
	chunk := make([]byte, readChunk)
	for {
		if c.buf.Len() > 0 {
			f, err := c.decoder.Decode(&c.buf)
			if err == nil {
				return f, nil
			}
			if !errors.Is(err, resp.ErrIncomplete) {
				return nil, fmt.Errorf("decode reply: %w", err)
			}
		}

		n, err := c.conn.Read(chunk)
		c.buf.Write(chunk[:n])
		if err != nil {
			if n > 0 && errors.Is(err, io.EOF) {
				continue
			}
			return nil, fmt.Errorf("read: %w", err)
		}
	}
}

func (c *Client) setDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.conn.SetDeadline(deadline)
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
