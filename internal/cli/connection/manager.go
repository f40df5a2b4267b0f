package connection

import (
	"context"
	"sync"

	"github.com/yndnr/respkv/pkg/resp"
)

// Manager holds the current connection and redials it after a failure.
type Manager struct {
	mu      sync.Mutex
	addr    string
	opts    Options
	current *Client
}

// NewManager creates a manager for addr. Nothing is dialed until the first
// command.
func NewManager(addr string, opts Options) *Manager {
	return &Manager{addr: addr, opts: opts}
}

// Addr returns the server address.
func (m *Manager) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addr
}

// Connect switches to addr, closing the current connection.
func (m *Manager) Connect(ctx context.Context, addr string) error {
	c, err := Dial(ctx, addr, m.opts)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		_ = m.current.Close()
	}
	m.addr = addr
	m.current = c
	return nil
}

// Client returns the current connection, dialing if there is none.
func (m *Manager) Client(ctx context.Context) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return m.current, nil
	}

	c, err := Dial(ctx, m.addr, m.opts)
	if err != nil {
		return nil, err
	}
	m.current = c
	return c, nil
}

// Do runs one command on the current connection. A transport failure
// drops the connection so the next call redials.
func (m *Manager) Do(ctx context.Context, args ...string) (resp.Frame, error) {
	c, err := m.Client(ctx)
	if err != nil {
		return nil, err
	}
	reply, err := c.Do(ctx, args...)
	if err != nil {
		m.Disconnect()
		return nil, err
	}
	return reply, nil
}

// Disconnect closes the current connection.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		_ = m.current.Close()
		m.current = nil
	}
}

// IsConnected returns true if a connection is open.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}
