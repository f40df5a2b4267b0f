package connection

import (
	"context"
	"testing"

	"github.com/yndnr/respkv/pkg/resp"
)

func TestNewManager(t *testing.T) {
	m := NewManager("127.0.0.1:6379", Options{})
	if m.IsConnected() {
		t.Error("new manager should not be connected")
	}
	if m.Addr() != "127.0.0.1:6379" {
		t.Errorf("Addr() = %q", m.Addr())
	}
}

func TestManager_DialsLazily(t *testing.T) {
	addr := startServer(t)
	m := NewManager(addr, Options{})
	defer m.Disconnect()

	reply, err := m.Do(context.Background(), "PING")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if reply != resp.SimpleString("PONG") {
		t.Errorf("reply = %#v", reply)
	}
	if !m.IsConnected() {
		t.Error("IsConnected() should be true after a command")
	}
}

func TestManager_RedialsAfterQuit(t *testing.T) {
	addr := startServer(t)
	m := NewManager(addr, Options{})
	defer m.Disconnect()
	ctx := context.Background()

	if _, err := m.Do(ctx, "SET", "k", "v"); err != nil {
		t.Fatalf("SET: %v", err)
	}
	if _, err := m.Do(ctx, "QUIT"); err != nil {
		t.Fatalf("QUIT: %v", err)
	}

	// The server closed the socket; the first command fails and drops it.
	if _, err := m.Do(ctx, "GET", "k"); err == nil {
		t.Fatal("expected error on closed connection")
	}
	if m.IsConnected() {
		t.Error("connection should be dropped after a transport error")
	}

	reply, err := m.Do(ctx, "GET", "k")
	if err != nil {
		t.Fatalf("GET after redial: %v", err)
	}
	if got, _ := resp.Text(reply); got != "v" {
		t.Errorf("GET = %#v", reply)
	}
}

func TestManager_Connect(t *testing.T) {
	a := startServer(t)
	b := startServer(t)
	m := NewManager(a, Options{})
	defer m.Disconnect()
	ctx := context.Background()

	if _, err := m.Do(ctx, "SET", "where", "a"); err != nil {
		t.Fatalf("SET: %v", err)
	}
	if err := m.Connect(ctx, b); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if m.Addr() != b {
		t.Errorf("Addr() = %q, want %q", m.Addr(), b)
	}

	reply, err := m.Do(ctx, "GET", "where")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if !resp.IsNull(reply) {
		t.Errorf("GET on second server = %#v, want null", reply)
	}
}
