package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"toolbelt-mcp/internal/mcp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dropAll(ctx context.Context, s *Session, req *mcp.Request) *mcp.Response {
	return nil
}

func TestOpenRegistersSession(t *testing.T) {
	m := NewManager(dropAll, testLogger())
	s, err := m.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer m.Close(s.ID)

	if s.ID == "" {
		t.Error("session has no id")
	}
	if got, ok := m.Get(s.ID); !ok || got != s {
		t.Error("Get did not return the opened session")
	}
	if m.Count() != 1 {
		t.Errorf("count = %d, want 1", m.Count())
	}
}

func TestWorkerDispatchesInArrivalOrder(t *testing.T) {
	var mu sync.Mutex
	var handled []int
	route := func(ctx context.Context, s *Session, req *mcp.Request) *mcp.Response {
		mu.Lock()
		handled = append(handled, req.ID.(int))
		mu.Unlock()
		return mcp.NewResponse(req.ID, "ok")
	}
	m := NewManager(route, testLogger())
	s, err := m.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer m.Close(s.ID)

	const n = 20
	for i := 1; i <= n; i++ {
		req := &mcp.Request{JSONRPC: mcp.Version, ID: i, Method: "ping"}
		if err := m.Deliver(context.Background(), s.ID, req); err != nil {
			t.Fatalf("deliver %d: %v", i, err)
		}
	}

	for i := 1; i <= n; i++ {
		select {
		case resp := <-s.Events():
			if resp.ID.(int) != i {
				t.Fatalf("response %v arrived in position %d", resp.ID, i)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for response %d", i)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, id := range handled {
		if id != i+1 {
			t.Fatalf("dispatch order = %v", handled)
		}
	}
}

func TestNotificationsProduceNoEvent(t *testing.T) {
	route := func(ctx context.Context, s *Session, req *mcp.Request) *mcp.Response {
		if req.IsNotification() {
			return nil
		}
		return mcp.NewResponse(req.ID, "pong")
	}
	m := NewManager(route, testLogger())
	s, err := m.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer m.Close(s.ID)

	ctx := context.Background()
	notif := &mcp.Request{JSONRPC: mcp.Version, Method: "notifications/initialized"}
	if err := m.Deliver(ctx, s.ID, notif); err != nil {
		t.Fatalf("deliver notification: %v", err)
	}
	ping := &mcp.Request{JSONRPC: mcp.Version, ID: 7, Method: "ping"}
	if err := m.Deliver(ctx, s.ID, ping); err != nil {
		t.Fatalf("deliver ping: %v", err)
	}

	select {
	case resp := <-s.Events():
		if resp.ID.(int) != 7 {
			t.Errorf("first pushed event is %v, want the ping response", resp.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no response pushed")
	}
}

func TestCloseRunsCleanupExactlyOnce(t *testing.T) {
	var closes, dispatches atomic.Int32
	route := func(ctx context.Context, s *Session, req *mcp.Request) *mcp.Response {
		dispatches.Add(1)
		return nil
	}
	m := NewManager(route, testLogger())
	m.OnClose = func(*Session) { closes.Add(1) }

	s, err := m.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !m.Close(s.ID) {
		t.Fatal("close reported the session unknown")
	}
	if m.Close(s.ID) {
		t.Error("second close found the session still registered")
	}
	m.closeSession(s, "again")
	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if closes.Load() != 1 {
		t.Errorf("cleanup ran %d times, want 1", closes.Load())
	}
	if err := m.Deliver(context.Background(), s.ID, &mcp.Request{JSONRPC: mcp.Version, ID: 1, Method: "ping"}); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("deliver after close = %v, want ErrUnknownSession", err)
	}
	if dispatches.Load() != 0 {
		t.Errorf("dispatch ran %d times on a closed session", dispatches.Load())
	}
}

func TestDeliverToClosedSession(t *testing.T) {
	m := NewManager(dropAll, testLogger())
	s, err := m.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	m.Close(s.ID)

	err = s.deliver(context.Background(), &mcp.Request{JSONRPC: mcp.Version, ID: 1, Method: "ping"})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("deliver = %v, want ErrClosed", err)
	}
}

func TestCloseIdle(t *testing.T) {
	m := NewManager(dropAll, testLogger())
	fresh, err := m.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer m.Close(fresh.ID)
	stale, err := m.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	stale.mu.Lock()
	stale.lastActive = time.Now().Add(-time.Hour)
	stale.mu.Unlock()

	if n := m.CloseIdle(30 * time.Minute); n != 1 {
		t.Fatalf("closed %d sessions, want 1", n)
	}
	if _, ok := m.Get(stale.ID); ok {
		t.Error("stale session still open")
	}
	if _, ok := m.Get(fresh.ID); !ok {
		t.Error("fresh session was closed")
	}
	if n := m.CloseIdle(0); n != 0 {
		t.Errorf("ttl 0 closed %d sessions", n)
	}
}

func TestShutdownClosesAllAndRefusesNew(t *testing.T) {
	var closes atomic.Int32
	m := NewManager(dropAll, testLogger())
	m.OnClose = func(*Session) { closes.Add(1) }

	if _, err := m.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := m.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("count after shutdown = %d, want 0", m.Count())
	}
	if closes.Load() != 2 {
		t.Errorf("cleanup ran %d times, want 2", closes.Load())
	}
	if _, err := m.Open(); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("open after shutdown = %v, want ErrShuttingDown", err)
	}
}

func TestNewSweeperValidatesExpression(t *testing.T) {
	m := NewManager(dropAll, testLogger())

	if _, err := NewSweeper(m, "* * * * *", 30*time.Minute, testLogger()); err != nil {
		t.Errorf("standard expression rejected: %v", err)
	}
	if _, err := NewSweeper(m, "*/5 * * * *", 30*time.Minute, testLogger()); err != nil {
		t.Errorf("step expression rejected: %v", err)
	}
	if _, err := NewSweeper(m, "", 30*time.Minute, testLogger()); err == nil {
		t.Error("empty expression accepted")
	}
	if _, err := NewSweeper(m, "not a cron", 30*time.Minute, testLogger()); err == nil {
		t.Error("garbage expression accepted")
	}
	if _, err := NewSweeper(m, "* * * * * *", 30*time.Minute, testLogger()); err == nil {
		t.Error("six-field expression accepted")
	}
}

func TestSweeperStartStop(t *testing.T) {
	m := NewManager(dropAll, testLogger())

	disabled, err := NewSweeper(m, "* * * * *", 0, testLogger())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	disabled.Start()
	disabled.Stop()

	sw, err := NewSweeper(m, "* * * * *", time.Minute, testLogger())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	sw.Start()
	sw.Stop()
}
