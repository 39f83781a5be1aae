package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binia1/hyobinwiki/internal/domain"
)

type staticCache struct {
	snap domain.Snapshot
}

func (c staticCache) Snapshot() domain.Snapshot { return c.snap.Clone() }

type fakeNotifier struct {
	mu  sync.Mutex
	fns map[int]func(domain.Snapshot)
	n   int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{fns: make(map[int]func(domain.Snapshot))}
}

func (f *fakeNotifier) OnSnapshot(fn func(domain.Snapshot)) func() {
	f.mu.Lock()
	id := f.n
	f.n++
	f.fns[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.fns, id)
		f.mu.Unlock()
	}
}

func (f *fakeNotifier) deliver(snap domain.Snapshot) {
	f.mu.Lock()
	fns := make([]func(domain.Snapshot), 0, len(f.fns))
	for _, fn := range f.fns {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (f *fakeNotifier) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fns)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type feedFixture struct {
	hub      *Hub
	notifier *fakeNotifier
	srv      *httptest.Server
	cancel   context.CancelFunc
	done     chan error
}

func startFeed(t *testing.T, initial domain.Snapshot, cfg Config) *feedFixture {
	t.Helper()

	notifier := newFakeNotifier()
	hub := NewHub(discardLogger(), staticCache{initial}, notifier, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()
	require.Eventually(t, func() bool { return notifier.subscribers() == 1 }, time.Second, 5*time.Millisecond)

	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &feedFixture{hub: hub, notifier: notifier, srv: srv, cancel: cancel, done: done}
}

func (f *feedFixture) dial(t *testing.T, header http.Header) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(f.srv.URL, "http"), header)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_SendsCacheOnConnect(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := startFeed(t, domain.Snapshot{
		"효빈광역시": {Content: "<p>도시</p>", History: []domain.Revision{{Rev: 53, User: domain.SystemLabel}}, LastUpdated: &now},
	}, Config{})

	msg := readMessage(t, f.dial(t, nil))

	assert.Equal(t, TypeSnapshot, msg.Type)
	require.Contains(t, msg.Articles, "효빈광역시")
	a := msg.Articles["효빈광역시"]
	assert.Equal(t, "<p>도시</p>", a.Content)
	assert.Equal(t, 53, a.History[0].Rev)
	assert.NotNil(t, a.Discuss)
	require.NotNil(t, a.LastUpdated)
	assert.True(t, now.Equal(*a.LastUpdated))
}

func TestHub_BroadcastsSnapshots(t *testing.T) {
	t.Parallel()

	f := startFeed(t, domain.Snapshot{}, Config{})
	first := f.dial(t, nil)
	second := f.dial(t, nil)

	assert.Empty(t, readMessage(t, first).Articles)
	assert.Empty(t, readMessage(t, second).Articles)
	require.Eventually(t, func() bool { return f.hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	f.notifier.deliver(domain.Snapshot{"중구": {Content: "새 문서"}})

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		require.Contains(t, msg.Articles, "중구")
		assert.Equal(t, "새 문서", msg.Articles["중구"].Content)
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	t.Parallel()

	f := startFeed(t, domain.Snapshot{}, Config{})
	conn := f.dial(t, nil)
	readMessage(t, conn)

	f.cancel()
	require.NoError(t, <-f.done)
	assert.Equal(t, 0, f.notifier.subscribers())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Equal(t, 0, f.hub.Clients())
}

func TestHub_DropsSlowClient(t *testing.T) {
	t.Parallel()

	hub := NewHub(discardLogger(), staticCache{domain.Snapshot{}}, newFakeNotifier(), Config{SendBuffer: 1})
	slow := &client{id: "slow", send: make(chan []byte, 1)}
	require.True(t, hub.add(slow))
	require.Equal(t, 1, hub.Clients())

	// The initial frame is still queued, so the next one cannot fit.
	hub.broadcast(domain.Snapshot{"a": {Content: "x"}})

	assert.Equal(t, 0, hub.Clients())
	_, open := <-slow.send
	assert.True(t, open, "queued initial frame is still delivered")
	_, open = <-slow.send
	assert.False(t, open, "send channel is closed after the drop")
}

func TestHub_CheckOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", nil, "", true},
		{"same origin by default", nil, "http://wiki.example", true},
		{"cross origin by default", nil, "http://evil.example", false},
		{"listed origin", []string{"https://app.example"}, "https://app.example", true},
		{"unlisted origin", []string{"https://app.example"}, "https://evil.example", false},
		{"wildcard", []string{"*"}, "https://any.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hub := NewHub(discardLogger(), staticCache{}, newFakeNotifier(), Config{AllowedOrigins: tt.allowed})
			req := httptest.NewRequest(http.MethodGet, "http://wiki.example/api/feed", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, hub.checkOrigin(req))
		})
	}
}

func TestHub_RejectsAfterShutdown(t *testing.T) {
	t.Parallel()

	f := startFeed(t, domain.Snapshot{}, Config{})
	f.cancel()
	require.NoError(t, <-f.done)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(f.srv.URL, "http"), nil)
	if err == nil {
		defer conn.Close()
		resp.Body.Close()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err = conn.ReadMessage()
	}
	assert.Error(t, err)
	assert.Equal(t, 0, f.hub.Clients())
}
