package live

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Status of a room subscription's underlying transport.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

const (
	defaultBackoffFloor = time.Second
	defaultBackoffCap   = 30 * time.Second
	defaultMaxAttempts  = 5
)

// Client maintains long-lived SSE subscriptions to room topics. Logical
// subscribers of the same room share one transport connection; the
// connection closes when the last one unsubscribes. Transport failures are
// retried with exponential backoff up to a bounded number of attempts,
// surfacing only as a status change, never as a hard error.
type Client struct {
	hubURL string
	httpc  *http.Client

	backoffFloor time.Duration
	backoffCap   time.Duration
	maxAttempts  int
	onStatus     func(roomKey string, st Status)

	mu    sync.Mutex
	conns map[string]*conn // roomKey -> shared transport
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithBackoff overrides the reconnect schedule: delays double from floor up
// to cap, for at most maxAttempts attempts.
func WithBackoff(floor, cap time.Duration, maxAttempts int) Option {
	return func(c *Client) {
		c.backoffFloor = floor
		c.backoffCap = cap
		c.maxAttempts = maxAttempts
	}
}

// WithStatusFunc registers a connection-status callback (Live / Connecting /
// Offline indicator).
func WithStatusFunc(fn func(roomKey string, st Status)) Option {
	return func(c *Client) { c.onStatus = fn }
}

// NewClient creates a client for the given hub endpoint
// (e.g. http://host/events).
func NewClient(hubURL string, opts ...Option) (*Client, error) {
	if hubURL == "" {
		return nil, fmt.Errorf("hub URL is required")
	}
	c := &Client{
		hubURL:       hubURL,
		httpc:        &http.Client{},
		backoffFloor: defaultBackoffFloor,
		backoffCap:   defaultBackoffCap,
		maxAttempts:  defaultMaxAttempts,
		conns:        make(map[string]*conn),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Subscribe registers a logical subscriber on the room's topic, opening the
// shared transport if it is not up yet. Close the returned subscription to
// release it.
func (c *Client) Subscribe(roomKey string, h Handlers) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	cn, ok := c.conns[roomKey]
	if !ok {
		cn = c.newConn(roomKey)
		c.conns[roomKey] = cn
		go cn.run()
	}

	sub := &Subscription{conn: cn}
	sub.handlers.Store(&h)

	cn.mu.Lock()
	cn.subs[sub] = struct{}{}
	cn.mu.Unlock()

	return sub
}

// Status reports the transport state for a room; rooms without a
// subscription are disconnected.
func (c *Client) Status(roomKey string) Status {
	c.mu.Lock()
	cn := c.conns[roomKey]
	c.mu.Unlock()
	if cn == nil {
		return StatusDisconnected
	}
	return cn.status()
}

// Close tears down every subscription.
func (c *Client) Close() {
	c.mu.Lock()
	conns := make([]*conn, 0, len(c.conns))
	for _, cn := range c.conns {
		conns = append(conns, cn)
	}
	c.conns = make(map[string]*conn)
	c.mu.Unlock()

	for _, cn := range conns {
		cn.cancel()
	}
}

func (c *Client) removeConn(cn *conn) {
	c.mu.Lock()
	if c.conns[cn.roomKey] == cn {
		delete(c.conns, cn.roomKey)
	}
	c.mu.Unlock()
	cn.cancel()
}

// Subscription is one logical subscriber sharing a room transport.
type Subscription struct {
	conn     *conn
	handlers atomic.Pointer[Handlers]
	once     sync.Once
}

// SetHandlers atomically replaces the dispatch table; the next delivered
// event sees the new record.
func (s *Subscription) SetHandlers(h Handlers) {
	s.handlers.Store(&h)
}

// Close unregisters the subscriber. The shared transport is closed when the
// last subscriber of the room is gone.
func (s *Subscription) Close() {
	s.once.Do(func() {
		cn := s.conn
		cn.mu.Lock()
		delete(cn.subs, s)
		last := len(cn.subs) == 0
		cn.mu.Unlock()

		if last {
			cn.client.removeConn(cn)
		}
	})
}

type conn struct {
	client  *Client
	roomKey string
	ctx     context.Context
	cancel  context.CancelFunc

	mu   sync.Mutex
	subs map[*Subscription]struct{}

	st atomic.Value // Status
}

func (c *Client) newConn(roomKey string) *conn {
	ctx, cancel := context.WithCancel(context.Background())
	cn := &conn{
		client:  c,
		roomKey: roomKey,
		ctx:     ctx,
		cancel:  cancel,
		subs:    make(map[*Subscription]struct{}),
	}
	cn.st.Store(StatusDisconnected)
	return cn
}

func (cn *conn) status() Status {
	return cn.st.Load().(Status)
}

func (cn *conn) setStatus(st Status) {
	if cn.st.Swap(st) == st {
		return
	}
	if fn := cn.client.onStatus; fn != nil {
		fn(cn.roomKey, st)
	}
}

// run owns the reconnect loop: connect, stream until failure, back off with
// doubling delay, stop after the attempt budget. A successful open resets
// the budget and the delay to its floor.
func (cn *conn) run() {
	defer cn.setStatus(StatusDisconnected)

	cl := cn.client
	attempts := 0
	delay := cl.backoffFloor

	for {
		cn.setStatus(StatusConnecting)

		opened, err := cn.stream()
		if cn.ctx.Err() != nil {
			return
		}
		if opened {
			attempts = 0
			delay = cl.backoffFloor
		}
		slog.Debug("live stream ended", "room", cn.roomKey, "err", err)

		attempts++
		if attempts > cl.maxAttempts {
			slog.Warn("live reconnect budget exhausted", "room", cn.roomKey)
			// drop the dead transport so a later Subscribe starts fresh
			cl.removeConn(cn)
			return
		}

		select {
		case <-cn.ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > cl.backoffCap {
			delay = cl.backoffCap
		}
	}
}

// stream opens one SSE connection and pumps events until it breaks. Returns
// whether the connection was successfully opened.
func (cn *conn) stream() (bool, error) {
	u, err := url.Parse(cn.client.hubURL)
	if err != nil {
		return false, err
	}
	q := u.Query()
	q.Set("topic", "room/"+cn.roomKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(cn.ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := cn.client.httpc.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("hub returned %s", resp.Status)
	}

	cn.setStatus(StatusConnected)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				cn.deliver(data.String())
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// comments and unknown fields are keep-alives, skip
		}
	}
	return true, scanner.Err()
}

// deliver parses one frame and fans it out to a snapshot of the current
// subscribers. A malformed frame is dropped without touching the stream.
func (cn *conn) deliver(raw string) {
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		slog.Warn("live message parse failed", "room", cn.roomKey, "err", err)
		return
	}

	cn.mu.Lock()
	subs := make([]*Subscription, 0, len(cn.subs))
	for s := range cn.subs {
		subs = append(subs, s)
	}
	cn.mu.Unlock()

	for _, s := range subs {
		s.handlers.Load().dispatch(msg)
	}
}
