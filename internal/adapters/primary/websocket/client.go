package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	"github.com/lorrc/performance-dashboard/internal/core/ports"
	"github.com/lorrc/performance-dashboard/internal/infrastructure/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 16 * 1024

	// Outbound events buffered per session.
	sendBuffer = 256
)

// ClientConfig tunes one session.
type ClientConfig struct {
	PingInterval time.Duration // must be less than PongWait
	PongWait     time.Duration
	MessageRPS   float64
	MessageBurst int
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.PongWait {
		c.PingInterval = (c.PongWait * 9) / 10
	}
	if c.MessageRPS <= 0 {
		c.MessageRPS = 20
	}
	if c.MessageBurst <= 0 {
		c.MessageBurst = 40
	}
	return c
}

// Client is one host page connected over WebSocket. It is the Host of the
// dashboard view it drives: every draw call becomes an outbound event.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan domain.Event
	userID string
	cfg    ClientConfig

	view    ports.DashboardView
	viewID  string
	limiter *rate.Limiter

	// mu protects layout and closed
	mu     sync.RWMutex
	layout domain.HostLayout
	closed bool

	libraryReady atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *slog.Logger
}

var _ ports.Host = (*Client)(nil)

// NewClient creates a session for an authenticated user. Attach must be
// called before the pumps start.
func NewClient(hub *Hub, conn *websocket.Conn, userID string, cfg ClientConfig, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	ctx = logging.WithUserID(ctx, userID)

	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan domain.Event, sendBuffer),
		userID:  userID,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.MessageRPS), cfg.MessageBurst),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.With("component", "websocket_client"),
	}
}

// Attach binds the view this session drives.
func (c *Client) Attach(view ports.DashboardView) {
	c.view = view
	c.viewID = view.ID()
	c.ctx = logging.WithViewID(c.ctx, c.viewID)
}

// UserID returns the authenticated host user.
func (c *Client) UserID() string { return c.userID }

// ViewID returns the id of the attached view.
func (c *Client) ViewID() string { return c.viewID }

// CloseSend closes the send channel exactly once. Later events are dropped.
func (c *Client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) emit(t domain.EventType, payload any) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return
	}
	select {
	case c.send <- domain.Event{Type: t, ViewID: c.viewID, Payload: payload}:
	default:
		c.logger.WarnContext(c.ctx, "send buffer full, dropping event", "event_type", t)
	}
}

func (c *Client) setLayout(elements []string) {
	layout := domain.FullLayout()
	if len(elements) > 0 {
		layout = domain.NewHostLayout(elements)
	}

	c.mu.Lock()
	c.layout = layout
	c.mu.Unlock()
}

// --- ports.Host ---

func (c *Client) Has(element string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layout.Has(element)
}

func (c *Client) Ready() bool {
	return c.libraryReady.Load()
}

func (c *Client) MountChart(chart domain.ChartInstance) {
	c.emit(domain.EventChartMount, domain.ChartMountPayload{
		ChartID: chart.ID.String(),
		Canvas:  chart.Canvas,
		Config:  chart.Config,
	})
}

func (c *Client) DestroyChart(chart domain.ChartInstance) {
	c.emit(domain.EventChartDestroy, domain.ChartRefPayload{ChartID: chart.ID.String(), Canvas: chart.Canvas})
}

func (c *Client) ResizeChart(chart domain.ChartInstance) {
	c.emit(domain.EventChartResize, domain.ChartRefPayload{ChartID: chart.ID.String(), Canvas: chart.Canvas})
}

func (c *Client) SetHTML(element, html string) {
	c.emit(domain.EventSetHTML, domain.ContentPayload{Element: element, Content: html})
}

func (c *Client) SetText(element, text string) {
	c.emit(domain.EventSetText, domain.ContentPayload{Element: element, Content: text})
}

func (c *Client) SetOptions(element string, options []domain.Option) {
	c.emit(domain.EventSetOptions, domain.OptionsPayload{Element: element, Options: options})
}

func (c *Client) SetProgress(element string, percent float64, band domain.Band) {
	c.emit(domain.EventSetProgress, domain.ProgressPayload{Element: element, Percent: percent, Band: band})
}

func (c *Client) Navigate(req domain.NavigationRequest) {
	c.emit(domain.EventNavigate, req)
}

func (c *Client) PublishState(state domain.StatePayload) {
	c.emit(domain.EventState, state)
}

// --- pumps ---

// ReadPump pumps messages from the websocket connection to the view. When
// the connection ends the view is unmounted and the client unregistered.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.cancel()
		c.view.Unmount()
		c.wg.Wait()
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		c.logger.ErrorContext(c.ctx, "failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.WarnContext(c.ctx, "websocket read error", "error", err)
			}
			return
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps events to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.ErrorContext(c.ctx, "failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				c.logger.DebugContext(c.ctx, "failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.ctx, "failed to send ping", "error", err)
				return
			}
		}
	}
}

// --- Incoming Message Handling ---

var errUnknownMessage = errors.New("unknown message type")

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// handleIncomingMessage dispatches one host message. Mounting and reloads
// run in the background so an UNMOUNT is never stuck behind a fetch; the
// rest complete before the next message is read.
func (c *Client) handleIncomingMessage(message []byte) {
	var msg domain.ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.WarnContext(c.ctx, "failed to unmarshal client message", "error", err)
		c.emit(domain.EventError, domain.ErrorPayload{Message: "malformed message"})
		return
	}

	if msg.Type == domain.MessagePing {
		c.emit(domain.EventPong, nil)
		return
	}
	if !c.limiter.Allow() {
		c.emit(domain.EventError, domain.ErrorPayload{Message: "too many messages"})
		return
	}

	switch msg.Type {
	case domain.MessageMount:
		var p domain.MountMessage
		if c.report(msg.Type, decodePayload(msg.Payload, &p)) {
			return
		}
		c.setLayout(p.Elements)
		c.libraryReady.Store(p.LibraryReady)
		c.async(msg.Type, func(ctx context.Context) error { return c.view.Mount(ctx, p) })

	case domain.MessageLibraryReady:
		c.libraryReady.Store(true)

	case domain.MessageFilterChanged:
		var p domain.FilterChangedMessage
		if c.report(msg.Type, decodePayload(msg.Payload, &p)) {
			return
		}
		c.report(msg.Type, c.view.ChangeFilter(c.ctx, p.Control, p.Value))

	case domain.MessageApplyFilters:
		var p domain.ApplyFiltersMessage
		if c.report(msg.Type, decodePayload(msg.Payload, &p)) {
			return
		}
		c.async(msg.Type, func(ctx context.Context) error { return c.view.ApplyFilters(ctx, p.Filters) })

	case domain.MessageRefresh:
		c.async(msg.Type, c.view.Refresh)

	case domain.MessageCardClicked:
		var p domain.CardClickedMessage
		if c.report(msg.Type, decodePayload(msg.Payload, &p)) {
			return
		}
		c.report(msg.Type, c.view.OpenCard(p.Action))

	case domain.MessageResize:
		c.view.Resize()

	case domain.MessageUnmount:
		c.view.Unmount()

	default:
		c.logger.DebugContext(c.ctx, "received unknown message type", "type", msg.Type)
		c.report(msg.Type, errUnknownMessage)
	}
}

func (c *Client) async(t domain.MessageType, fn func(ctx context.Context) error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.report(t, fn(c.ctx))
	}()
}

// report sends a rejected message back to the page. It returns true when
// err is non-nil.
func (c *Client) report(t domain.MessageType, err error) bool {
	if err == nil {
		return false
	}
	if c.ctx.Err() != nil {
		return true
	}
	c.logger.WarnContext(c.ctx, "message rejected", "type", t, "error", err)
	c.emit(domain.EventError, domain.ErrorPayload{Message: string(t) + ": " + err.Error()})
	return true
}
