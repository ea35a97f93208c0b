package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fincharts-viewer/src/helpers"
	"fincharts-viewer/src/logger"
	"fincharts-viewer/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	realtimePath     = "/api/streaming/ws/v1/realtime"
	handshakeTimeout = 10 * time.Second
	writeWait        = 2 * time.Second
	subscriptionID   = "1"
)

// -----------------------------------------------------------------------------
// Channel state machine: Idle -> Connecting -> Subscribed -> (Closed | Errored)
// -----------------------------------------------------------------------------

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateSubscribed
	StateClosed
	StateErrored
)

// -----------------------------------------------------------------------------

// Channel owns exactly one live websocket connection for one subscription.
// The access token is read once at connect time; a token refreshed mid-session
// is picked up by the next channel, not by a live socket.
type Channel struct {
	Config *models.MConfig
	Logger *logger.Logger

	token func() string
	conn  *websocket.Conn
	ticks chan models.MPricePoint

	mu    sync.Mutex
	state State
	err   error

	closeOnce sync.Once
	done      chan struct{}
}

// -----------------------------------------------------------------------------

func NewChannel(cfg *models.MConfig, token func() string, log *logger.Logger) *Channel {
	return &Channel{
		Config: cfg,
		Logger: log,
		token:  token,
		ticks:  make(chan models.MPricePoint),
		done:   make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// Connect dials the realtime endpoint and sends the l1-subscription frame.
func (c *Channel) Connect(ctx context.Context, instrumentID string) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("channel is not idle")
	}
	c.state = StateConnecting
	c.mu.Unlock()

	url := fmt.Sprintf("%s%s?token=%s", c.Config.Fincharts.WsURI, realtimePath, c.token())

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		c.setFailure(helpers.NewChannelError(err))
		close(c.ticks)
		return helpers.NewChannelError(err)
	}
	c.conn = conn

	message := models.MSubscribeMessage{
		Type:         "l1-subscription",
		ID:           subscriptionID,
		InstrumentID: instrumentID,
		Provider:     c.Config.Fincharts.Provider,
		Subscribe:    true,
		Kinds:        []string{"last"},
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(message); err != nil {
		conn.Close()
		c.setFailure(helpers.NewChannelError(err))
		close(c.ticks)
		return helpers.NewChannelError(err)
	}

	c.mu.Lock()
	c.state = StateSubscribed
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// -----------------------------------------------------------------------------

// Ticks returns the inbound price stream. Closed when the stream ends.
func (c *Channel) Ticks() <-chan models.MPricePoint {
	return c.ticks
}

// -----------------------------------------------------------------------------

// Err reports why the stream ended (nil after a caller-initiated Close).
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// -----------------------------------------------------------------------------

// State returns the current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// -----------------------------------------------------------------------------

// Close tears the connection down. Idempotent. After Close returns no further
// ticks are delivered, even ones already in flight.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		c.state = StateClosed
		conn := c.conn
		c.mu.Unlock()

		if conn != nil {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		}
	})
}

// -----------------------------------------------------------------------------

// readLoop demultiplexes inbound frames. Only l1-update frames produce ticks;
// every other message type is dropped.
func (c *Channel) readLoop() {
	defer close(c.ticks)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.finish(err)
			return
		}

		var msg models.MRealTimeMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.Logger.Debug("Dropping malformed frame: %v", err)
			continue
		}
		if msg.Type != models.RealTimeMessageTypeL1Update {
			continue
		}

		ts, err := time.Parse(time.RFC3339, msg.Last.Timestamp)
		if err != nil {
			c.Logger.Warning("Dropping l1-update with bad timestamp %q: %v", msg.Last.Timestamp, err)
			continue
		}

		point := models.MPricePoint{
			TimestampMillis: ts.UnixMilli(),
			Price:           msg.Last.Price,
		}

		select {
		case c.ticks <- point:
		case <-c.done:
			return
		}
	}
}

// -----------------------------------------------------------------------------

// finish records why the read loop ended.
func (c *Channel) finish(cause error) {
	select {
	case <-c.done:
		// Caller-initiated close; not an error.
		return
	default:
	}

	if websocket.IsCloseError(cause, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.setFailure(helpers.NewStreamEndedError(cause))
		return
	}

	c.Logger.Error("WebSocket error: %v", cause)
	c.setFailure(helpers.NewChannelError(cause))
}

// -----------------------------------------------------------------------------

func (c *Channel) setFailure(err error) {
	c.mu.Lock()
	c.state = StateErrored
	c.err = err
	c.mu.Unlock()
}
