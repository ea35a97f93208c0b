package subscription

import (
	"context"
	"errors"
	"sync"
	"time"

	"fincharts-viewer/src/helpers"
	"fincharts-viewer/src/interfaces"
	"fincharts-viewer/src/logger"
	"fincharts-viewer/src/models"
)

// -----------------------------------------------------------------------------

// ChannelFactory builds a fresh realtime channel for one subscription.
type ChannelFactory func() interfaces.IRealtimeChannel

// -----------------------------------------------------------------------------

// Controller holds the active subscription: it coordinates instrument
// resolution, the realtime channel and the chart-series accumulator, and
// enforces at most one live subscription at a time.
type Controller struct {
	Resolver  interfaces.IInstrumentResolver
	Factory   ChannelFactory
	Notifier  interfaces.INotifier
	Exchanger interfaces.IDataExchanger
	Logger    *logger.Logger

	// callMu serializes SetCurrentSubscription/Close so teardown of the
	// previous channel always completes before the next one connects.
	callMu sync.Mutex

	stateMu           sync.RWMutex
	currentSymbol     string
	currentInstrument *models.MInstrument
	series            []models.MPricePoint
	isLoading         bool

	channel      interfaces.IRealtimeChannel
	consumerStop chan struct{}
	consumerDone chan struct{}
}

// -----------------------------------------------------------------------------

func NewController(resolver interfaces.IInstrumentResolver, factory ChannelFactory, notifier interfaces.INotifier, exchanger interfaces.IDataExchanger, log *logger.Logger) *Controller {
	return &Controller{
		Resolver:  resolver,
		Factory:   factory,
		Notifier:  notifier,
		Exchanger: exchanger,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

// SetCurrentSubscription switches the live subscription to symbol.
//
// Re-issuing the currently active symbol while its channel is live is a no-op:
// no teardown, no reconnect, no series reset. After a server-ended stream the
// channel handle is nil, so retrying the same symbol starts fresh.
func (c *Controller) SetCurrentSubscription(ctx context.Context, symbol string) error {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	c.stateMu.RLock()
	active := symbol == c.currentSymbol && c.channel != nil
	c.stateMu.RUnlock()
	if symbol == "" || active {
		return nil
	}

	// Reset the accumulator and fully stop the previous channel before
	// anything about the new subscription begins.
	c.resetSeries()
	c.stopChannel()

	c.stateMu.Lock()
	c.currentSymbol = symbol
	c.isLoading = true
	c.stateMu.Unlock()
	c.publish()

	defer func() {
		c.stateMu.Lock()
		c.isLoading = false
		c.stateMu.Unlock()
		c.publish()
	}()

	instrument, err := c.Resolver.ResolveInstrument(symbol)
	if err != nil {
		c.Logger.Error("Failed to resolve %s: %v", symbol, err)
		c.Notifier.Notify("An error occurred! " + err.Error())
		c.setInstrument(nil)
		return nil
	}

	if instrument == nil {
		c.Notifier.Notify("This symbol does not exist!")
		c.stopChannel()
		c.setInstrument(nil)
		return nil
	}

	channel := c.Factory()
	if err := channel.Connect(ctx, instrument.ID); err != nil {
		c.Logger.Error("Failed to open realtime channel for %s: %v", symbol, err)
		c.Notifier.Notify("An error occurred, please start subscription again.")
		c.setInstrument(nil)
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})

	c.stateMu.Lock()
	c.currentInstrument = instrument
	c.channel = channel
	c.consumerStop = stop
	c.consumerDone = done
	c.stateMu.Unlock()

	go c.consume(channel, stop, done)
	return nil
}

// -----------------------------------------------------------------------------

// consume appends inbound ticks to the series in arrival order until the
// channel ends or the subscription is torn down.
func (c *Controller) consume(channel interfaces.IRealtimeChannel, stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case point, ok := <-channel.Ticks():
			if !ok {
				c.handleStreamEnd(channel)
				return
			}
			c.appendPoint(point)
		}
	}
}

// -----------------------------------------------------------------------------

func (c *Controller) handleStreamEnd(channel interfaces.IRealtimeChannel) {
	err := channel.Err()
	if err == nil {
		return
	}

	var streamEnded *helpers.StreamEndedError
	if errors.As(err, &streamEnded) {
		// Server completed the stream: clear the handle so the next
		// subscribe starts fresh.
		c.Notifier.Notify("An error occurred, please start subscription again.")
		c.stateMu.Lock()
		if c.channel == channel {
			c.channel = nil
		}
		c.stateMu.Unlock()
		c.publish()
		return
	}

	// Transport error: the channel already logged it.
	c.Logger.Warning("Realtime stream interrupted: %v", err)
}

// -----------------------------------------------------------------------------

// appendPoint replaces the series with a new sequence holding all prior
// points plus the new one.
func (c *Controller) appendPoint(point models.MPricePoint) {
	c.stateMu.Lock()
	next := make([]models.MPricePoint, len(c.series)+1)
	copy(next, c.series)
	next[len(next)-1] = point
	c.series = next
	c.stateMu.Unlock()

	c.publish()
}

// -----------------------------------------------------------------------------

// stopChannel closes the active channel and waits until its consumer has
// fully stopped, so no stale tick can land after a series reset.
func (c *Controller) stopChannel() {
	c.stateMu.Lock()
	channel := c.channel
	stop := c.consumerStop
	done := c.consumerDone
	c.channel = nil
	c.consumerStop = nil
	c.consumerDone = nil
	c.stateMu.Unlock()

	if stop != nil {
		close(stop)
	}
	if channel != nil {
		channel.Close()
	}
	if done != nil {
		<-done
	}
}

// -----------------------------------------------------------------------------

// Close tears the active subscription down (component destruction).
func (c *Controller) Close() {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	c.stopChannel()

	c.stateMu.Lock()
	c.currentSymbol = ""
	c.currentInstrument = nil
	c.series = nil
	c.stateMu.Unlock()
}

// -----------------------------------------------------------------------------
// State accessors
// -----------------------------------------------------------------------------

// Series returns the current chart series snapshot.
func (c *Controller) Series() []models.MPricePoint {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.series
}

// -----------------------------------------------------------------------------

// CurrentInstrument returns the instrument of the active subscription, or nil.
func (c *Controller) CurrentInstrument() *models.MInstrument {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.currentInstrument
}

// -----------------------------------------------------------------------------

// CurrentSymbol returns the symbol of the active subscription.
func (c *Controller) CurrentSymbol() string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.currentSymbol
}

// -----------------------------------------------------------------------------

// IsLoading reports whether a subscription switch is in progress.
func (c *Controller) IsLoading() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.isLoading
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (c *Controller) resetSeries() {
	c.stateMu.Lock()
	c.series = []models.MPricePoint{}
	c.stateMu.Unlock()
}

// -----------------------------------------------------------------------------

func (c *Controller) setInstrument(instrument *models.MInstrument) {
	c.stateMu.Lock()
	c.currentInstrument = instrument
	c.stateMu.Unlock()
}

// -----------------------------------------------------------------------------

// publish pushes the current chart state to the viewer clients.
func (c *Controller) publish() {
	if c.Exchanger == nil {
		return
	}

	c.stateMu.RLock()
	state := &models.MChartState{
		Type:       "UPDATE",
		Symbol:     c.currentSymbol,
		Instrument: c.currentInstrument,
		Series:     c.series,
		IsLoading:  c.isLoading,
		Timestamp:  time.Now().Unix(),
	}
	if n := len(c.series); n > 0 {
		last := c.series[n-1]
		state.Last = &last
	}
	c.stateMu.RUnlock()

	c.Exchanger.UpdateChartState(state)
	c.Exchanger.Broadcast(state)
}
