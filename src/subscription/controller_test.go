package subscription

import (
	"context"
	"sync"
	"testing"
	"time"

	"fincharts-viewer/src/helpers"
	"fincharts-viewer/src/interfaces"
	"fincharts-viewer/src/logger"
	"fincharts-viewer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeResolver struct {
	mu          sync.Mutex
	instruments map[string]*models.MInstrument
	err         error
	calls       []string
}

func (r *fakeResolver) ResolveInstrument(symbol string) (*models.MInstrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, symbol)
	if r.err != nil {
		return nil, r.err
	}
	return r.instruments[symbol], nil
}

// -----------------------------------------------------------------------------

type fakeChannel struct {
	mu         sync.Mutex
	ticks      chan models.MPricePoint
	connected  string
	closed     bool
	err        error
	connectErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{ticks: make(chan models.MPricePoint)}
}

func (f *fakeChannel) Connect(_ context.Context, instrumentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = instrumentID
	return nil
}

func (f *fakeChannel) Ticks() <-chan models.MPricePoint { return f.ticks }

func (f *fakeChannel) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeChannel) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ticks)
	}
}

func (f *fakeChannel) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// endStream simulates the server closing the websocket.
func (f *fakeChannel) endStream(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		f.err = err
		close(f.ticks)
	}
}

// -----------------------------------------------------------------------------

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *fakeNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// -----------------------------------------------------------------------------

type fakeExchanger struct {
	mu     sync.Mutex
	states []*models.MChartState
}

func (e *fakeExchanger) UpdateChartState(state *models.MChartState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.states = append(e.states, state)
}

func (e *fakeExchanger) Broadcast(interface{}) {}
func (e *fakeExchanger) Start() error          { return nil }
func (e *fakeExchanger) Stop() error           { return nil }

func (e *fakeExchanger) lastState() *models.MChartState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.states) == 0 {
		return nil
	}
	return e.states[len(e.states)-1]
}

// -----------------------------------------------------------------------------

type fixture struct {
	controller *Controller
	resolver   *fakeResolver
	notifier   *fakeNotifier
	exchanger  *fakeExchanger

	mu       sync.Mutex
	channels []*fakeChannel
}

func newFixture(instruments map[string]*models.MInstrument) *fixture {
	f := &fixture{
		resolver:  &fakeResolver{instruments: instruments},
		notifier:  &fakeNotifier{},
		exchanger: &fakeExchanger{},
	}
	factory := func() interfaces.IRealtimeChannel {
		f.mu.Lock()
		defer f.mu.Unlock()
		ch := newFakeChannel()
		f.channels = append(f.channels, ch)
		return ch
	}
	f.controller = NewController(f.resolver, factory, f.notifier, f.exchanger, logger.NewLogger("INFO", "test"))
	return f
}

func (f *fixture) channelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.channels)
}

func (f *fixture) channel(i int) *fakeChannel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channels[i]
}

func instrumentAAPL() map[string]*models.MInstrument {
	return map[string]*models.MInstrument{
		"AAPL": {ID: "abc123", Symbol: "AAPL", Kind: "stock"},
		"MSFT": {ID: "def456", Symbol: "MSFT", Kind: "stock"},
	}
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestSubscribeOpensChannelForResolvedInstrument(t *testing.T) {
	f := newFixture(instrumentAAPL())
	defer f.controller.Close()

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "AAPL"))

	require.Equal(t, 1, f.channelCount())
	assert.Equal(t, "abc123", f.channel(0).connected)
	assert.Equal(t, "AAPL", f.controller.CurrentSymbol())
	require.NotNil(t, f.controller.CurrentInstrument())
	assert.Equal(t, "abc123", f.controller.CurrentInstrument().ID)
	assert.False(t, f.controller.IsLoading())
	assert.Empty(t, f.controller.Series())
}

// -----------------------------------------------------------------------------

func TestUnknownSymbolNotifiesAndOpensNothing(t *testing.T) {
	f := newFixture(instrumentAAPL())
	defer f.controller.Close()

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "ZZZZ"))

	assert.Equal(t, 0, f.channelCount())
	assert.Contains(t, f.notifier.all(), "This symbol does not exist!")
	assert.Nil(t, f.controller.CurrentInstrument())
	assert.False(t, f.controller.IsLoading())
}

// -----------------------------------------------------------------------------

func TestResolveFailureNotifies(t *testing.T) {
	f := newFixture(nil)
	f.resolver.err = helpers.NewTransportError("instrument lookup", assert.AnError)
	defer f.controller.Close()

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "AAPL"))

	assert.Equal(t, 0, f.channelCount())
	messages := f.notifier.all()
	require.NotEmpty(t, messages)
	assert.Contains(t, messages[0], "An error occurred!")
}

// -----------------------------------------------------------------------------

func TestTicksAccumulateInArrivalOrder(t *testing.T) {
	f := newFixture(instrumentAAPL())
	defer f.controller.Close()

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "AAPL"))
	ch := f.channel(0)

	ch.ticks <- models.MPricePoint{TimestampMillis: 1000, Price: 10}
	ch.ticks <- models.MPricePoint{TimestampMillis: 2000, Price: 11}
	ch.ticks <- models.MPricePoint{TimestampMillis: 3000, Price: 12}

	require.Eventually(t, func() bool {
		return len(f.controller.Series()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	series := f.controller.Series()
	assert.Equal(t, []models.MPricePoint{
		{TimestampMillis: 1000, Price: 10},
		{TimestampMillis: 2000, Price: 11},
		{TimestampMillis: 3000, Price: 12},
	}, series)

	state := f.exchanger.lastState()
	require.NotNil(t, state)
	require.NotNil(t, state.Last)
	assert.Equal(t, 12.0, state.Last.Price)
}

// -----------------------------------------------------------------------------

func TestReissuingActiveSymbolIsNoOp(t *testing.T) {
	f := newFixture(instrumentAAPL())
	defer f.controller.Close()

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "AAPL"))
	ch := f.channel(0)
	ch.ticks <- models.MPricePoint{TimestampMillis: 1000, Price: 10}

	require.Eventually(t, func() bool {
		return len(f.controller.Series()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "AAPL"))

	// No teardown, no reconnect, no series reset.
	assert.Equal(t, 1, f.channelCount())
	assert.False(t, ch.isClosed())
	assert.Len(t, f.controller.Series(), 1)
}

// -----------------------------------------------------------------------------

func TestSwitchTearsDownPreviousChannelFirst(t *testing.T) {
	f := newFixture(instrumentAAPL())
	defer f.controller.Close()

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "AAPL"))
	first := f.channel(0)
	first.ticks <- models.MPricePoint{TimestampMillis: 1000, Price: 10}

	require.Eventually(t, func() bool {
		return len(f.controller.Series()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "MSFT"))

	assert.True(t, first.isClosed())
	require.Equal(t, 2, f.channelCount())
	assert.Equal(t, "def456", f.channel(1).connected)
	assert.Equal(t, "MSFT", f.controller.CurrentSymbol())
	// The old symbol's points never leak into the new series.
	assert.Empty(t, f.controller.Series())
}

// -----------------------------------------------------------------------------

func TestEmptySymbolIsIgnored(t *testing.T) {
	f := newFixture(instrumentAAPL())
	defer f.controller.Close()

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), ""))

	assert.Equal(t, 0, f.channelCount())
	assert.Empty(t, f.resolver.calls)
}

// -----------------------------------------------------------------------------

func TestConnectFailureNotifiesRestart(t *testing.T) {
	f := newFixture(instrumentAAPL())
	defer f.controller.Close()

	// Pre-build a channel that refuses to connect.
	f.controller.Factory = func() interfaces.IRealtimeChannel {
		ch := newFakeChannel()
		ch.connectErr = helpers.NewChannelError(assert.AnError)
		f.mu.Lock()
		f.channels = append(f.channels, ch)
		f.mu.Unlock()
		return ch
	}

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "AAPL"))

	assert.Contains(t, f.notifier.all(), "An error occurred, please start subscription again.")
	assert.Nil(t, f.controller.CurrentInstrument())
}

// -----------------------------------------------------------------------------

// A server-ended stream notifies the user and clears the channel handle, so
// re-issuing the same symbol starts a fresh subscription instead of no-oping.
func TestStreamEndAllowsSameSymbolRetry(t *testing.T) {
	f := newFixture(instrumentAAPL())
	defer f.controller.Close()

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "AAPL"))
	first := f.channel(0)

	first.endStream(helpers.NewStreamEndedError(assert.AnError))

	require.Eventually(t, func() bool {
		for _, message := range f.notifier.all() {
			if message == "An error occurred, please start subscription again." {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "AAPL"))

	require.Equal(t, 2, f.channelCount())
	assert.Equal(t, "abc123", f.channel(1).connected)
}

// -----------------------------------------------------------------------------

func TestCloseStopsEverything(t *testing.T) {
	f := newFixture(instrumentAAPL())

	require.NoError(t, f.controller.SetCurrentSubscription(context.Background(), "AAPL"))
	ch := f.channel(0)

	f.controller.Close()

	assert.True(t, ch.isClosed())
	assert.Empty(t, f.controller.CurrentSymbol())
	assert.Nil(t, f.controller.CurrentInstrument())
	assert.Nil(t, f.controller.Series())
}
