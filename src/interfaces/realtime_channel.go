package interfaces

import (
	"context"

	"fincharts-viewer/src/models"
)

// -----------------------------------------------------------------------------
// IRealtimeChannel defines the contract for one live streaming subscription.
// -----------------------------------------------------------------------------

type IRealtimeChannel interface {

	// -----------------------------------------------------------------------------

	// Connect dials the realtime endpoint and sends the l1-subscription frame
	// for the given instrument. Valid exactly once per channel instance.
	Connect(ctx context.Context, instrumentID string) error

	// -----------------------------------------------------------------------------

	// Ticks returns the inbound price stream in arrival order. The channel is
	// closed when the stream ends for any reason.
	Ticks() <-chan models.MPricePoint

	// -----------------------------------------------------------------------------

	// Err reports why the stream ended: nil after a caller-initiated Close,
	// *helpers.StreamEndedError when the server completed the stream, or a
	// *helpers.ChannelError for transport failures.
	Err() error

	// -----------------------------------------------------------------------------

	// Close tears the connection down. Idempotent; closing an already-closed
	// channel is a no-op. Returns once no further ticks will be delivered.
	Close()
}
