package interfaces

import "fincharts-viewer/src/models"

// -----------------------------------------------------------------------------
// IInstrumentResolver defines the contract for symbol -> instrument lookup.
// -----------------------------------------------------------------------------

type IInstrumentResolver interface {

	// -----------------------------------------------------------------------------

	// ResolveInstrument returns the first instrument matching the symbol, or
	// nil when the symbol matches nothing (an empty result is not an error).
	ResolveInstrument(symbol string) (*models.MInstrument, error)
}

// -----------------------------------------------------------------------------
// IHistoryFetcher defines the contract for historical bar queries.
// -----------------------------------------------------------------------------

type IHistoryFetcher interface {

	// -----------------------------------------------------------------------------

	// FetchDateRange returns daily bars over [startDate, endDate].
	// An empty endDate lets the server default to "to date".
	FetchDateRange(instrumentID, startDate, endDate string) ([]models.MHistoryBar, error)
}
