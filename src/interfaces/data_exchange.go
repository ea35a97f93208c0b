package interfaces

import "fincharts-viewer/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defining the interface for sharing data with external systems (Server/Push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a payload to external listeners (browser clients).
	Broadcast(payload interface{})

	// -----------------------------------------------------------------------------
	// UpdateChartState replaces the internal snapshot without broadcasting.
	UpdateChartState(state *models.MChartState)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
