package models

// -----------------------------------------------------------------------------
// Viewer state pushed to browser clients over the /ws hub
// -----------------------------------------------------------------------------

type MChartState struct {
	Type       string        `json:"type"` // "INITIAL" or "UPDATE"
	Symbol     string        `json:"symbol"`
	Instrument *MInstrument  `json:"instrument"`
	Series     []MPricePoint `json:"series"`
	Last       *MPricePoint  `json:"last"`
	IsLoading  bool          `json:"is_loading"`
	Timestamp  int64         `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// MNotice is a non-blocking user notice (snackbar equivalent)
// -----------------------------------------------------------------------------

type MNotice struct {
	Type    string `json:"type"` // always "NOTICE"
	Message string `json:"message"`
}

// -----------------------------------------------------------------------------
// MSubscribeCommand for client messages over /ws
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string `json:"command"`
	Symbol  string `json:"symbol"`
}
