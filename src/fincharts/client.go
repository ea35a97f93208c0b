package fincharts

import (
	"fincharts-viewer/src/auth"
	"fincharts-viewer/src/interfaces"
	"fincharts-viewer/src/logger"
	"fincharts-viewer/src/models"
)

// -----------------------------------------------------------------------------
// REST endpoints
// -----------------------------------------------------------------------------

const (
	instrumentsPath = "/api/api/instruments/v1/instruments"
	dateRangePath   = "/api/api/bars/v1/bars/date-range"
)

// -----------------------------------------------------------------------------

// Client is the REST data-access layer: instrument resolution and historical
// bars, both with the one-shot 401 refresh-and-retry policy.
type Client struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Session *auth.Session
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewClient(cfg *models.MConfig, netMgr interfaces.INetworkManager, session *auth.Session, log *logger.Logger) *Client {
	return &Client{
		Config:  cfg,
		Network: netMgr,
		Session: session,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------
// Response shapes
// -----------------------------------------------------------------------------

type Paging struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Items int `json:"items"`
}

type GetInstrumentsResponse struct {
	Paging Paging               `json:"paging"`
	Data   []models.MInstrument `json:"data"`
}

type DateRangeResponse struct {
	Data []models.MHistoryBar `json:"data"`
}
