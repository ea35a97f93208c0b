package fincharts

import (
	"encoding/json"

	"fincharts-viewer/src/helpers"
	"fincharts-viewer/src/models"
)

// -----------------------------------------------------------------------------

// FetchDateRange fetches daily bars for an instrument over [startDate, endDate].
// endDate may be empty; the server then defaults to "to date".
//
// Same one-shot 401 policy as ResolveInstrument: one refresh, one retried
// request, no further attempts regardless of how the retry fails.
func (c *Client) FetchDateRange(instrumentID, startDate, endDate string) ([]models.MHistoryBar, error) {
	bars, err := c.getDateRange(instrumentID, startDate, endDate)
	if err == nil {
		return bars, nil
	}

	if helpers.IsUnauthorized(err) {
		refreshErr := c.Session.HandleUnauthorized(func() error {
			bars, err = c.getDateRange(instrumentID, startDate, endDate)
			return err
		})
		if refreshErr != nil {
			return nil, refreshErr
		}
		if err != nil {
			return nil, helpers.NewTransportError("history fetch retry", err)
		}
		return bars, nil
	}

	return nil, helpers.NewTransportError("history fetch", err)
}

// -----------------------------------------------------------------------------

func (c *Client) getDateRange(instrumentID, startDate, endDate string) ([]models.MHistoryBar, error) {
	params := map[string]string{
		"instrumentId": instrumentID,
		"startDate":    startDate,
		"provider":     c.Config.Fincharts.Provider,
		"interval":     "1",
		"periodicity":  "day",
	}
	if endDate != "" {
		params["endDate"] = endDate
	}

	body, err := c.Network.Get(c.Config.Fincharts.RestURI+dateRangePath, params, c.Session.AuthorizationHeader())
	if err != nil {
		return nil, err
	}

	var response DateRangeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}

	return response.Data, nil
}
