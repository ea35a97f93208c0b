package fincharts

import (
	"encoding/json"

	"fincharts-viewer/src/helpers"
	"fincharts-viewer/src/models"
)

// -----------------------------------------------------------------------------

// ResolveInstrument looks up a ticker symbol with the fixed provider tag and
// returns the first match. Zero matches is not an error: the result is nil.
//
// A 401 delegates to the session's single-flight refresh and retries exactly
// once; any failure of the retried request, 401 included, is fatal for this
// call. Non-401 errors propagate unchanged.
func (c *Client) ResolveInstrument(symbol string) (*models.MInstrument, error) {
	instrument, err := c.getInstrument(symbol)
	if err == nil {
		return instrument, nil
	}

	if helpers.IsUnauthorized(err) {
		refreshErr := c.Session.HandleUnauthorized(func() error {
			instrument, err = c.getInstrument(symbol)
			return err
		})
		if refreshErr != nil {
			return nil, refreshErr
		}
		if err != nil {
			return nil, helpers.NewTransportError("instrument lookup retry", err)
		}
		return instrument, nil
	}

	return nil, helpers.NewTransportError("instrument lookup", err)
}

// -----------------------------------------------------------------------------

func (c *Client) getInstrument(symbol string) (*models.MInstrument, error) {
	params := map[string]string{
		"symbol":   symbol,
		"provider": c.Config.Fincharts.Provider,
	}

	body, err := c.Network.Get(c.Config.Fincharts.RestURI+instrumentsPath, params, c.Session.AuthorizationHeader())
	if err != nil {
		return nil, err
	}

	var response GetInstrumentsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}

	if len(response.Data) == 0 {
		return nil, nil
	}
	return &response.Data[0], nil
}
