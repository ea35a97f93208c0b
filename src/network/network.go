package network

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fincharts-viewer/src/helpers"
	"fincharts-viewer/src/logger"
	"fincharts-viewer/src/models"
)

// -----------------------------------------------------------------------------

// AsyncNetworkManager performs HTTP requests against the provider REST API.
// It never retries on its own: recovery policy (the one-shot 401 refresh)
// belongs to the callers.
type AsyncNetworkManager struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	nm := &AsyncNetworkManager{
		Config: cfg,
		Logger: log,
	}
	nm.Client = &http.Client{
		Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
	}
	return nm
}

// -----------------------------------------------------------------------------

// Get performs a GET request with query parameters and headers.
func (nm *AsyncNetworkManager) Get(urlStr string, params map[string]string, headers map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, reqUrl.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return nm.do(req)
}

// -----------------------------------------------------------------------------

// PostForm performs a form-encoded POST request.
func (nm *AsyncNetworkManager) PostForm(urlStr string, form map[string]string, headers map[string]string) ([]byte, error) {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}

	req, err := http.NewRequest(http.MethodPost, urlStr, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return nm.do(req)
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) do(req *http.Request) ([]byte, error) {
	resp, err := nm.Client.Do(req)
	if err != nil {
		nm.Logger.Debug("Request to %s failed: %v", req.URL.Path, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		nm.Logger.Debug("Bad status %d from %s", resp.StatusCode, req.URL.Path)
		return nil, &helpers.HTTPStatusError{Code: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
