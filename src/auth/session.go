package auth

import (
	"encoding/json"
	"sync"

	"fincharts-viewer/src/helpers"
	"fincharts-viewer/src/interfaces"
	"fincharts-viewer/src/logger"
	"fincharts-viewer/src/models"
	"fincharts-viewer/src/storage"
)

// -----------------------------------------------------------------------------
// Token endpoint constants (password grant, fixed client id)
// -----------------------------------------------------------------------------

const (
	tokenPath = "/api/identity/realms/fintatech/protocol/openid-connect/token"
	grantType = "password"
	clientID  = "app-cli"
)

// -----------------------------------------------------------------------------

// Session owns the bearer-token lifecycle: acquisition, persistence and the
// single-flight refresh gate shared by every request that observes a 401.
type Session struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Store   interfaces.ITokenStore
	Logger  *logger.Logger

	mu          sync.Mutex
	accessToken string
	refreshing  bool
	refreshDone chan struct{}
	refreshErr  error
}

// -----------------------------------------------------------------------------

// NewSession creates a Session seeded with the persisted token, if any.
func NewSession(cfg *models.MConfig, netMgr interfaces.INetworkManager, store interfaces.ITokenStore, log *logger.Logger) *Session {
	s := &Session{
		Config:  cfg,
		Network: netMgr,
		Store:   store,
		Logger:  log,
	}

	if token, ok, err := store.Get(storage.KeyAccessToken); err != nil {
		log.Warning("Failed to read persisted token: %v", err)
	} else if ok {
		s.accessToken = token
	}

	return s
}

// -----------------------------------------------------------------------------

// AcquireToken exchanges the configured credentials for a fresh access token.
// On success the token overwrites both the in-memory copy and the store.
func (s *Session) AcquireToken() (*models.MTokenResponse, error) {
	form := map[string]string{
		"grant_type": grantType,
		"client_id":  clientID,
		"username":   s.Config.Fincharts.Username,
		"password":   s.Config.Fincharts.Password,
	}

	body, err := s.Network.PostForm(s.Config.Fincharts.RestURI+tokenPath, form, nil)
	if err != nil {
		return nil, helpers.NewAuthError(err)
	}

	var response models.MTokenResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, helpers.NewAuthError(err)
	}

	s.mu.Lock()
	s.accessToken = response.AccessToken
	s.mu.Unlock()

	// Persistence is best effort; an unwritable store must not fail the login.
	if err := s.Store.Set(storage.KeyAccessToken, response.AccessToken); err != nil {
		s.Logger.Warning("Failed to persist access token: %v", err)
	}

	return &response, nil
}

// -----------------------------------------------------------------------------

// AccessToken returns the current in-memory token.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// -----------------------------------------------------------------------------

// AuthorizationHeader returns the bearer header for the current token.
func (s *Session) AuthorizationHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.AccessToken()}
}

// -----------------------------------------------------------------------------

// HandleUnauthorized coordinates refresh-and-retry after a 401.
//
// The first caller of a failure episode performs the token exchange; every
// caller that arrives while that exchange is in flight waits for the same
// outcome instead of issuing a second exchange. On success each caller replays
// its own retry closure; on failure all callers receive the refresh error.
// The in-flight flag is cleared on every outcome, so a later 401 starts a new
// episode.
func (s *Session) HandleUnauthorized(retry func() error) error {
	s.mu.Lock()
	if !s.refreshing {
		s.refreshing = true
		done := make(chan struct{})
		s.refreshDone = done
		s.mu.Unlock()

		_, err := s.AcquireToken()

		s.mu.Lock()
		s.refreshing = false
		s.refreshErr = err
		close(done)
		s.mu.Unlock()

		if err != nil {
			s.Logger.Error("Token refresh failed: %v", err)
			return err
		}
		return retry()
	}

	// Refresh already in flight: wait for it and replay our own request.
	done := s.refreshDone
	s.mu.Unlock()
	<-done

	s.mu.Lock()
	err := s.refreshErr
	s.mu.Unlock()

	if err != nil {
		return err
	}
	return retry()
}
