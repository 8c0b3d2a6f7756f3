package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/obslog"
	"aegis/pkg/core/settings"
)

// AuthResult is the outcome of SetupAuthentication: a bearer token (or API
// key) plus whether the caller should treat the process/request as usable.
// Success=false is fatal to whoever called SetupAuthentication, not to the
// rest of the connector — it is returned, never panicked.
type AuthResult struct {
	Success bool
	Token   string
	Method  settings.AuthMethod
}

// oauthTokenResponse is the minimal shape of a client-credentials token
// response; unused fields are accepted and ignored.
type oauthTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// SetupAuthentication resolves a usable credential for s.AuthMethod.
// For AuthAPIKey it's a pass-through. For AuthOAuth it performs a
// client-credentials exchange against OAuthEndpoint, retrying transient
// failures up to OAuthMaxRetries times with exponential backoff seeded at
// OAuthRetryDelay — grounded on the retry-with-backoff idiom used for
// upstream calls throughout r3e-network-service_layer.
func SetupAuthentication(ctx context.Context, s *settings.Settings, httpClient *http.Client) (*AuthResult, error) {
	switch s.AuthMethod {
	case settings.AuthAPIKey:
		if s.APIKey == "" {
			return &AuthResult{Success: false, Method: s.AuthMethod}, apperr.Auth("bootstrap.setup_auth", "API_KEY is empty", nil)
		}
		obslog.Debug("auth.api_key_configured")
		return &AuthResult{Success: true, Token: s.APIKey, Method: s.AuthMethod}, nil

	case settings.AuthOAuth:
		return setupOAuth(ctx, s, httpClient)

	default:
		return &AuthResult{Success: false, Method: s.AuthMethod}, apperr.Config("bootstrap.setup_auth", "unknown auth method: "+string(s.AuthMethod), nil)
	}
}

func setupOAuth(ctx context.Context, s *settings.Settings, httpClient *http.Client) (*AuthResult, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.OAuthRetryDelay
	bo.MaxElapsedTime = 0 // bounded by WithMaxRetries below, not wall clock

	var token string
	attempt := 0
	operation := func() error {
		attempt++
		tok, err := exchangeClientCredentials(ctx, httpClient, s)
		if err != nil {
			obslog.Warn("auth.oauth_attempt_failed", "attempt", attempt, "error", err.Error())
			return err
		}
		token = tok
		return nil
	}

	retrier := backoff.WithMaxRetries(bo, uint64(s.OAuthMaxRetries))
	err := backoff.Retry(operation, backoff.WithContext(retrier, ctx))
	if err != nil {
		obslog.Error("auth.oauth_exhausted_retries", "attempts", attempt, "error", err.Error())
		return &AuthResult{Success: false, Method: settings.AuthOAuth}, apperr.Auth("bootstrap.setup_auth", "oauth token exchange failed after retries", err)
	}

	obslog.Info("auth.oauth_token_acquired", "attempts", attempt)
	return &AuthResult{Success: true, Token: token, Method: settings.AuthOAuth}, nil
}

func exchangeClientCredentials(ctx context.Context, client *http.Client, s *settings.Settings) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.OAuthClientID},
		"client_secret": {s.OAuthClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.OAuthEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("oauth endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed oauthTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("oauth response decode failed: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("oauth response missing access_token")
	}
	return parsed.AccessToken, nil
}

// RefreshLoop runs SetupAuthentication on a ticker, logging but not
// terminating the process on transient failure; the last good token stays
// in effect until a refresh succeeds.
func RefreshLoop(ctx context.Context, s *settings.Settings, httpClient *http.Client, every time.Duration, onRefresh func(*AuthResult)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := SetupAuthentication(ctx, s, httpClient)
			if err != nil {
				obslog.Warn("auth.refresh_failed", "error", err.Error())
				continue
			}
			onRefresh(res)
		}
	}
}
