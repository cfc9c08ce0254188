// Package fitbit talks to the Fitbit Web API: the OAuth2 authorization code
// flow, token refresh and the activity log.
package fitbit

import (
	"alcyxob/runlog/internal/config"
	"alcyxob/runlog/internal/domain"
	"alcyxob/runlog/internal/observability"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

var (
	ErrUnauthorized   = errors.New("fitbit rejected the access token")
	ErrUpstream       = errors.New("fitbit request failed")
	ErrInvalidPayload = errors.New("unexpected fitbit response payload")
	ErrMissingCode    = errors.New("authorization code is required")
)

// Operation labels for metrics.
const (
	opExchange   = "exchange"
	opRefresh    = "refresh"
	opRevoke     = "revoke"
	opActivities = "activities"
)

// Grant is the result of a successful authorization code exchange.
type Grant struct {
	Token        domain.FitbitToken
	FitbitUserID string
}

// ListParams selects a page of the activity log. Fitbit requires exactly one
// of BeforeDate (with Sort "desc") or AfterDate (with Sort "asc").
type ListParams struct {
	BeforeDate string // yyyy-MM-dd
	AfterDate  string // yyyy-MM-dd
	Sort       string
	Limit      int
	Offset     int
}

// Client is the subset of the Fitbit API used by the application.
type Client interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Grant, error)
	Refresh(ctx context.Context, token domain.FitbitToken) (domain.FitbitToken, error)
	Revoke(ctx context.Context, token domain.FitbitToken) error
	ListActivities(ctx context.Context, accessToken string, params ListParams) ([]domain.Activity, error)
}

type apiClient struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	apiBaseURL string
	revokeURL  string
	limiter    *rate.Limiter
	logger     logrus.FieldLogger
}

// NewClient builds a Fitbit client from configuration. Every outbound call,
// including token endpoint calls, waits on a shared rate limiter.
func NewClient(cfg config.FitbitConfig, logger logrus.FieldLogger) Client {
	limit := rate.Limit(cfg.RequestsPerSec)
	if cfg.RequestsPerSec <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &apiClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		apiBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		revokeURL:  cfg.RevokeURL,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.WithField("component", "fitbit"),
	}
}

func (c *apiClient) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// oauthContext makes the oauth2 package use our http client.
func (c *apiClient) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func (c *apiClient) Exchange(ctx context.Context, code string) (*Grant, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code)
	observability.RecordFitbitRequest(opExchange, err)
	if err != nil {
		c.logger.WithError(err).Error("authorization code exchange failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	grant := &Grant{Token: tokenFromOAuth(tok)}
	if uid, ok := tok.Extra("user_id").(string); ok {
		grant.FitbitUserID = uid
	}
	return grant, nil
}

// Refresh trades the stored refresh token for a new token pair.
// Fitbit refresh tokens are single use, so the result must be persisted.
func (c *apiClient) Refresh(ctx context.Context, token domain.FitbitToken) (domain.FitbitToken, error) {
	if token.RefreshToken == "" {
		return domain.FitbitToken{}, ErrUnauthorized
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.FitbitToken{}, err
	}

	// An empty access token forces the token source to hit the token endpoint.
	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: token.RefreshToken})
	tok, err := src.Token()
	observability.RecordFitbitRequest(opRefresh, err)
	observability.RecordTokenRefresh(err)
	if err != nil {
		c.logger.WithError(err).Warn("token refresh failed")
		return domain.FitbitToken{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return tokenFromOAuth(tok), nil
}

// Revoke invalidates the access token at Fitbit.
func (c *apiClient) Revoke(ctx context.Context, token domain.FitbitToken) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	form := url.Values{"token": {token.AccessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.oauth.ClientID, c.oauth.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err == nil {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode != http.StatusOK {
			err = fmt.Errorf("%w: revoke returned %d", ErrUpstream, resp.StatusCode)
		}
	}
	observability.RecordFitbitRequest(opRevoke, err)
	return err
}

func (c *apiClient) ListActivities(ctx context.Context, accessToken string, params ListParams) ([]domain.Activity, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	if params.AfterDate != "" {
		query.Set("afterDate", params.AfterDate)
	} else {
		query.Set("beforeDate", params.BeforeDate)
	}
	query.Set("sort", params.Sort)
	query.Set("limit", strconv.Itoa(params.Limit))
	query.Set("offset", strconv.Itoa(params.Offset))

	endpoint := c.apiBaseURL + "/1/user/-/activities/list.json?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en_US") // miles and feet
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordFitbitRequest(opActivities, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		err = ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		err = fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if err != nil {
		observability.RecordFitbitRequest(opActivities, err)
		c.logger.WithField("status", resp.StatusCode).Warn("activity list request failed")
		return nil, err
	}

	activities, err := decodeActivityList(resp.Body)
	observability.RecordFitbitRequest(opActivities, err)
	if err != nil {
		c.logger.WithError(err).Error("invalid activity list payload")
		return nil, err
	}
	return activities, nil
}

func tokenFromOAuth(tok *oauth2.Token) domain.FitbitToken {
	t := domain.FitbitToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry.UTC(),
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		t.Scope = scope
	}
	return t
}

// decodeActivityList validates and maps an activities/list.json body.
func decodeActivityList(r io.Reader) ([]domain.Activity, error) {
	var payload struct {
		Activities *[]rawActivity `json:"activities"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload.Activities == nil {
		return nil, fmt.Errorf("%w: missing activities", ErrInvalidPayload)
	}

	activities := make([]domain.Activity, 0, len(*payload.Activities))
	for i, raw := range *payload.Activities {
		a, err := raw.toActivity()
		if err != nil {
			return nil, fmt.Errorf("%w: activity %d: %v", ErrInvalidPayload, i, err)
		}
		activities = append(activities, a)
	}
	return activities, nil
}

// Expiring reports whether token expires within window of now.
func Expiring(token domain.FitbitToken, now time.Time, window time.Duration) bool {
	return token.Expiry.Add(-window).Before(now)
}
