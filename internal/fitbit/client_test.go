package fitbit

import (
	"alcyxob/runlog/internal/config"
	"alcyxob/runlog/internal/domain"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	return NewClient(config.FitbitConfig{
		ClientID:       "23BKXB",
		ClientSecret:   "shh",
		RedirectURL:    "http://localhost:8080/api/v1/fitbit/callback",
		AuthURL:        srv.URL + "/oauth2/authorize",
		TokenURL:       srv.URL + "/oauth2/token",
		RevokeURL:      srv.URL + "/oauth2/revoke",
		APIBaseURL:     srv.URL,
		Scopes:         []string{"activity", "profile"},
		RequestTimeout: 5 * time.Second,
	}, logger)
}

func tokenHandler(t *testing.T, wantGrant string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "client credentials must be sent in the header")
		assert.Equal(t, "23BKXB", user)
		assert.Equal(t, "shh", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, wantGrant, r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-access","expires_in":28800,"refresh_token":"new-refresh",` +
			`"scope":"activity profile","token_type":"Bearer","user_id":"68DKXQ"}`))
	}
}

func TestAuthCodeURL(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())

	u, err := url.Parse(c.AuthCodeURL("state-123"))
	require.NoError(t, err)
	assert.Equal(t, "/oauth2/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "23BKXB", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "activity profile", q.Get("scope"))
	assert.Equal(t, "http://localhost:8080/api/v1/fitbit/callback", q.Get("redirect_uri"))
}

func TestExchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", tokenHandler(t, "authorization_code"))
	c := newTestClient(t, mux)

	grant, err := c.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "68DKXQ", grant.FitbitUserID)
	assert.Equal(t, "new-access", grant.Token.AccessToken)
	assert.Equal(t, "new-refresh", grant.Token.RefreshToken)
	assert.Equal(t, "activity profile", grant.Token.Scope)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), grant.Token.Expiry, time.Minute)
}

func TestExchangeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"errorType":"invalid_grant"}],"success":false}`))
	})
	c := newTestClient(t, mux)

	_, err := c.Exchange(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = c.Exchange(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCode)
}

func TestRefresh(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))
		tokenHandler(t, "refresh_token")(w, r)
	})
	c := newTestClient(t, mux)

	tok, err := c.Refresh(context.Background(), domain.FitbitToken{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		Expiry:       time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "new-access", tok.AccessToken)
	assert.Equal(t, "new-refresh", tok.RefreshToken)

	_, err = c.Refresh(context.Background(), domain.FitbitToken{AccessToken: "a"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestListActivities(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1/user/-/activities/list.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		assert.Equal(t, "en_US", r.Header.Get("Accept-Language"))
		q := r.URL.Query()
		assert.Equal(t, "2021-10-22", q.Get("beforeDate"))
		assert.Empty(t, q.Get("afterDate"))
		assert.Equal(t, "desc", q.Get("sort"))
		assert.Equal(t, "4", q.Get("limit"))
		assert.Equal(t, "0", q.Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"activities":[{"logId":1,"activityName":"Spinning","activeDuration":2700000,` +
			`"calories":350,"startTime":"2021-10-20T18:00:00.000-07:00"}]}`))
	})
	c := newTestClient(t, mux)

	activities, err := c.ListActivities(context.Background(), "access", ListParams{
		BeforeDate: "2021-10-22", Sort: "desc", Limit: 4,
	})
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, domain.ModalitySpinning, activities[0].Modality)
	assert.Equal(t, 2700, activities[0].ActiveDurationSeconds)
	assert.Nil(t, activities[0].PaceSecPerMile)
}

func TestListActivitiesErrors(t *testing.T) {
	status := http.StatusUnauthorized
	mux := http.NewServeMux()
	mux.HandleFunc("/1/user/-/activities/list.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
	c := newTestClient(t, mux)
	params := ListParams{AfterDate: "2021-10-01", Sort: "asc", Limit: 20}

	_, err := c.ListActivities(context.Background(), "expired", params)
	assert.ErrorIs(t, err, ErrUnauthorized)

	status = http.StatusTooManyRequests
	_, err = c.ListActivities(context.Background(), "access", params)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestRevoke(t *testing.T) {
	var revoked string
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/revoke", func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.True(t, ok)
		require.NoError(t, r.ParseForm())
		revoked = r.PostForm.Get("token")
	})
	c := newTestClient(t, mux)

	require.NoError(t, c.Revoke(context.Background(), domain.FitbitToken{AccessToken: "access"}))
	assert.Equal(t, "access", revoked)
}

func TestExpiring(t *testing.T) {
	now := time.Date(2021, time.October, 7, 14, 0, 0, 0, time.UTC)
	window := 300 * time.Second

	assert.False(t, Expiring(domain.FitbitToken{Expiry: now.Add(10 * time.Minute)}, now, window))
	assert.True(t, Expiring(domain.FitbitToken{Expiry: now.Add(4 * time.Minute)}, now, window))
	assert.True(t, Expiring(domain.FitbitToken{Expiry: now.Add(-time.Hour)}, now, window))
	assert.True(t, Expiring(domain.FitbitToken{}, now, window))
}
