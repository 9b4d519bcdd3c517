package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// tokenServer fakes an OAuth token endpoint. It requires the PKCE verifier
// and answers with refresh.
func tokenServer(t *testing.T, refresh string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.Form.Get("code") != "abc" || r.Form.Get("code_verifier") == "" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access",
			"refresh_token": refresh,
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://auth.example.com/authorize",
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"read"},
	}
}

// approve plays the browser: it follows the redirect with a code.
func approve(t *testing.T) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		q := u.Query()
		resp, err := http.Get(q.Get("redirect_uri") + "?code=abc&state=" + url.QueryEscape(q.Get("state")))
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
}

func TestLogin_ExchangesCode(t *testing.T) {
	srv := tokenServer(t, "refresh")
	var shown string

	token, err := Login(t.Context(), testConfig(srv.URL), LoginOptions{
		Timeout: 5 * time.Second,
		Show:    func(u string) { shown = u },
		Open:    approve(t),
	})

	require.NoError(t, err)
	assert.Equal(t, "refresh", token.RefreshToken)
	assert.Equal(t, "access", token.AccessToken)

	u, err := url.Parse(shown)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.True(t, strings.HasPrefix(q.Get("redirect_uri"), "http://localhost:"))
}

func TestLogin_NoRefreshToken(t *testing.T) {
	srv := tokenServer(t, "")

	_, err := Login(t.Context(), testConfig(srv.URL), LoginOptions{Timeout: 5 * time.Second, Open: approve(t)})

	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestLogin_Timeout(t *testing.T) {
	srv := tokenServer(t, "refresh")

	_, err := Login(t.Context(), testConfig(srv.URL), LoginOptions{Timeout: 20 * time.Millisecond})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLogin_DoesNotMutateConfig(t *testing.T) {
	srv := tokenServer(t, "refresh")
	cfg := testConfig(srv.URL)

	_, err := Login(t.Context(), cfg, LoginOptions{Timeout: 5 * time.Second, Open: approve(t)})

	require.NoError(t, err)
	assert.Empty(t, cfg.RedirectURL)
}
