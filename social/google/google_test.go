package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthCodeURL(t *testing.T) {
	provider := New(Config{
		ClientID:    "client-123",
		CallbackURL: "https://app.example.com/callback",
	})

	raw := provider.AuthCodeURL("state-abc")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", parsed.Host)

	query := parsed.Query()
	assert.Equal(t, "client-123", query.Get("client_id"))
	assert.Equal(t, "https://app.example.com/callback", query.Get("redirect_uri"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "openid email profile", query.Get("scope"))
	assert.Equal(t, "state-abc", query.Get("state"))
}

func TestNewStateIsUnique(t *testing.T) {
	assert.NotEqual(t, NewState(), NewState())
}

func TestExchange(t *testing.T) {
	var gotCode, gotBearer string

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotCode = r.FormValue("code")
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "ya29.token",
			"token_type":   "Bearer",
			"expires_in":   3599,
		})
	}))
	defer tokenSrv.Close()

	infoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBearer = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"sub":            "10203040",
			"email":          "jamie@gmail.com",
			"email_verified": true,
			"name":           "Jamie",
		})
	}))
	defer infoSrv.Close()

	provider := New(Config{
		ClientID:     "client-123",
		ClientSecret: "secret",
		CallbackURL:  "https://app.example.com/callback",
		TokenURL:     tokenSrv.URL,
		UserInfoURL:  infoSrv.URL,
	})

	profile, err := provider.Exchange(context.Background(), "code-xyz")
	require.NoError(t, err)

	assert.Equal(t, "code-xyz", gotCode)
	assert.Equal(t, "Bearer ya29.token", gotBearer)
	assert.Equal(t, "jamie@gmail.com", profile.Email)
	assert.Equal(t, "Jamie", profile.Name)
	assert.True(t, profile.EmailVerified)
}

func TestExchangeRejectedCode(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "invalid_grant"})
	}))
	defer tokenSrv.Close()

	provider := New(Config{TokenURL: tokenSrv.URL})

	_, err := provider.Exchange(context.Background(), "expired-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestExchangeEmptyAccessToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"token_type": "Bearer"})
	}))
	defer tokenSrv.Close()

	provider := New(Config{TokenURL: tokenSrv.URL})

	_, err := provider.Exchange(context.Background(), "code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty access token")
}

func TestExchangeUserInfoFailure(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "ya29.token"})
	}))
	defer tokenSrv.Close()

	infoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer infoSrv.Close()

	provider := New(Config{TokenURL: tokenSrv.URL, UserInfoURL: infoSrv.URL})

	_, err := provider.Exchange(context.Background(), "code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "userinfo")
}
