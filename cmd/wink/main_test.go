package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	wink "github.com/tj-smith47/wink-go"
)

// fakeFlags implements flagSource from a map of set flags.
type fakeFlags map[string]string

func (f fakeFlags) IsSet(name string) bool {
	_, ok := f[name]
	return ok
}

func (f fakeFlags) String(name string) string { return f[name] }

func (f fakeFlags) Duration(name string) time.Duration {
	d, _ := time.ParseDuration(f[name])
	return d
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing default file", func(t *testing.T) {
		cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), false)
		require.NoError(t, err)
		assert.Equal(t, config{}, *cfg)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), true)
		require.Error(t, err)
	})

	t.Run("all keys", func(t *testing.T) {
		path := writeConfig(t, `
client_id: cid
client_secret: csecret
username: me@example.com
password: pw
base_url: https://api.example.com
timeout: 5s
`)
		cfg, err := loadConfig(path, true)
		require.NoError(t, err)
		assert.Equal(t, "cid", cfg.ClientID)
		assert.Equal(t, "csecret", cfg.ClientSecret)
		assert.Equal(t, "me@example.com", cfg.Username)
		assert.Equal(t, "pw", cfg.Passphrase)
		assert.Equal(t, "https://api.example.com", cfg.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "client_id: [unterminated")
		_, err := loadConfig(path, true)
		require.Error(t, err)
	})
}

func TestResolveConfig(t *testing.T) {
	path := writeConfig(t, "client_id: from-file\nusername: file-user\ntimeout: 5s\n")

	t.Run("flags override file", func(t *testing.T) {
		cfg, err := resolveConfig(fakeFlags{
			"config":   path,
			"username": "flag-user",
			"timeout":  "2s",
		})
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.ClientID)
		assert.Equal(t, "flag-user", cfg.Username)
		assert.Equal(t, 2*time.Second, cfg.Timeout)
		assert.Equal(t, wink.DefaultBaseURL, cfg.BaseURL)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		cfg, err := resolveConfig(fakeFlags{})
		require.NoError(t, err)
		assert.Equal(t, wink.DefaultBaseURL, cfg.BaseURL)
		assert.Equal(t, wink.DefaultTimeout, cfg.Timeout)
		assert.Empty(t, cfg.ClientID)
	})
}

// fakeWink serves a token endpoint and a device list, counting grants.
func fakeWink(t *testing.T, grants *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		grants.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "pw" {
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, `{"data":{},"errors":["bad password"]}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"access_token":"tok","refresh_token":"ref","token_type":"bearer","expires_in":3600}}`)
	})
	mux.HandleFunc("/users/me/wink_devices", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"errors":["unauthorized"]}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":[{"light_bulb_id":"7","name":"Porch"},{"name":"orphan"}]}`)
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"pong":true}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out bytes.Buffer
	log := logrus.New()
	log.SetOutput(io.Discard)
	err := newApp(&out, log).Run(append([]string{"wink"}, args...))
	return out.String(), err
}

func TestApp_Devices(t *testing.T) {
	var grants atomic.Int32
	server := fakeWink(t, &grants)

	out, err := runApp(t, "--base-url", server.URL, "--client-id", "cid", "--client-secret", "cs",
		"--username", "me", "--password", "pw", "devices")
	require.NoError(t, err)
	assert.Equal(t, int32(1), grants.Load())

	var devices []wink.Device
	require.NoError(t, json.Unmarshal([]byte(out), &devices))
	require.Len(t, devices, 1)
	assert.Equal(t, "/light_bulbs/7", devices[0].Path)
	assert.Equal(t, "Porch", devices[0].Name)
}

func TestApp_LoginFailure(t *testing.T) {
	var grants atomic.Int32
	server := fakeWink(t, &grants)

	out, err := runApp(t, "--base-url", server.URL, "--password", "wrong", "devices")
	require.Error(t, err)
	assert.True(t, wink.IsInvalidCredentials(err))
	assert.Empty(t, out)
}

func TestApp_RawNoAuth(t *testing.T) {
	var grants atomic.Int32
	server := fakeWink(t, &grants)

	out, err := runApp(t, "--base-url", server.URL, "raw", "--no-auth", "get", "/ping")
	require.NoError(t, err)
	assert.Zero(t, grants.Load())
	assert.JSONEq(t, `{"data":{"pong":true}}`, out)
}

func TestApp_EnvOverridesConfig(t *testing.T) {
	var grants atomic.Int32
	server := fakeWink(t, &grants)

	path := writeConfig(t, "base_url: http://127.0.0.1:1\npassword: pw\n")
	t.Setenv("WINK_BASE_URL", server.URL)

	out, err := runApp(t, "--config", path, "login")
	require.NoError(t, err)
	assert.Contains(t, out, `"access_token": "tok"`)
}

func TestApp_InvalidArguments(t *testing.T) {
	var grants atomic.Int32
	server := fakeWink(t, &grants)
	base := []string{"--base-url", server.URL, "--password", "pw"}

	_, err := runApp(t, append(base, "set-device", "light_bulb", "7", "{not json")...)
	require.Error(t, err)

	_, err = runApp(t, append(base, "device", "light_bulb")...)
	require.Error(t, err)

	_, err = runApp(t, "--log-level", "loud", "devices")
	require.Error(t, err)
}
