package wink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// TokenPath is the OAuth2 token endpoint.
const TokenPath = "/oauth2/token"

// Grant types accepted by the token endpoint.
const (
	GrantPassword     = "password"
	GrantRefreshToken = "refresh_token"
)

// passwordGrant is the request body for a password grant.
type passwordGrant struct {
	Username     string `json:"username"`
	ClientSecret string `json:"client_secret"`
	ClientID     string `json:"client_id"`
	Password     string `json:"password"`
	GrantType    string `json:"grant_type"`
}

// refreshGrant is the request body for a refresh-token grant.
type refreshGrant struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	GrantType    string `json:"grant_type"`
}

// tokenData is the data member of a successful grant response.
type tokenData struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    float64 `json:"expires_in"`
}

// Session holds the credentials and the current OAuth token.
//
// The token is replaced wholesale by Login and Refresh and is never refreshed
// automatically. Reads and writes are guarded, but a request already in
// flight keeps the token it was built with.
type Session struct {
	creds Credentials

	mu    sync.RWMutex
	token *oauth2.Token
}

// NewSession creates an unauthenticated session.
func NewSession(creds Credentials) *Session {
	return &Session{creds: creds}
}

// Credentials returns the session's credentials.
func (s *Session) Credentials() Credentials {
	return s.creds
}

// Token returns a copy of the current token, or nil before the first login.
func (s *Session) Token() *oauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil
	}
	tok := *s.token
	return &tok
}

// SetToken replaces the current token, for callers restoring one they kept.
func (s *Session) SetToken(tok *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
}

// AccessToken returns the current access token, or "".
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// Authenticated reports whether a non-empty access token is held.
// Expiry is not checked; the server decides when a token is stale.
func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

// TokenSource returns a static source over the current token.
func (s *Session) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(s.Token())
}

func (s *Session) refreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.RefreshToken
}

// Login exchanges a username and passphrase for a token with a password
// grant. Empty arguments fall back to the session's credentials. On failure
// the held token is left unchanged; a rejected grant is reported as an
// *EnvelopeError matching ErrInvalidCredentials, even when it came with an
// error status. The *HTTPStatusError then stays reachable with errors.As.
func (c *Client) Login(ctx context.Context, username, passphrase string) error {
	creds := c.session.Credentials()
	if username == "" {
		username = creds.Username
	}
	if passphrase == "" {
		passphrase = creds.Passphrase
	}
	return c.grant(ctx, passwordGrant{
		Username:     username,
		ClientSecret: creds.ClientSecret,
		ClientID:     creds.ClientID,
		Password:     passphrase,
		GrantType:    GrantPassword,
	})
}

// Refresh exchanges the held refresh token for a new token. It is never
// called automatically; callers decide when the access token is stale.
func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.session.refreshToken()
	if refresh == "" {
		return ErrNotAuthenticated
	}
	creds := c.session.Credentials()
	return c.grant(ctx, refreshGrant{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RefreshToken: refresh,
		GrantType:    GrantRefreshToken,
	})
}

// LoginAsync runs Login on its own goroutine and reports to done exactly
// once. It panics with ErrNilCallback if done is nil.
func (c *Client) LoginAsync(ctx context.Context, username, passphrase string, done func(error)) <-chan struct{} {
	if done == nil {
		panic(ErrNilCallback)
	}
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		done(c.Login(ctx, username, passphrase))
	}()
	return finished
}

// RefreshAsync runs Refresh on its own goroutine and reports to done exactly
// once. It panics with ErrNilCallback if done is nil.
func (c *Client) RefreshAsync(ctx context.Context, done func(error)) <-chan struct{} {
	if done == nil {
		panic(ErrNilCallback)
	}
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		done(c.Refresh(ctx))
	}()
	return finished
}

// grant posts a grant request and stores the resulting token.
func (c *Client) grant(ctx context.Context, payload any) error {
	resp, err := c.Invoke(ctx, "POST", TokenPath, payload)
	if err != nil {
		// A rejected grant usually arrives as a 4xx whose body carries the
		// errors array; report it as a credentials failure.
		if resp != nil {
			if _, uerr := unwrapAs(resp.Body, ErrInvalidCredentials); uerr != nil {
				var ee *EnvelopeError
				if errors.As(uerr, &ee) {
					ee.Cause = err
					return ee
				}
			}
		}
		return err
	}

	data, err := unwrapAs(resp.Body, ErrInvalidCredentials)
	if err != nil {
		return err
	}

	tok, err := tokenFromData(data)
	if err != nil {
		return &EnvelopeError{Kind: ErrInvalidCredentials, Detail: compactJSON(resp.Body), Body: resp.Body}
	}

	c.session.SetToken(tok)
	c.logger.Debug("oauth", Fields{"event": "token", "token_type": tok.TokenType, "expiry": tok.Expiry})
	return nil
}

// tokenFromData builds an oauth2.Token from a grant response's data member.
// The full object is attached as extra data.
func tokenFromData(data json.RawMessage) (*oauth2.Token, error) {
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	var extra map[string]any
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	tok := &oauth2.Token{
		AccessToken:  td.AccessToken,
		RefreshToken: td.RefreshToken,
		TokenType:    td.TokenType,
	}
	if td.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(td.ExpiresIn) * time.Second)
	}
	return tok.WithExtra(extra), nil
}
