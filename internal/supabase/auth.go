package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/elakbay/elakbay/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Auth change events, mirroring the names the hosted auth service uses.
const (
	EventSignedIn       = "SIGNED_IN"
	EventSignedOut      = "SIGNED_OUT"
	EventTokenRefreshed = "TOKEN_REFRESHED"
)

// AuthChange is a session-change notification delivered to subscribers.
// Session is nil on sign-out.
type AuthChange struct {
	Event   string
	Session *domain.Session
}

// tokenResponse is the GoTrue token/signup endpoint response.
type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         *domain.User `json:"user"`
}

// CurrentSession returns the persisted session, refreshing it first when
// the access token has expired and a refresh token is available. A session
// that cannot be refreshed is dropped and nil is returned without error;
// expiry ends the session, it does not fail the caller.
func (c *Client) CurrentSession(ctx context.Context) (*domain.Session, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil, nil
	}

	if !session.Expired(c.now()) {
		return session, nil
	}

	if session.RefreshToken == "" {
		c.setSession(nil, EventSignedOut)
		return nil, nil
	}

	refreshed, err := c.refreshSession(ctx, session.RefreshToken)
	if err != nil {
		c.logger.Warn("Failed to refresh expired session", zap.Error(err))
		c.setSession(nil, EventSignedOut)
		return nil, nil
	}

	return refreshed, nil
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	query := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, body, nil, &resp); err != nil {
		return nil, err
	}

	session := c.sessionFromTokenResponse(&resp)
	c.setSession(session, EventSignedIn)
	return session, nil
}

// SignUp creates an account with identity metadata attached to the session
// user. Depending on backend settings the response may or may not carry
// tokens (email confirmation pending); the user object is always present.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.Session, error) {
	body := map[string]any{"email": email, "password": password}
	if len(metadata) > 0 {
		body["data"] = metadata
	}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, body, nil, &resp); err != nil {
		return nil, err
	}

	session := c.sessionFromTokenResponse(&resp)
	if session.AccessToken != "" {
		c.setSession(session, EventSignedIn)
	}
	return session, nil
}

// SignOut revokes the current session server-side and always clears the
// local one; the local session is treated as ended regardless of outcome.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	hasSession := c.session != nil
	c.mu.Unlock()

	var err error
	if hasSession {
		err = c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, nil, nil)
	}

	c.setSession(nil, EventSignedOut)
	return err
}

// refreshSession exchanges a refresh token for a new session.
func (c *Client) refreshSession(ctx context.Context, refreshToken string) (*domain.Session, error) {
	query := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, body, nil, &resp); err != nil {
		return nil, err
	}

	session := c.sessionFromTokenResponse(&resp)
	c.setSession(session, EventTokenRefreshed)
	return session, nil
}

// Health pings the hosted auth service.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/auth/v1/health", nil, nil, nil, nil)
}

// AuthorizeURL builds the OAuth redirect entry point for a provider, with
// redirectTo as the callback target.
func (c *Client) AuthorizeURL(provider, redirectTo string) string {
	query := url.Values{
		"provider":    {provider},
		"redirect_to": {redirectTo},
	}
	return c.baseURL + "/auth/v1/authorize?" + query.Encode()
}

// Subscribe registers for auth-change notifications. The returned func
// unsubscribes; after it returns the channel is closed.
func (c *Client) Subscribe() (<-chan AuthChange, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++

	ch := make(chan AuthChange, 8)
	c.subs[id] = ch

	unsubscribe := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}

	return ch, unsubscribe
}

// setSession replaces the in-memory session, persists (or removes) it and
// notifies subscribers. Slow subscribers drop events rather than block.
func (c *Client) setSession(session *domain.Session, event string) {
	c.mu.Lock()
	c.session = session

	if session != nil {
		if raw, err := json.Marshal(session); err == nil {
			if err := c.store.Set(sessionStorageKey, string(raw)); err != nil {
				c.logger.Warn("Failed to persist session", zap.Error(err))
			}
		}
	} else {
		if err := c.store.Delete(sessionStorageKey); err != nil {
			c.logger.Warn("Failed to clear persisted session", zap.Error(err))
		}
	}

	subs := make([]chan AuthChange, 0, len(c.subs))
	for _, ch := range c.subs {
		subs = append(subs, ch)
	}
	c.mu.Unlock()

	change := AuthChange{Event: event, Session: session}
	for _, ch := range subs {
		select {
		case ch <- change:
		default:
			c.logger.Warn("Dropping auth change for slow subscriber", zap.String("event", event))
		}
	}
}

// sessionFromTokenResponse maps a token response to a session, filling the
// expiry and user from the access-token claims when the response omits them.
func (c *Client) sessionFromTokenResponse(resp *tokenResponse) *domain.Session {
	session := &domain.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		User:         resp.User,
	}

	if resp.ExpiresIn > 0 {
		session.ExpiresAt = c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	if resp.AccessToken != "" && (session.User == nil || session.ExpiresAt.IsZero()) {
		if claims, err := claimsFromAccessToken(resp.AccessToken); err == nil {
			if session.User == nil {
				session.User = claims.user()
			}
			if session.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
				session.ExpiresAt = claims.ExpiresAt.Time
			}
		} else {
			c.logger.Warn("Failed to decode access token claims", zap.Error(err))
		}
	}

	return session
}

// accessClaims are the token claims the client reads. The token is decoded
// without signature verification; the signing secret never leaves the
// hosted service and the token was just received over TLS from it.
type accessClaims struct {
	Email        string              `json:"email"`
	UserMetadata domain.UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

func (a *accessClaims) user() *domain.User {
	return &domain.User{
		ID:       a.Subject,
		Email:    a.Email,
		Metadata: a.UserMetadata,
	}
}

func claimsFromAccessToken(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	return claims, nil
}
