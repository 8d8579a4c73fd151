package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	loginPath   = "/auth/login"
	refreshPath = "/auth/refresh"
)

// ErrNoToken is returned when a successful login response carries no token.
var ErrNoToken = errors.New("login response carried no access token")

// accessTokenPaths lists, in precedence order, where a login response may put the token.
var accessTokenPaths = [][]string{
	{"data", "accessToken"},
	{"data", "access_token"},
	{"accessToken"},
	{"access_token"},
	{"token"},
}

var refreshTokenPaths = [][]string{
	{"data", "refreshToken"},
	{"data", "refresh_token"},
	{"refreshToken"},
	{"refresh_token"},
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult describes a login attempt.
type LoginResult struct {
	StatusCode   int
	AccessToken  string
	RefreshToken string
}

// OK reports whether the login produced a usable token.
func (r LoginResult) OK() bool {
	return (r.StatusCode == http.StatusOK || r.StatusCode == http.StatusCreated) && r.AccessToken != ""
}

// Login authenticates and stores the bearer token on the client.
// A non-2xx login is reported through LoginResult and *APIError.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	resp, err := c.Do(ctx, http.MethodPost, loginPath, LoginRequest{Email: email, Password: password})
	if err != nil {
		return LoginResult{}, err
	}

	result := LoginResult{StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return result, newAPIError(http.MethodPost, loginPath, resp)
	}

	result.AccessToken = ExtractToken(resp.Body)
	result.RefreshToken = extractString(resp.Body, refreshTokenPaths)
	if result.AccessToken == "" {
		return result, ErrNoToken
	}

	c.setTokens(result.AccessToken, result.RefreshToken)
	return result, nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.RLock()
	refresh := c.refreshToken
	c.mu.RUnlock()
	if refresh == "" {
		return errors.New("no refresh token held")
	}

	resp, err := c.Do(ctx, http.MethodPost, refreshPath, map[string]string{"refreshToken": refresh})
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		c.setTokens("", "")
		return newAPIError(http.MethodPost, refreshPath, resp)
	}

	access := ExtractToken(resp.Body)
	if access == "" {
		return fmt.Errorf("refresh: %w", ErrNoToken)
	}
	next := extractString(resp.Body, refreshTokenPaths)
	if next == "" {
		next = refresh
	}
	c.setTokens(access, next)
	return nil
}

// ExtractToken returns the access token from a login response body, checking
// data.accessToken, data.access_token, accessToken, access_token and token in order.
func ExtractToken(body []byte) string {
	return extractString(body, accessTokenPaths)
}

func extractString(body []byte, paths [][]string) string {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}

	for _, path := range paths {
		if v := lookup(doc, path); v != "" {
			return v
		}
	}
	return ""
}

func lookup(doc map[string]any, path []string) string {
	var cur any = doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[key]
	}
	s, _ := cur.(string)
	return strings.TrimSpace(s)
}
