package apiclient

import (
	"context"
	"errors"
	"net/url"
)

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. The backend expects an
// OAuth2 password form, not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var out TokenResponse
	if err := c.PostForm(ctx, "/auth/login", "", form, &out); err != nil {
		return TokenResponse{}, err
	}
	if out.AccessToken == "" {
		return TokenResponse{}, errors.New("apiclient: login response has no access_token")
	}
	return out, nil
}

// Signup registers an account. The response body is ignored.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return c.PostJSON(ctx, "/auth/signup", "", req, nil)
}
