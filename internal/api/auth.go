package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"labmate-cli/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges credentials for a token pair. Bad credentials surface as
// ErrUnauthenticated like any other 401.
func (c *Client) Login(ctx context.Context, email, password string) (model.Token, error) {
	var tok model.Token
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login",
		loginRequest{Email: email, Password: password}, &tok)
	return tok, err
}

// Register creates an account. The service answers the known-email case
// with a 400 whose message contains "already"; that comes back wrapping
// ErrEmailTaken so the form can show it inline instead of a generic error.
// Registration does not log in; follow with Login for a token pair.
func (c *Client) Register(ctx context.Context, email, password string) (model.Identity, error) {
	var id model.Identity
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register",
		loginRequest{Email: email, Password: password}, &id)
	var apiErr *Error
	if errors.As(err, &apiErr) &&
		apiErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(apiErr.Message), "already") {
		apiErr.cause = ErrEmailTaken
	}
	return id, err
}

// Refresh trades a refresh token for a fresh pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (model.Token, error) {
	var tok model.Token
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/refresh",
		refreshRequest{RefreshToken: refreshToken}, &tok)
	return tok, err
}

// WhoAmI resolves the bearer token to its account.
func (c *Client) WhoAmI(ctx context.Context) (model.Identity, error) {
	var id model.Identity
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/me", nil, &id)
	return id, err
}
