package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"labmate-cli/internal/model"
)

// FetchMyProfile is the profile probe. Absence (the service answering 401
// or 404) is a normal outcome, reported as ok == false with a nil error,
// and never runs the OnUnauthenticated hook: a logged-in account without a
// profile row is not a logged-out account.
func (c *Client) FetchMyProfile(ctx context.Context) (*model.Profile, bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/profile/me", nil)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, false, nil
	}
	if err := c.classify(resp); err != nil {
		return nil, false, err
	}
	var p model.Profile
	if err := decodeBody(resp, &p); err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

// FetchProfile reads another user's profile by user id. 404 here is a real
// error; only the probe reinterprets it.
func (c *Client) FetchProfile(ctx context.Context, userID int) (*model.Profile, error) {
	var p model.Profile
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/profile/%d", userID), nil, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchProfiles queries name, university, major and bio. limit <= 0 uses
// the service default.
func (c *Client) SearchProfiles(ctx context.Context, q string, limit int) ([]model.ProfileSummary, error) {
	lim := ""
	if limit > 0 {
		lim = strconv.Itoa(limit)
	}
	var out []model.ProfileSummary
	err := c.doJSON(ctx, http.MethodGet,
		"/api/v1/profile/search"+query("q", q, "limit", lim), nil, &out)
	return out, err
}

// CreateProfile submits the first profile for the current account.
func (c *Client) CreateProfile(ctx context.Context, in model.ProfileInput) (*model.Profile, error) {
	var p model.Profile
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/profile/me", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile patches the existing profile. Fields left nil in the input
// are absent from the payload and keep their stored values.
func (c *Client) UpdateProfile(ctx context.Context, in model.ProfileInput) (*model.Profile, error) {
	var p model.Profile
	if err := c.doJSON(ctx, http.MethodPatch, "/api/v1/profile/me", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
