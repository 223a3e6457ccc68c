package api

import (
	"context"
	"net/http"

	"labmate-cli/internal/model"
)

// CreateTeamRequest posts a new collaboration request. The trailing slash
// matches the service route and avoids a redirect on the POST.
func (c *Client) CreateTeamRequest(ctx context.Context, in model.TeamRequestInput) (*model.TeamRequest, error) {
	var tr model.TeamRequest
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/requests/", in, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// MyTeamRequests lists the current account's requests, including the
// server-computed collaborator recommendations when present.
func (c *Client) MyTeamRequests(ctx context.Context) ([]model.TeamRequest, error) {
	var out []model.TeamRequest
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/requests/my", nil, &out)
	return out, err
}
