package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"labmate-cli/internal/model"
)

// ListArticles fetches the public feed, most-cited first. q filters by
// title; limit <= 0 uses the service default, and the service caps it at
// 200 either way.
func (c *Client) ListArticles(ctx context.Context, q string, limit int) ([]model.Article, error) {
	lim := ""
	if limit > 0 {
		lim = strconv.Itoa(limit)
	}
	var out []model.Article
	err := c.doJSON(ctx, http.MethodGet, "/articles/"+query("q", q, "limit", lim), nil, &out)
	return out, err
}

// UserArticles fetches one author's publications plus their metrics
// snapshot.
func (c *Client) UserArticles(ctx context.Context, userID int) (*model.UserArticles, error) {
	var out model.UserArticles
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/articles/user/%d", userID), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
