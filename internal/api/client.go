package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource yields the current bearer credential. An expired or missing
// credential reports ok == false and the request goes out anonymous.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
}

// Client is the one place outbound HTTP happens. It attaches the bearer
// credential, tags every call with an X-Request-ID, and normalizes failures
// into the package's error taxonomy.
//
// The single deliberate side effect: a 401 anywhere outside the profile
// probe runs OnUnauthenticated, so views never have to handle the
// logged-out case themselves.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource

	// OnUnauthenticated runs after any non-probe 401. Set it before the
	// first call; it may run from any goroutine and more than once.
	OnUnauthenticated func()

	// Logf, when set, receives one line per completed call.
	Logf func(format string, args ...any)
}

// New builds a client for the service at base (scheme://host[:port], no
// trailing path). A zero timeout disables the per-call deadline.
func New(base string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
	}
}

func (c *Client) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// do issues one request. path is the full service path ("/api/v1/auth/me");
// a non-nil body is serialized as JSON. Transport failures come back as
// KindNetwork; every received response is returned for classification.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.prepare(ctx, req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logf("api: %s %s transport error after %s: %v", method, path, time.Since(start).Round(time.Millisecond), err)
		return nil, netError(err)
	}
	c.logf("api: %s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// prepare sets the headers shared by JSON and multipart requests.
func (c *Client) prepare(ctx context.Context, req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if tok, ok := c.tokens.AccessToken(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
}

// classify turns a non-2xx response into an error, consuming the body.
// 2xx returns nil with the body left unread. The profile probe never goes
// through here; its 401/404 mean absence, not failure.
func (c *Client) classify(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusUnauthorized {
		if c.OnUnauthenticated != nil {
			c.OnUnauthenticated()
		}
		msg, _ := parseDetail(body)
		if msg == "" {
			msg = "session expired, log in again"
		}
		return &Error{Kind: KindAuth, StatusCode: resp.StatusCode, Message: msg, cause: ErrUnauthenticated}
	}
	return apiError(resp.StatusCode, body)
}

// doJSON runs do + classify + decode in one step for plain JSON endpoints.
// out == nil discards the response body.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := c.classify(resp); err != nil {
		return err
	}
	return decodeBody(resp, out)
}

func decodeBody(resp *http.Response, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{
			Kind:       KindAPI,
			StatusCode: resp.StatusCode,
			Message:    "unexpected response from the server",
			cause:      err,
		}
	}
	return nil
}

// query renders a key/value list as a query string, skipping empty values.
func query(pairs ...string) string {
	vals := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			vals.Set(pairs[i], pairs[i+1])
		}
	}
	if len(vals) == 0 {
		return ""
	}
	return "?" + vals.Encode()
}
