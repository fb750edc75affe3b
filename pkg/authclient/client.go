// Package authclient wraps an HTTP client with the session-refresh retry
// policy used by browser-side callers of the API: a 401 triggers exactly one
// silent refresh followed by exactly one replay of the original request.
package authclient

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
)

type Client struct {
	httpClient *http.Client
	refreshURL string
}

// New builds a Client around its own cookie jar so the access-token cookie
// set by the refresh endpoint is carried into the retried request. Pass a
// base http.Client to inherit transport settings; its Jar is replaced.
func New(refreshURL string, base *http.Client) (*Client, error) {
	if refreshURL == "" {
		return nil, fmt.Errorf("refresh URL is required")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	httpClient := &http.Client{}
	if base != nil {
		clone := *base
		httpClient = &clone
	}
	httpClient.Jar = jar

	return &Client{httpClient: httpClient, refreshURL: refreshURL}, nil
}

// Do issues the request and applies the bounded retry policy:
//
//   - non-401 response: returned as-is, no refresh.
//   - 401: the refresh endpoint is called once. If refresh succeeds, the
//     original request is replayed exactly once and that response is
//     returned whatever its status, including a second 401. If refresh
//     returns a non-2xx response, that response is returned instead of the
//     original one.
//
// The policy never retries more than once, so it cannot loop. Concurrent
// callers are safe but uncoordinated: each 401 triggers its own refresh
// call.
//
// Requests with a body must populate GetBody (http.NewRequest does this for
// common buffer types); otherwise the body cannot be replayed and the first
// 401 is returned directly.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	retry, ok := replayable(req)
	if !ok {
		return resp, nil
	}

	refreshReq, err := http.NewRequestWithContext(req.Context(), http.MethodPost, c.refreshURL, nil)
	if err != nil {
		return resp, nil
	}

	refreshResp, err := c.httpClient.Do(refreshReq)
	if err != nil {
		// Transport failure on the refresh call: surface it to the caller
		// rather than silently returning the stale 401.
		resp.Body.Close()
		return nil, fmt.Errorf("session refresh failed: %w", err)
	}

	if refreshResp.StatusCode < 200 || refreshResp.StatusCode >= 300 {
		resp.Body.Close()
		return refreshResp, nil
	}
	refreshResp.Body.Close()
	resp.Body.Close()

	return c.httpClient.Do(retry)
}

// replayable clones the request for the single retry, rewinding the body
// through GetBody when one is present.
func replayable(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		retry.Body = nil
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}
