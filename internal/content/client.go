package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/lacuna/pkg/retry"
)

const maxErrorBody = 512

// Client calls a Content Analyzer over HTTP. Each request runs under the
// retry policy, so only attempts that exceed the policy timeout are retried.
type Client struct {
	base   *url.URL
	http   *http.Client
	policy retry.Policy
}

// NewClient creates a Client rooted at baseURL. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, policy retry.Policy) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse content base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("content base url must be http or https: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{base: base, http: httpClient, policy: policy}, nil
}

func (c *Client) List(ctx context.Context, q ListQuery) ([]Item, error) {
	params := url.Values{}
	if q.ContentType != "" {
		params.Set("content_type", q.ContentType)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var items []Item
	if err := c.do(ctx, http.MethodGet, "/content", params, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (c *Client) Coverage(ctx context.Context, expectedTopics []string) (*Coverage, error) {
	params := url.Values{}
	for _, t := range expectedTopics {
		params.Add("expected_topics", t)
	}

	var cov Coverage
	if err := c.do(ctx, http.MethodGet, "/content/coverage", params, nil, &cov); err != nil {
		return nil, err
	}
	return &cov, nil
}

func (c *Client) Suggest(ctx context.Context, req SuggestionRequest) (*Suggestion, error) {
	body, err := json.Marshal(map[string]string{
		"gap_title":       req.GapTitle,
		"gap_description": req.GapDescription,
	})
	if err != nil {
		return nil, err
	}

	var s Suggestion
	if err := c.do(ctx, http.MethodPost, "/content/suggestions", nil, body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, out any) error {
	u := c.base.JoinPath(path)
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	target := u.String()

	_, err := retry.Do(ctx, c.policy, func(actx context.Context) (struct{}, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(actx, method, target, reader)
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if actx.Err() != nil {
				return struct{}{}, actx.Err()
			}
			return struct{}{}, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return struct{}{}, fmt.Errorf("%w: %s %s returned %d: %s",
				ErrUpstream, method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if actx.Err() != nil {
				return struct{}{}, actx.Err()
			}
			return struct{}{}, fmt.Errorf("%w: decode %s response: %w", ErrUpstream, path, err)
		}
		return struct{}{}, nil
	})
	return err
}
