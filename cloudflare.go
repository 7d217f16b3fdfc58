package dyndns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudflare/cloudflare-go"
)

// DefaultBaseURL is the root of the Cloudflare v4 API.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// NewCloudflareAPI constructs an API client that authenticates with an account email and global API key.
func NewCloudflareAPI(email, key string, opts ...APIOption) *CloudflareAPI {
	cf := &CloudflareAPI{
		email:   email,
		key:     key,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(cf)
	}
	return cf
}

type APIOption func(*CloudflareAPI)

// WithBaseURL points the client at a different API root, e.g. a test server.
func WithBaseURL(baseURL string) APIOption {
	return func(cf *CloudflareAPI) {
		cf.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the client used for requests.
// A nil client means http.DefaultClient.
func WithHTTPClient(hc *http.Client) APIOption {
	return func(cf *CloudflareAPI) {
		cf.httpClient = hc
	}
}

// CloudflareAPI implements API.
//
// It should be constructed using NewCloudflareAPI.
type CloudflareAPI struct {
	email      string
	key        string
	baseURL    string
	httpClient *http.Client
}

// Get implements API.
func (cf *CloudflareAPI) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return cf.do(ctx, http.MethodGet, cf.buildURL(path, query), nil)
}

// Put implements API.
func (cf *CloudflareAPI) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding request body: %w", err)
	}
	return cf.do(ctx, http.MethodPut, cf.buildURL(path, nil), bytes.NewReader(data))
}

func (cf *CloudflareAPI) buildURL(path string, query url.Values) string {
	u := cf.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (cf *CloudflareAPI) do(ctx context.Context, method, u string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("X-Auth-Email", cf.email)
	req.Header.Set("X-Auth-Key", cf.key)
	req.Header.Set("Content-Type", "application/json")

	httpclient := cf.httpClient
	if httpclient == nil {
		httpclient = http.DefaultClient
	}

	resp, err := httpclient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: error reading response body: %w", method, req.URL.Path, err)
	}
	return handleResponse(resp, raw)
}

// handleResponse unwraps the {"result": ...} / {"errors": [...]} envelope.
func handleResponse(resp *http.Response, raw []byte) (json.RawMessage, error) {
	var envelope cloudflare.RawResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &MalformedResponseError{Body: raw, Err: err}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || (!envelope.Success && len(envelope.Errors) > 0) {
		return nil, &APIError{Status: resp.Status, Errors: envelope.Errors}
	}
	return envelope.Result, nil
}
