package dyndns

import (
	"context"
	"encoding/json"
	"net/url"
)

type Resolver interface {
	Resolve(context.Context) (string, error)
}

// API is the subset of the Cloudflare v4 REST API used to update a record.
// Both methods return the unwrapped "result" member of the response envelope.
type API interface {
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
}
