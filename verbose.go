package dyndns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Verbose wraps api so that every request and successful response is echoed to w.
// Each line is prefixed with "> ". The wrapped client's results and errors are passed through unchanged.
func Verbose(api API, w io.Writer) API {
	return &verboseAPI{api: api, w: w}
}

type verboseAPI struct {
	api API
	w   io.Writer
}

func (v *verboseAPI) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	q, _ := json.Marshal(flatten(query))
	fmt.Fprintf(v.w, "> GET %s %s\n", path, q)
	result, err := v.api.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	v.response(result)
	return result, nil
}

func (v *verboseAPI) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	b, _ := json.Marshal(body)
	fmt.Fprintf(v.w, "> PUT %s\n", path)
	fmt.Fprintf(v.w, "> %s\n", b)
	result, err := v.api.Put(ctx, path, body)
	if err != nil {
		return nil, err
	}
	v.response(result)
	return result, nil
}

func (v *verboseAPI) response(result json.RawMessage) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, result, "", "  "); err != nil {
		buf.Reset()
		buf.Write(result)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		fmt.Fprintf(v.w, "> %s\n", line)
	}
}

// flatten turns single-valued query parameters into plain strings so they print like {"name":"example.com"}.
func flatten(query url.Values) map[string]any {
	m := make(map[string]any, len(query))
	for k, vs := range query {
		if len(vs) == 1 {
			m[k] = vs[0]
			continue
		}
		m[k] = vs
	}
	return m
}
