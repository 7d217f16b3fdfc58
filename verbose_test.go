package dyndns_test

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/Travis-Britz/dyndns"
)

func TestVerboseEchoesRequests(t *testing.T) {
	api := &fakeAPI{
		get: map[string]string{"/zones": `[{"id":"z1"}]`},
		put: `{"id":"r1"}`,
	}
	var out bytes.Buffer
	v := dyndns.Verbose(api, &out)

	res, err := v.Get(context.Background(), "/zones", url.Values{"name": {"example.com"}})
	if err != nil {
		t.Fatalf("Get failed: %s", err)
	}
	if string(res) != `[{"id":"z1"}]` {
		t.Fatalf("Expected result to pass through; got %s", res)
	}
	if _, err := v.Put(context.Background(), "/zones/z1/dns_records/r1", map[string]string{"content": "5.6.7.8"}); err != nil {
		t.Fatalf("Put failed: %s", err)
	}

	expected := strings.Join([]string{
		`> GET /zones {"name":"example.com"}`,
		`> [`,
		`>   {`,
		`>     "id": "z1"`,
		`>   }`,
		`> ]`,
		`> PUT /zones/z1/dns_records/r1`,
		`> {"content":"5.6.7.8"}`,
		`> {`,
		`>   "id": "r1"`,
		`> }`,
	}, "\n") + "\n"
	if out.String() != expected {
		t.Fatalf("Expected output:\n%s\ngot:\n%s", expected, out.String())
	}
	if len(api.calls) != 2 {
		t.Fatalf("Expected 2 forwarded calls; got %d", len(api.calls))
	}
}

func TestVerbosePassesErrors(t *testing.T) {
	api := &fakeAPI{get: map[string]string{}}
	var out bytes.Buffer
	v := dyndns.Verbose(api, &out)

	_, err := v.Get(context.Background(), "/missing", nil)
	var apiErr *dyndns.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError; got %v", err)
	}
	if expected := "> GET /missing {}\n"; out.String() != expected {
		t.Fatalf("Expected %q; got %q", expected, out.String())
	}
}
