package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestHelp(t *testing.T) {
	for _, arg := range []string{"--help", "-help", "-h"} {
		var stdout, stderr bytes.Buffer
		code := run([]string{arg}, &stdout, &stderr, env(nil))
		if code != 0 {
			t.Fatalf("%s: expected exit 0, got %d", arg, code)
		}
		if !strings.Contains(stdout.String(), "CLOUDFLARE_DNS_RECORD") {
			t.Fatalf("%s: expected usage on stdout, got %q", arg, stdout.String())
		}
	}
}

func TestUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-nope"}, &stdout, &stderr, env(nil)); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}

func TestMissingEnv(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr, env(map[string]string{"CLOUDFLARE_API_EMAIL": "me@example.com"}))
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "CLOUDFLARE_API_KEY") {
		t.Fatalf("expected missing variable in stderr, got %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected empty stdout, got %q", stdout.String())
	}
}

func fakeCloudflare(t *testing.T, recordsBody string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"result":[{"id":"z1","name":"example.com"}]}`)
	})
	mux.HandleFunc("/zones/z1/dns_records", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, recordsBody)
	})
	mux.HandleFunc("/zones/z1/dns_records/r1", func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		io.WriteString(w, `{"success":true,"result":{"id":"r1","content":"5.6.7.8"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testEnv(apiURL string) func(string) string {
	return env(map[string]string{
		"CLOUDFLARE_API_EMAIL":  "me@example.com",
		"CLOUDFLARE_API_KEY":    "secret",
		"CLOUDFLARE_ZONE_NAME":  "example.com",
		"CLOUDFLARE_DNS_RECORD": "home.example.com",
		"CLOUDFLARE_API_URL":    apiURL,
	})
}

func TestUpdate(t *testing.T) {
	srv := fakeCloudflare(t, `{"success":true,"result":[{"id":"r1","type":"A","name":"home.example.com","content":"1.2.3.4"}]}`)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-ip", "5.6.7.8"}, &stdout, &stderr, testEnv(srv.URL))
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if stdout.String() != "5.6.7.8\n" {
		t.Fatalf("expected IP on stdout, got %q", stdout.String())
	}
}

func TestUpdateVerbose(t *testing.T) {
	srv := fakeCloudflare(t, `{"success":true,"result":[{"id":"r1","type":"A","name":"home.example.com","content":"1.2.3.4"}]}`)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-v", "-ip", "5.6.7.8"}, &stdout, &stderr, testEnv(srv.URL))
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "> PUT /zones/z1/dns_records/r1") {
		t.Fatalf("expected verbose request log on stderr, got %q", stderr.String())
	}
}

func TestRecordNotFound(t *testing.T) {
	srv := fakeCloudflare(t, `{"success":true,"result":[]}`)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-ip", "5.6.7.8"}, &stdout, &stderr, testEnv(srv.URL))
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), `could not find "A" DNS record with name home.example.com`) {
		t.Fatalf("expected not found message, got %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected empty stdout, got %q", stdout.String())
	}
}

func TestMalformedResponse(t *testing.T) {
	srv := fakeCloudflare(t, `<html>oops</html>`)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-ip", "5.6.7.8"}, &stdout, &stderr, testEnv(srv.URL))
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Could not parse JSON response") || !strings.Contains(stderr.String(), "<html>oops</html>") {
		t.Fatalf("expected raw body on stderr, got %q", stderr.String())
	}
}

func TestNoValidIP(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-ip", "not-an-ip"}, &stdout, &stderr, testEnv("http://127.0.0.1:1"))
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "could not determine IP") {
		t.Fatalf("expected IP error on stderr, got %q", stderr.String())
	}
}
