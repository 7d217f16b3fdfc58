package dyndns

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
)

// DefaultIPServices are queried in order by the default web resolver.
// Each returns the client's IPv4 address as plain text.
var DefaultIPServices = []string{
	"https://ipv4.icanhazip.com/", // operated by Cloudflare since ~2021
	"https://checkip.amazonaws.com/",
	"http://whatismyip.akamai.com/",
}

// ipPattern is deliberately loose: octets are not range checked and the match is not anchored,
// so a response merely containing something shaped like an IPv4 address is accepted.
var ipPattern = regexp.MustCompile(`\d{1,3}(\.\d{1,3}){3}`)

// LooksLikeIP reports whether s contains four dot-separated groups of 1-3 digits.
func LooksLikeIP(s string) bool {
	return ipPattern.MatchString(s)
}

// WebResolver constructs a resolver which uses external web services to look up a "public" IP address.
//
// The services are tried one at a time in the given order.
// The first response body that looks like an IPv4 address (after trimming whitespace) is returned as-is.
// A response that does not look like an IP is logged and the next service is tried,
// but a failed request ends the lookup with that error.
// If no serviceURL is given then DefaultIPServices is used.
func WebResolver(serviceURL ...string) (Resolver, error) {
	if len(serviceURL) == 0 {
		serviceURL = DefaultIPServices
	}
	var URLs []*url.URL
	for _, u := range serviceURL {
		pu, err := url.Parse(u)
		if err != nil {
			return nil, fmt.Errorf("error parsing URL: %w", err)
		}
		URLs = append(URLs, pu)
	}
	return &webResolver{serviceURLs: URLs, logger: logr.Discard()}, nil
}

type webResolver struct {
	httpClient  *http.Client
	serviceURLs []*url.URL
	logger      logr.Logger
}

func (wr *webResolver) SetLogger(logger logr.Logger)   { wr.logger = logger }
func (wr *webResolver) SetHTTPClient(hc *http.Client) { wr.httpClient = hc }

// Resolve implements dyndns.Resolver.
func (wr *webResolver) Resolve(ctx context.Context) (string, error) {
	var rejected []string
	for _, u := range wr.serviceURLs {
		ip, err := wr.lookup(ctx, u)
		if err != nil {
			return "", err
		}
		if LooksLikeIP(ip) {
			return ip, nil
		}
		wr.logger.Info("not a valid IP", "url", u.String(), "response", ip)
		rejected = append(rejected, ip)
	}
	return "", &NoValidIPError{Responses: rejected}
}

func (wr *webResolver) lookup(ctx context.Context, u *url.URL) (string, error) {
	wr.logger.V(1).Info("GET", "url", u.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	httpclient := wr.httpClient
	if httpclient == nil {
		httpclient = http.DefaultClient
	}

	resp, err := httpclient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response from %s: %w", u, err)
	}
	return strings.TrimSpace(string(body)), nil
}
