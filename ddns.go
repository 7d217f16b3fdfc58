package dyndns

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-logr/logr"
)

// New constructs a Client that keeps the "A" record recordName in the zone zoneName up to date.
//
// Cloudflare credentials must be supplied with UsingCloudflare.
// Unless another resolver is given, the public IP is looked up with WebResolver and DefaultIPServices.
func New(zoneName, recordName string, options ...Option) (*Client, error) {
	if zoneName == "" {
		return nil, fmt.Errorf("dyndns.New: zone name cannot be empty")
	}
	if recordName == "" {
		return nil, fmt.Errorf("dyndns.New: record name cannot be empty")
	}
	s := &settings{logger: logr.Discard()}
	for i, opt := range options {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("dyndns.New: option %d returned an error: %s", i, err)
		}
	}

	if s.api == nil {
		if s.email == "" || s.key == "" {
			return nil, fmt.Errorf("dyndns.New: no Cloudflare credentials were registered - use dyndns.UsingCloudflare")
		}
		opts := []APIOption{WithHTTPClient(s.httpClient)}
		if s.baseURL != "" {
			opts = append(opts, WithBaseURL(s.baseURL))
		}
		s.api = NewCloudflareAPI(s.email, s.key, opts...)
	}
	if s.verbose != nil {
		s.api = Verbose(s.api, s.verbose)
	}
	if s.resolver == nil {
		r, err := WebResolver(DefaultIPServices...)
		if err != nil {
			return nil, fmt.Errorf("dyndns.New: %w", err)
		}
		s.resolver = r
	}

	// settings are applied after all options so that their order does not matter
	type setLogger interface {
		SetLogger(logr.Logger)
	}
	type setHTTPClient interface {
		SetHTTPClient(*http.Client)
	}
	if r, ok := s.resolver.(setLogger); ok {
		r.SetLogger(s.logger.WithName("resolver"))
	}
	if r, ok := s.resolver.(setHTTPClient); ok && s.httpClient != nil {
		r.SetHTTPClient(s.httpClient)
	}

	updater := NewUpdater(s.api, zoneName, recordName)
	updater.SetLogger(s.logger.WithName("updater"))

	return &Client{
		resolver: s.resolver,
		updater:  updater,
		logger:   s.logger,
		record:   recordName,
	}, nil
}

type settings struct {
	email      string
	key        string
	baseURL    string
	api        API
	resolver   Resolver
	httpClient *http.Client
	logger     logr.Logger
	verbose    io.Writer
}

// Option configures a Client constructed with New.
type Option func(*settings) error

// UsingCloudflare authenticates API requests with the account email and global API key.
func UsingCloudflare(email, key string) Option {
	return func(s *settings) error {
		if email == "" || key == "" {
			return fmt.Errorf("dyndns.UsingCloudflare: email and key are both required")
		}
		s.email, s.key = email, key
		return nil
	}
}

// UsingBaseURL overrides DefaultBaseURL.
func UsingBaseURL(baseURL string) Option {
	return func(s *settings) error {
		s.baseURL = baseURL
		return nil
	}
}

// UsingAPI replaces the Cloudflare client entirely. Credentials given with UsingCloudflare are then ignored.
func UsingAPI(api API) Option {
	return func(s *settings) error {
		s.api = api
		return nil
	}
}

func UsingResolver(resolver Resolver) Option {
	return func(s *settings) error {
		s.resolver = resolver
		return nil
	}
}

func UsingWebResolver(serviceURL ...string) Option {
	return func(s *settings) (err error) {
		s.resolver, err = WebResolver(serviceURL...)
		return err
	}
}

// UsingHTTPClient sets the client used both for Cloudflare and for the built-in web resolver.
func UsingHTTPClient(httpclient *http.Client) Option {
	return func(s *settings) error {
		s.httpClient = httpclient
		return nil
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// WithVerboseOutput echoes every Cloudflare request and response to w.
func WithVerboseOutput(w io.Writer) Option {
	return func(s *settings) error {
		s.verbose = w
		return nil
	}
}

// Client updates one DNS record. It is constructed with New.
type Client struct {
	resolver Resolver
	updater  *Updater
	logger   logr.Logger
	record   string
}

// RunDDNS looks up the current IP and writes it to the record.
// No Cloudflare requests are made when the IP cannot be determined.
func (c *Client) RunDDNS(ctx context.Context) (string, error) {
	ip, err := c.resolver.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting IP: %w", err)
	}
	c.logger.V(1).Info("got IP", "ip", ip)

	c.logger.Info("updating DNS record", "record", c.record, "ip", ip)
	if err := c.updater.UpdateDNSRecord(ctx, ip); err != nil {
		return "", fmt.Errorf("error updating %s with new IP: %w", c.record, err)
	}
	c.logger.Info("DNS record updated", "record", c.record, "ip", ip)
	return ip, nil
}
