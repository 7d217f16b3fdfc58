package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"golang.org/x/term"

	"github.com/Travis-Britz/dyndns"
	"github.com/Travis-Britz/dyndns/internal/config"
)

const usageText = `%[1]s [-v] [-ip addr] [-config file] [--help]

Determines the machine's current external IP, then updates a specific DNS A record on Cloudflare with that IP.
The IP is printed to standard output on success.

OPTIONS:
  -v              Verbose. Show all HTTP requests and responses.

  -ip addr        Use addr instead of looking up the external IP.

  -config file    YAML file with email, key, zone, record, api_url and ip_services.
                  Must not be readable by other users. Environment variables take precedence.

  --help          Show this help.

ENVIRONMENT VARIABLES:
  CLOUDFLARE_API_EMAIL     (Required) Email address of Cloudflare account.

  CLOUDFLARE_API_KEY       (Required) API key of Cloudflare account.

  CLOUDFLARE_ZONE_NAME     (Required) The name of your zone, for example "example.com".

  CLOUDFLARE_DNS_RECORD    (Required) The DNS record name, for example "example.com"
                           or "subdomain.example.com". Must be an A record.

  CLOUDFLARE_API_URL       (Optional) Cloudflare API root. Defaults to %[2]s.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// run returns the process exit status.
func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("cloudflare-dyndns", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Show all HTTP requests and responses")
	ip := fs.String("ip", "", "IP address to set instead of looking it up")
	configFile := fs.String("config", "", "Path to YAML config file")
	fs.Usage = func() {
		fmt.Fprintf(stdout, usageText, fs.Name(), dyndns.DefaultBaseURL)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	logger := newLogger(stderr, *verbose)

	if err := update(context.Background(), stdout, stderr, getenv, logger, *verbose, *ip, *configFile); err != nil {
		report(stderr, err)
		return 1
	}
	return 0
}

func update(ctx context.Context, stdout, stderr io.Writer, getenv func(string) string, logger logr.Logger, verbose bool, ip, configFile string) error {
	cfg, err := config.Load(getenv, configFile)
	if err != nil {
		return err
	}
	logger.V(1).Info("config is valid", "zone", cfg.Zone, "record", cfg.Record, "email", cfg.Email)

	opts := []dyndns.Option{
		dyndns.UsingCloudflare(cfg.Email, cfg.Key),
		dyndns.UsingBaseURL(cfg.APIURL),
		dyndns.WithLogger(logger),
	}
	if verbose {
		opts = append(opts, dyndns.WithVerboseOutput(stderr))
	}
	if ip != "" {
		r, err := dyndns.FromString(ip)
		if err != nil {
			return err
		}
		opts = append(opts, dyndns.UsingResolver(r))
	} else {
		opts = append(opts, dyndns.UsingWebResolver(cfg.IPServices...))
	}

	client, err := dyndns.New(cfg.Zone, cfg.Record, opts...)
	if err != nil {
		return fmt.Errorf("error creating dyndns client: %w", err)
	}
	newIP, err := client.RunDDNS(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, newIP)
	return nil
}

func report(stderr io.Writer, err error) {
	var malformed *dyndns.MalformedResponseError
	if errors.As(err, &malformed) {
		fmt.Fprintf(stderr, "Could not parse JSON response: %s\n", malformed.Err)
		fmt.Fprintf(stderr, "%s\n", malformed.Body)
		return
	}
	fmt.Fprintln(stderr, err)
}

// newLogger writes stdlib log lines to w. Timestamps are left off when a person is watching.
func newLogger(w io.Writer, verbose bool) logr.Logger {
	flags := log.LstdFlags
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		flags = 0
	}
	v := 0
	if verbose {
		v = 1
	}
	stdr.SetVerbosity(v)
	return stdr.New(log.New(w, "", flags))
}
