package dyndns

import (
	"fmt"
	"strings"

	"github.com/cloudflare/cloudflare-go"
)

// APIError is returned when Cloudflare answers with a non-2xx status or an error envelope.
type APIError struct {
	Status string // e.g. "403 Forbidden"
	Errors []cloudflare.ResponseInfo
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("ERROR: unexpected response status %s", e.Status)
	}
	lines := make([]string, len(e.Errors))
	for i, info := range e.Errors {
		lines[i] = fmt.Sprintf("ERROR %d: %s", info.Code, info.Message)
	}
	return strings.Join(lines, "\n")
}

// MalformedResponseError is returned when a response body is not valid JSON.
// Body holds the raw response so it can be shown to the user.
type MalformedResponseError struct {
	Body []byte
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("could not parse JSON response: %s", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// NotFoundError is returned when a zone or DNS record lookup comes back empty.
type NotFoundError struct {
	Kind string // "zone" or `"A" DNS record`
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find %s with name %s", e.Kind, e.Name)
}

// NoValidIPError is returned when none of the IP services produced something that looks like an IP.
type NoValidIPError struct {
	Responses []string
}

func (e *NoValidIPError) Error() string {
	if len(e.Responses) == 0 {
		return "could not determine IP: no services were tried"
	}
	return fmt.Sprintf("could not determine IP: rejected responses %q", e.Responses)
}
