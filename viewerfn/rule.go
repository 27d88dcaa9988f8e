// Package viewerfn models the viewer-request function attached to a
// redirect-only distribution.
//
// The rule exists twice by necessity: once as pure Go (Apply) so the
// semantics are testable, and once as rendered CloudFront Function
// JavaScript (Code) because the edge runtime only executes JavaScript. The
// two must agree; the Go side is the reference.
package viewerfn

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Rule redirects requests for AliasHost to PrimaryHost, preserving path and
// query. Any other host passes through untouched.
type Rule struct {
	AliasHost   string
	PrimaryHost string
}

// Request is the subset of a viewer request the rule inspects.
type Request struct {
	// Host is the raw Host header value, possibly with port or list noise.
	Host string
	// URI is the request path, beginning with "/".
	URI string
	// QueryString is the raw query without the leading "?".
	QueryString string
}

// Result is the outcome of applying the rule to one request.
type Result struct {
	Redirected bool
	Status     int
	Location   string

	// Request carries the original request on pass-through.
	Request Request
}

var hostRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)+$`)

// Validate ensures the rule names two distinct, well-formed hostnames.
func (r Rule) Validate() error {
	if !hostRe.MatchString(r.AliasHost) {
		return fmt.Errorf("alias host %q is not a valid hostname", r.AliasHost)
	}
	if !hostRe.MatchString(r.PrimaryHost) {
		return fmt.Errorf("primary host %q is not a valid hostname", r.PrimaryHost)
	}
	if r.AliasHost == r.PrimaryHost {
		return fmt.Errorf("alias and primary host must differ")
	}
	return nil
}

// Apply evaluates the rule against one request.
//
// Only a Host equal to the alias hostname redirects; everything else, the
// empty host included, passes through with the request unmodified.
func (r Rule) Apply(req Request) Result {
	if CanonicalHost(req.Host) != r.AliasHost {
		return Result{Request: req}
	}
	return Result{
		Redirected: true,
		Status:     301,
		Location:   r.Location(req.URI, req.QueryString),
		Request:    req,
	}
}

// Location builds the redirect target for a path and raw query.
func (r Rule) Location(uri, query string) string {
	if uri == "" {
		uri = "/"
	}
	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}
	location := "https://" + r.PrimaryHost + uri
	if query != "" {
		location += "?" + query
	}
	return location
}

// CanonicalHost normalizes a Host header value for comparison: first comma
// token, port stripped, lowercased, trailing dot removed.
func CanonicalHost(value string) string {
	if idx := strings.Index(value, ","); idx >= 0 {
		value = value[:idx]
	}
	value = strings.ToLower(strings.TrimSpace(value))
	value = stripPort(value)
	return strings.TrimSuffix(value, ".")
}

func stripPort(host string) string {
	lastColon := strings.LastIndex(host, ":")
	if lastColon <= 0 {
		return host
	}

	portPart := host[lastColon+1:]
	if portPart == "" {
		return host
	}
	for _, r := range portPart {
		if !unicode.IsDigit(r) {
			return host
		}
	}
	return host[:lastColon]
}
