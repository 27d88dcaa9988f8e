package viewerfn

import (
	"net/url"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// For any request path and query, the synthesized redirect target parses as
// a URL whose scheme is https, whose host is the primary hostname, and whose
// path and raw query match the original request.
func TestApplyRedirectTargetShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rule := exampleRule()

		segment := rapid.StringMatching(`[a-z0-9._~-]{0,12}`)
		depth := rapid.IntRange(0, 4).Draw(t, "depth")
		uri := "/"
		for i := 0; i < depth; i++ {
			part := segment.Draw(t, "segment")
			if part == "" {
				continue
			}
			if uri == "/" {
				uri += part
			} else {
				uri += "/" + part
			}
		}

		query := ""
		pairs := rapid.IntRange(0, 3).Draw(t, "pairs")
		for i := 0; i < pairs; i++ {
			key := rapid.StringMatching(`[a-z][a-z0-9]{0,6}`).Draw(t, "key")
			value := rapid.StringMatching(`[a-zA-Z0-9._-]{0,8}`).Draw(t, "value")
			pair := key + "=" + value
			if query == "" {
				query = pair
			} else {
				query += "&" + pair
			}
		}

		got := rule.Apply(Request{Host: "www.example.com", URI: uri, QueryString: query})
		if !got.Redirected || got.Status != 301 {
			t.Fatalf("expected 301 redirect, got %+v", got)
		}

		parsed, err := url.Parse(got.Location)
		if err != nil {
			t.Fatalf("location does not parse: %v", err)
		}
		if parsed.Scheme != "https" {
			t.Fatalf("scheme = %q", parsed.Scheme)
		}
		if parsed.Host != rule.PrimaryHost {
			t.Fatalf("host = %q, want %q", parsed.Host, rule.PrimaryHost)
		}
		if parsed.EscapedPath() != uri {
			t.Fatalf("path = %q, want %q", parsed.EscapedPath(), uri)
		}
		if parsed.RawQuery != query {
			t.Fatalf("query = %q, want %q", parsed.RawQuery, query)
		}
	})
}

// Any host other than the alias, however mangled, must pass through with the
// request unmodified.
func TestApplyPassThroughNeverRedirects(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rule := exampleRule()

		host := rapid.StringMatching(`[a-zA-Z0-9.:-]{0,24}`).
			Filter(func(h string) bool { return CanonicalHost(h) != rule.AliasHost }).
			Draw(t, "host")

		req := Request{
			Host:        host,
			URI:         "/" + rapid.StringMatching(`[a-z0-9/._-]{0,16}`).Draw(t, "uri"),
			QueryString: rapid.StringMatching(`[a-z0-9=&]{0,16}`).Draw(t, "query"),
		}
		got := rule.Apply(req)
		if got.Redirected {
			t.Fatalf("host %q redirected", host)
		}
		if got.Request != req {
			t.Fatalf("request mutated on pass-through: %+v != %+v", got.Request, req)
		}
		if strings.Contains(got.Location, rule.PrimaryHost) {
			t.Fatalf("pass-through carries a location: %q", got.Location)
		}
	})
}
