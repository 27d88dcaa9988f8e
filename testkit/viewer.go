package testkit

import "github.com/theory-cloud/sitetheory/viewerfn"

// SiteRule returns the redirect rule matching RedirectConfig's topology.
func SiteRule() viewerfn.Rule {
	return viewerfn.Rule{
		AliasHost:   "www.docs.example.com",
		PrimaryHost: "docs.example.com",
	}
}

// ViewerRequest builds a viewer request for rule tests.
func ViewerRequest(host, uri string) viewerfn.Request {
	return ViewerRequestWithQuery(host, uri, "")
}

// ViewerRequestWithQuery builds a viewer request carrying a raw query
// string, without the leading "?".
func ViewerRequestWithQuery(host, uri, query string) viewerfn.Request {
	if uri == "" {
		uri = "/"
	}
	return viewerfn.Request{
		Host:        host,
		URI:         uri,
		QueryString: query,
	}
}
