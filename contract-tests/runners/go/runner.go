package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/theory-cloud/sitetheory/viewerfn"
)

func runFixture(f Fixture) error {
	rule := viewerfn.Rule{
		AliasHost:   f.Rule.AliasHost,
		PrimaryHost: f.Rule.PrimaryHost,
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	if f.Expect.Redirect == nil && !f.Expect.PassThrough {
		return fmt.Errorf("fixture expects neither redirect nor pass_through")
	}
	if f.Expect.Redirect != nil && f.Expect.PassThrough {
		return fmt.Errorf("fixture expects both redirect and pass_through")
	}

	result := rule.Apply(viewerfn.Request{
		Host:        f.Request.Host,
		URI:         f.Request.URI,
		QueryString: f.Request.QueryString,
	})

	if f.Expect.PassThrough {
		if result.Redirected {
			return fmt.Errorf("expected pass-through, got %d redirect to %s", result.Status, result.Location)
		}
		if result.Request.URI != f.Request.URI || result.Request.QueryString != f.Request.QueryString {
			return fmt.Errorf("pass-through modified the request: %+v", result.Request)
		}
		return nil
	}

	expected := *f.Expect.Redirect
	if !result.Redirected {
		return fmt.Errorf("expected %d redirect, got pass-through", expected.Status)
	}
	if result.Status != expected.Status {
		return fmt.Errorf("status: expected %d, got %d", expected.Status, result.Status)
	}
	if result.Location != expected.Location {
		return fmt.Errorf("location: expected %q, got %q", expected.Location, result.Location)
	}
	return nil
}

func printFailure(f Fixture, err error) {
	fmt.Fprintf(os.Stderr, "FAIL %s: %s\n", f.ID, f.Name)
	fmt.Fprintf(os.Stderr, "  %v\n", err)
	fmt.Fprintf(os.Stderr, "  rule: %s -> %s\n", f.Rule.AliasHost, f.Rule.PrimaryHost)
	fmt.Fprintf(os.Stderr, "  request: host=%q uri=%q query=%q\n", f.Request.Host, f.Request.URI, f.Request.QueryString)
}

func summarizeFailures(failed []Fixture) {
	if len(failed) == 0 {
		return
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].ID < failed[j].ID })
	fmt.Fprintln(os.Stderr, "\nFailed fixtures:")
	for _, f := range failed {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", f.ID, f.Name)
	}
}
