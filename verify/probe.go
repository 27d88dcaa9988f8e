package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// checkProbe exercises the site the way a browser reaches it: every
// content hostname must answer 200, and a redirect hostname must answer a
// single 301 pointing at the primary with path and query intact. Redirects
// are never followed.
func (r *Runner) checkProbe(ctx context.Context, report *Report) {
	for _, spec := range r.plan.Distributions {
		for _, host := range spec.Hostnames {
			if spec.Redirects() {
				r.probeRedirect(ctx, report, host, spec.RedirectTo)
			} else {
				r.probeContent(ctx, report, host)
			}
		}
	}
}

func (r *Runner) probeContent(ctx context.Context, report *Report, host string) {
	resp, err := r.get(ctx, "https://"+host+"/")
	if err != nil {
		report.failf("probe-content", host, "request failed: %v", err)
		return
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		report.failf("probe-content", host, "status %d, want 200", resp.StatusCode)
		return
	}
	report.pass("probe-content", host)
}

func (r *Runner) probeRedirect(ctx context.Context, report *Report, host, primary string) {
	const probePath = "/deep/page?q=1"

	resp, err := r.get(ctx, "https://"+host+probePath)
	if err != nil {
		report.failf("probe-redirect", host, "request failed: %v", err)
		return
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusMovedPermanently {
		report.failf("probe-redirect", host, "status %d, want 301", resp.StatusCode)
		return
	}

	location := resp.Header.Get("Location")
	want := "https://" + primary + probePath
	if location != want {
		report.failf("probe-redirect", host, "location %q, want %q", location, want)
		return
	}

	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		report.failf("probe-redirect", host, "redirect is cacheable: Cache-Control %q", cc)
		return
	}
	report.pass("probe-redirect", host)
}

func (r *Runner) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return r.probe.Do(req)
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
}
