// Package verify checks a deployed site against its plan: bucket privacy,
// distribution wiring, credential storage, and optionally asset drift and
// the live redirect. Every check is read-only; the verifier holds no write
// permission and never repairs what it finds.
package verify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	sitetheory "github.com/theory-cloud/sitetheory"
	"github.com/theory-cloud/sitetheory/pkg/naming"
	"github.com/theory-cloud/sitetheory/pkg/observability"
)

// Options selects the optional check groups. The baseline checks always
// run.
type Options struct {
	// Assets compares the local asset directory against the bucket listing.
	Assets bool

	// Probe issues live HTTPS requests against the site's hostnames.
	Probe bool

	// HTTPClient overrides the probe transport. The client must not follow
	// redirects; the default does not.
	HTTPClient *http.Client
}

// Runner executes the verification checks for one site.
type Runner struct {
	cfg  sitetheory.SiteConfig
	plan sitetheory.TopologyPlan

	s3      S3API
	cdn     CloudFrontAPI
	secrets SecretsManagerAPI
	probe   *http.Client

	log  observability.StructuredLogger
	opts Options
}

// New validates the configuration and assembles a runner. A nil logger
// disables logging; findings are unaffected.
func New(cfg sitetheory.SiteConfig, s3c S3API, cdn CloudFrontAPI, secrets SecretsManagerAPI, opts Options, log observability.StructuredLogger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("verify config: %w", err)
	}
	if s3c == nil || cdn == nil || secrets == nil {
		return nil, fmt.Errorf("verify: missing AWS clients")
	}
	if log == nil {
		log = observability.NewNoOpLogger()
	}

	probe := opts.HTTPClient
	if probe == nil {
		probe = noRedirectClient()
	}

	return &Runner{
		cfg:     cfg,
		plan:    sitetheory.PlanTopology(cfg),
		s3:      s3c,
		cdn:     cdn,
		secrets: secrets,
		probe:   probe,
		log:     log,
		opts:    opts,
	}, nil
}

// noRedirectClient returns the probe's transport: redirects are reported,
// never followed, because the redirect itself is what gets verified.
func noRedirectClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Run executes every selected check and returns the report. Check failures
// are findings, not errors; the error return covers context cancellation
// only.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{
		RunID:     ulid.Make().String(),
		App:       r.cfg.App,
		Stage:     r.cfg.Stage,
		StartedAt: time.Now().UTC(),
	}

	log := r.log.WithRunID(report.RunID).WithSite(r.cfg.Domain).WithRegion(r.cfg.Region)
	log.Info("verification started", map[string]any{
		"assets": r.opts.Assets,
		"probe":  r.opts.Probe,
	})

	bucket := naming.BucketName(r.cfg.App, "site", r.cfg.Stage, r.cfg.Account, r.cfg.Region)

	r.checkBucket(ctx, &report, bucket)

	live := r.checkDistributions(ctx, &report)
	r.checkBucketPolicy(ctx, &report, bucket, live)
	r.checkSecrets(ctx, &report, log)

	if r.opts.Assets {
		r.checkAssets(ctx, &report, bucket)
	}
	if r.opts.Probe {
		r.checkProbe(ctx, &report)
	}

	report.FinishedAt = time.Now().UTC()

	for _, f := range report.Findings {
		if f.Status == StatusFail {
			log.Warn("check failed", map[string]any{
				"check":  f.Check,
				"target": f.Target,
				"detail": f.Detail,
			})
		}
	}
	log.Info("verification finished", map[string]any{
		"passed": report.Passed,
		"failed": report.Failed,
	})

	return report, ctx.Err()
}
