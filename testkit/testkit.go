// Package testkit provides deterministic fixtures for exercising the site
// stacks without AWS access: canned configurations, throwaway asset
// directories, and synthesized templates cached per topology.
package testkit

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"

	sitetheory "github.com/theory-cloud/sitetheory"
	"github.com/theory-cloud/sitetheory/infra"
)

const (
	Account = "123456789012"
	Region  = "eu-west-1"
	ZoneID  = "Z0123456789ABCDEFGHIJ"
)

// Env is one synthesized site: its configuration and the templates of both
// stacks, ready for assertion.
type Env struct {
	Config sitetheory.SiteConfig

	BucketName      string
	ParameterPrefix string

	CertTemplate assertions.Template
	SiteTemplate assertions.Template
}

// MergeConfig returns a valid configuration whose plan is a single
// distribution carrying both hostnames.
func MergeConfig(assetDir string) sitetheory.SiteConfig {
	cfg := sitetheory.DefaultSiteConfig()
	cfg.App = "docs"
	cfg.Stage = "test"
	cfg.Account = Account
	cfg.Region = Region
	cfg.Domain = "docs.example.com"
	cfg.AliasDomain = "www.docs.example.com"
	cfg.RedirectPolicy = sitetheory.RedirectPolicyMerge
	cfg.HostedZoneID = ZoneID
	cfg.ZoneName = "example.com"
	cfg.AssetDir = assetDir
	return cfg
}

// RedirectConfig returns a valid configuration whose plan is a content
// distribution plus a redirect-only alias distribution.
func RedirectConfig(assetDir string) sitetheory.SiteConfig {
	cfg := MergeConfig(assetDir)
	cfg.RedirectPolicy = sitetheory.RedirectPolicyAliasToPrimary
	return cfg
}

// WriteAssets populates dir with a minimal deployable site, including one
// file matching the default exclude pattern.
func WriteAssets(t *testing.T, dir string) {
	t.Helper()
	if err := writeAssets(dir); err != nil {
		t.Fatalf("write assets: %v", err)
	}
}

func writeAssets(dir string) error {
	files := map[string]string{
		"index.html":        "<!doctype html><title>docs</title>",
		"404.html":          "<!doctype html><title>not found</title>",
		"css/site.css":      "body { margin: 0 }",
		"assets/app.js.map": "{}",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Synth builds both stacks from cfg in a fresh CDK app and captures their
// templates. The asset directory must exist before synth.
func Synth(t *testing.T, cfg sitetheory.SiteConfig) *Env {
	t.Helper()
	env, err := synth(cfg)
	if err != nil {
		t.Fatalf("synth: %v", err)
	}
	return env
}

func synth(cfg sitetheory.SiteConfig) (*Env, error) {
	app := awscdk.NewApp(nil)

	cert, err := infra.NewCertificateStack(app, &infra.CertificateStackProps{Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("certificate stack: %w", err)
	}
	site, err := infra.NewSiteStack(app, &infra.SiteStackProps{
		Config:      cfg,
		Certificate: cert.Certificate,
	})
	if err != nil {
		return nil, fmt.Errorf("site stack: %w", err)
	}

	return &Env{
		Config:          cfg,
		BucketName:      site.BucketName,
		ParameterPrefix: site.ParameterPrefix,
		CertTemplate:    assertions.Template_FromStack(cert.Stack, nil),
		SiteTemplate:    assertions.Template_FromStack(site.Stack, nil),
	}, nil
}

var (
	mergeOnce sync.Once
	mergeEnv  *Env
	mergeErr  error

	redirectOnce sync.Once
	redirectEnv  *Env
	redirectErr  error
)

// MergeSite returns the shared single-distribution fixture. It is
// synthesized once per test process; tests must treat it as read-only.
func MergeSite(t *testing.T) *Env {
	t.Helper()
	mergeOnce.Do(func() {
		mergeEnv, mergeErr = sharedSynth(MergeConfig)
	})
	if mergeErr != nil {
		t.Fatalf("merge fixture: %v", mergeErr)
	}
	return mergeEnv
}

// RedirectSite returns the shared two-distribution fixture.
func RedirectSite(t *testing.T) *Env {
	t.Helper()
	redirectOnce.Do(func() {
		redirectEnv, redirectErr = sharedSynth(RedirectConfig)
	})
	if redirectErr != nil {
		t.Fatalf("redirect fixture: %v", redirectErr)
	}
	return redirectEnv
}

// sharedSynth uses a process-scoped temp dir rather than t.TempDir: the
// fixture outlives the first test that built it.
func sharedSynth(configFor func(string) sitetheory.SiteConfig) (*Env, error) {
	dir, err := os.MkdirTemp("", "sitetheory-assets-")
	if err != nil {
		return nil, fmt.Errorf("asset dir: %w", err)
	}
	if err := writeAssets(dir); err != nil {
		return nil, fmt.Errorf("write assets: %w", err)
	}
	return synth(configFor(dir))
}
