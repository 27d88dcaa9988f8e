package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"

	sitetheory "github.com/theory-cloud/sitetheory"
	"github.com/theory-cloud/sitetheory/infra"
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath string
	flag.StringVar(&configPath, "config", "site.yaml", "path to the site configuration file")
	flag.Parse()

	cfg, err := sitetheory.LoadSiteConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitetheory: %v\n", err)
		return 1
	}
	applyCLIEnvironment(&cfg)

	app := awscdk.NewApp(nil)

	cert, err := infra.NewCertificateStack(app, &infra.CertificateStackProps{Config: cfg})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitetheory: %v\n", err)
		return 1
	}

	if _, err := infra.NewSiteStack(app, &infra.SiteStackProps{
		Config:      cfg,
		Certificate: cert.Certificate,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "sitetheory: %v\n", err)
		return 1
	}

	app.Synth(nil)
	return 0
}

// applyCLIEnvironment fills in the deployment target from the CDK CLI's
// environment when the config file leaves it out, so one config file can
// serve several accounts.
func applyCLIEnvironment(cfg *sitetheory.SiteConfig) {
	if cfg.Account == "" {
		cfg.Account = os.Getenv("CDK_DEFAULT_ACCOUNT")
	}
	if cfg.Region == "" {
		cfg.Region = os.Getenv("CDK_DEFAULT_REGION")
	}
}
