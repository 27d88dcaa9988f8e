package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	sitetheory "github.com/theory-cloud/sitetheory"
	"github.com/theory-cloud/sitetheory/pkg/observability"
	zaplog "github.com/theory-cloud/sitetheory/pkg/observability/zap"
	"github.com/theory-cloud/sitetheory/verify"
)

// Exit codes: 0 means every check passed, 1 means at least one check
// failed, 2 means the run itself could not complete.
func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath        string
		assets            bool
		probe             bool
		credentialsSecret string
		logLevel          string
	)
	flag.StringVar(&configPath, "config", "site.yaml", "path to the site configuration file")
	flag.BoolVar(&assets, "assets", false, "compare the local asset directory against the bucket")
	flag.BoolVar(&probe, "probe", false, "issue live HTTPS requests against the site's hostnames")
	flag.StringVar(&credentialsSecret, "credentials-secret", "", "run the checks with the key pair stored in this Secrets Manager secret")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log, err := zaplog.NewZapLogger(observability.LoggerConfig{Level: logLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitetheory-verify: %v\n", err)
		return 2
	}
	defer log.Close()

	cfg, err := sitetheory.LoadSiteConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitetheory-verify: %v\n", err)
		return 2
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.Region, credentialsSecret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitetheory-verify: %v\n", err)
		return 2
	}

	runner, err := verify.New(
		cfg,
		s3.NewFromConfig(awsCfg),
		cloudfront.NewFromConfig(awsCfg),
		secretsmanager.NewFromConfig(awsCfg),
		verify.Options{Assets: assets, Probe: probe},
		log,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitetheory-verify: %v\n", err)
		return 2
	}

	report, runErr := runner.Run(ctx)

	out, err := report.JSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sitetheory-verify: %v\n", err)
		return 2
	}
	fmt.Println(string(out))

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "sitetheory-verify: interrupted: %v\n", runErr)
		return 2
	}
	if !report.OK() {
		fmt.Fprintf(os.Stderr, "sitetheory-verify: %d of %d checks failed\n", report.Failed, report.Failed+report.Passed)
		return 1
	}
	return 0
}

// loadAWSConfig builds the SDK configuration for the checks. With a
// credentials secret named, the default chain only reads that secret; the
// checks then run with the stored key pair.
func loadAWSConfig(ctx context.Context, region, credentialsSecret string) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	if credentialsSecret == "" {
		return awsCfg, nil
	}

	creds, err := verify.FetchStoredCredentials(ctx, secretsmanager.NewFromConfig(awsCfg), credentialsSecret)
	if err != nil {
		return aws.Config{}, err
	}

	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, ""),
		),
	)
}
