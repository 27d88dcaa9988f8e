package infra

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	sitetheory "github.com/theory-cloud/sitetheory"
	"github.com/theory-cloud/sitetheory/pkg/naming"
	"github.com/theory-cloud/sitetheory/policy"
)

// SiteStackProps configures the site stack. Certificate comes from the
// certificate stack in CertificateRegion; cross-region references carry it
// over.
type SiteStackProps struct {
	Config      sitetheory.SiteConfig
	Certificate awscertificatemanager.ICertificate

	// BootstrapQualifier overrides the CDK bootstrap qualifier baked into
	// the operator's assumable role names. Empty means the default.
	BootstrapQualifier string
}

// SiteStack carries everything the site needs in its home region: the asset
// bucket, the distributions the plan calls for, DNS records, the two CI
// principals, runtime parameters, and the asset deployment.
type SiteStack struct {
	awscdk.Stack

	Bucket  awss3.Bucket
	Primary awscloudfront.Distribution
	// Alias is nil under the merge policy.
	Alias awscloudfront.Distribution

	PublisherSecret awssecretsmanager.Secret
	OperatorSecret  awssecretsmanager.Secret

	BucketName      string
	ParameterPrefix string
}

// NewSiteStack realizes the site plan. Resource names are deterministic
// functions of app, stage, account, and region, so the IAM documents can be
// built and scope-checked before any resource exists.
func NewSiteStack(scope constructs.Construct, props *SiteStackProps) (*SiteStack, error) {
	cfg := props.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("site stack config: %w", err)
	}
	if props.Certificate == nil {
		return nil, fmt.Errorf("site stack: missing certificate")
	}

	plan := sitetheory.PlanTopology(cfg)
	stackName := naming.StackName(cfg.App, "site", cfg.Stage)

	stack := awscdk.NewStack(scope, jsii.String(stackName), &awscdk.StackProps{
		Env:                   stackEnv(cfg.Account, cfg.Region),
		CrossRegionReferences: jsii.Bool(true),
		Description:           jsii.String(fmt.Sprintf("Static site %s", cfg.Domain)),
	})

	zone := siteZone(stack, cfg)

	bucketName := naming.BucketName(cfg.App, "site", cfg.Stage, cfg.Account, cfg.Region)
	bucket := newSiteBucket(stack, cfg, bucketName)

	var logBucket awss3.IBucket
	if cfg.AccessLogs {
		logBucket = newAccessLogBucket(stack, cfg)
	}

	dists, err := newDistributions(stack, cfg, plan, props.Certificate, bucket, logBucket)
	if err != nil {
		return nil, err
	}

	newAliasRecords(stack, cfg, plan, zone, dists)

	principals, err := newDeployPrincipals(stack, cfg, principalScope{
		bucketName:       bucketName,
		distributionARNs: dists.arns(cfg.Account),
		stackARNs: []string{
			policy.StackARN(CertificateRegion, cfg.Account, naming.StackName(cfg.App, "cert", cfg.Stage)),
			policy.StackARN(cfg.Region, cfg.Account, stackName),
		},
		regions:   []string{cfg.Region, CertificateRegion},
		qualifier: props.BootstrapQualifier,
	})
	if err != nil {
		return nil, err
	}

	prefix := newRuntimeParameters(stack, cfg, bucketName, dists)

	newSiteDeployment(stack, cfg, bucket, dists)

	site := &SiteStack{
		Stack:           stack,
		Bucket:          bucket,
		Primary:         dists.primary,
		Alias:           dists.alias,
		PublisherSecret: principals.publisherSecret,
		OperatorSecret:  principals.operatorSecret,
		BucketName:      bucketName,
		ParameterPrefix: prefix,
	}
	site.addOutputs(plan)
	return site, nil
}

// addOutputs surfaces the coordinates a pipeline consumes after deploy. Key
// material stays in Secrets Manager; only the secret ARNs appear here.
func (s *SiteStack) addOutputs(plan sitetheory.TopologyPlan) {
	out := func(id, description string, value *string) {
		awscdk.NewCfnOutput(s.Stack, jsii.String(id), &awscdk.CfnOutputProps{
			Value:       value,
			Description: jsii.String(description),
		})
	}

	out("BucketName", "Site asset bucket", jsii.String(s.BucketName))
	out("PrimaryDistributionId", "Content distribution", s.Primary.DistributionId())
	out("PrimaryDistributionDomain", "Content distribution endpoint", s.Primary.DistributionDomainName())
	if s.Alias != nil {
		out("AliasDistributionId", "Redirect distribution", s.Alias.DistributionId())
	}
	out("SiteURLs", "Public site URLs", jsii.String(strings.Join(plan.URLs(), " ")))
	out("PublisherCredentialsSecret", "Secrets Manager ARN of the publisher access key", s.PublisherSecret.SecretArn())
	out("OperatorCredentialsSecret", "Secrets Manager ARN of the operator access key", s.OperatorSecret.SecretArn())
	out("ParameterPrefix", "SSM namespace holding the site coordinates", jsii.String(s.ParameterPrefix))
}
