// Package infra realizes a site plan as CDK stacks: a us-east-1 certificate
// stack and a site stack carrying the bucket, distributions, DNS records,
// deploy principals, parameters, and the asset deployment.
//
// The package holds no logic of its own beyond wiring: which distributions
// exist and how they behave comes from sitetheory.PlanTopology, every IAM
// grant comes from the policy package, and names come from pkg/naming. Synth
// fails rather than emitting a template whose grants fall outside the
// stack's own resources.
package infra

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/jsii-runtime-go"

	sitetheory "github.com/theory-cloud/sitetheory"
)

// CertificateRegion is where CloudFront requires viewer certificates to be
// issued, regardless of the site stack's region.
const CertificateRegion = "us-east-1"

func stackEnv(account, region string) *awscdk.Environment {
	return &awscdk.Environment{
		Account: jsii.String(account),
		Region:  jsii.String(region),
	}
}

// siteZone binds the configured hosted zone by id and name. No lookup is
// performed; the attributes come from configuration so synth stays
// deterministic and credential-free.
func siteZone(scope awscdk.Stack, cfg sitetheory.SiteConfig) awsroute53.IHostedZone {
	return awsroute53.HostedZone_FromHostedZoneAttributes(scope, jsii.String("SiteZone"), &awsroute53.HostedZoneAttributes{
		HostedZoneId: jsii.String(cfg.HostedZoneID),
		ZoneName:     jsii.String(cfg.ZoneName),
	})
}

func removalPolicyFor(cfg sitetheory.SiteConfig) awscdk.RemovalPolicy {
	if cfg.Retain {
		return awscdk.RemovalPolicy_RETAIN
	}
	return awscdk.RemovalPolicy_DESTROY
}

// stringSlice converts hostnames and patterns for jsii without sharing the
// backing array with the caller.
func stringSlice(values []string) *[]*string {
	out := make([]*string, 0, len(values))
	for _, v := range values {
		out = append(out, jsii.String(v))
	}
	return &out
}
