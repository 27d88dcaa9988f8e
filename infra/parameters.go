package infra

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsssm"
	"github.com/aws/jsii-runtime-go"

	sitetheory "github.com/theory-cloud/sitetheory"
	"github.com/theory-cloud/sitetheory/pkg/naming"
)

// newRuntimeParameters publishes the coordinates deploy jobs and the
// verifier need under one SSM namespace, so CI discovers the stack by app
// and stage alone instead of carrying per-site configuration.
func newRuntimeParameters(stack awscdk.Stack, cfg sitetheory.SiteConfig, bucketName string, dists *distributionSet) string {
	prefix := naming.ParameterPrefix(cfg.App, cfg.Stage)

	params := []struct {
		id    string
		name  string
		value *string
	}{
		{"AccountParameter", "/account", jsii.String(cfg.Account)},
		{"RegionParameter", "/region", jsii.String(cfg.Region)},
		{"BucketNameParameter", "/bucket-name", jsii.String(bucketName)},
		{"PrimaryDistributionParameter", "/distribution-id-primary", dists.primary.DistributionId()},
	}
	if dists.alias != nil {
		params = append(params, struct {
			id    string
			name  string
			value *string
		}{"AliasDistributionParameter", "/distribution-id-alias", dists.alias.DistributionId()})
	}

	for _, p := range params {
		awsssm.NewStringParameter(stack, jsii.String(p.id), &awsssm.StringParameterProps{
			ParameterName: jsii.String(prefix + p.name),
			StringValue:   p.value,
		})
	}

	return prefix
}
