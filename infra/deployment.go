package infra

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3assets"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3deployment"
	"github.com/aws/jsii-runtime-go"

	sitetheory "github.com/theory-cloud/sitetheory"
)

// newSiteDeployment syncs the local asset directory into the site bucket on
// every deploy. Prune removes bucket objects that no longer exist locally,
// except objects matching the exclude patterns, which are neither uploaded
// nor deleted. The primary distribution is invalidated wholesale afterwards
// so cached copies of changed files expire immediately.
func newSiteDeployment(stack awscdk.Stack, cfg sitetheory.SiteConfig, bucket awss3.IBucket, dists *distributionSet) {
	if cfg.AssetDir == "" {
		return
	}

	var assetOptions *awss3assets.AssetOptions
	if len(cfg.ExcludePatterns) > 0 {
		assetOptions = &awss3assets.AssetOptions{
			Exclude: stringSlice(cfg.ExcludePatterns),
		}
	}

	props := &awss3deployment.BucketDeploymentProps{
		Sources: &[]awss3deployment.ISource{
			awss3deployment.Source_Asset(jsii.String(cfg.AssetDir), assetOptions),
		},
		DestinationBucket: bucket,
		Prune:             jsii.Bool(true),
		Distribution:      dists.primary,
		DistributionPaths: jsii.Strings("/*"),
	}
	if len(cfg.ExcludePatterns) > 0 {
		props.Exclude = stringSlice(cfg.ExcludePatterns)
	}

	awss3deployment.NewBucketDeployment(stack, jsii.String("SiteAssets"), props)
}
