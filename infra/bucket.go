package infra

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/jsii-runtime-go"

	sitetheory "github.com/theory-cloud/sitetheory"
	"github.com/theory-cloud/sitetheory/pkg/naming"
)

// newSiteBucket declares the private asset bucket. All four public-access
// dimensions are blocked together; EnforceSSL adds the transport deny to the
// bucket policy, alongside the per-distribution read grants the origin
// wiring contributes.
func newSiteBucket(stack awscdk.Stack, cfg sitetheory.SiteConfig, bucketName string) awss3.Bucket {
	removal := removalPolicyFor(cfg)

	return awss3.NewBucket(stack, jsii.String("SiteBucket"), &awss3.BucketProps{
		BucketName:        jsii.String(bucketName),
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		EnforceSSL:        jsii.Bool(true),
		ObjectOwnership:   awss3.ObjectOwnership_BUCKET_OWNER_ENFORCED,
		Versioned:         jsii.Bool(false),
		RemovalPolicy:     removal,
		AutoDeleteObjects: jsii.Bool(removal == awscdk.RemovalPolicy_DESTROY),
	})
}

// newAccessLogBucket declares the distribution access-log bucket. CloudFront
// log delivery writes with ACLs, so ownership stays on the object writer
// here; public access is still fully blocked.
func newAccessLogBucket(stack awscdk.Stack, cfg sitetheory.SiteConfig) awss3.IBucket {
	removal := removalPolicyFor(cfg)

	return awss3.NewBucket(stack, jsii.String("AccessLogBucket"), &awss3.BucketProps{
		BucketName:        jsii.String(naming.BucketName(cfg.App, "logs", cfg.Stage, cfg.Account, cfg.Region)),
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		EnforceSSL:        jsii.Bool(true),
		ObjectOwnership:   awss3.ObjectOwnership_OBJECT_WRITER,
		LifecycleRules: &[]*awss3.LifecycleRule{{
			Expiration: awscdk.Duration_Days(jsii.Number(90)),
		}},
		RemovalPolicy:     removal,
		AutoDeleteObjects: jsii.Bool(removal == awscdk.RemovalPolicy_DESTROY),
	})
}
