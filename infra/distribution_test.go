package infra_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/sitetheory/testkit"
)

// Managed policy ids CloudFront assigns to the policies the distributions
// reference.
const (
	cachingOptimizedID = "658327ea-f89d-4fab-a63d-7e88639e58f6"
	cachingDisabledID  = "4135ea2d-6df8-44a3-9df3-4b5a84be39ad"
)

func TestMergePolicyYieldsOneDistribution(t *testing.T) {
	env := testkit.MergeSite(t)

	env.SiteTemplate.ResourceCountIs(jsii.String("AWS::CloudFront::Distribution"), jsii.Number(1))
	env.SiteTemplate.ResourceCountIs(jsii.String("AWS::CloudFront::Function"), jsii.Number(0))

	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Aliases":           []interface{}{"docs.example.com", "www.docs.example.com"},
			"DefaultRootObject": "index.html",
			"DefaultCacheBehavior": assertions.Match_ObjectLike(&map[string]interface{}{
				"CachePolicyId":        cachingOptimizedID,
				"ViewerProtocolPolicy": "redirect-to-https",
				"Compress":             true,
			}),
		}),
	})
}

func TestRedirectPolicyYieldsTwoDistributions(t *testing.T) {
	env := testkit.RedirectSite(t)

	env.SiteTemplate.ResourceCountIs(jsii.String("AWS::CloudFront::Distribution"), jsii.Number(2))

	// Content distribution: only the primary hostname, cached content.
	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Aliases":           []interface{}{"docs.example.com"},
			"DefaultRootObject": "index.html",
			"DefaultCacheBehavior": assertions.Match_ObjectLike(&map[string]interface{}{
				"CachePolicyId": cachingOptimizedID,
			}),
		}),
	})

	// Alias distribution: redirect only, nothing cached, viewer function
	// attached.
	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Aliases": []interface{}{"www.docs.example.com"},
			"DefaultCacheBehavior": assertions.Match_ObjectLike(&map[string]interface{}{
				"CachePolicyId": cachingDisabledID,
				"FunctionAssociations": assertions.Match_ArrayWith(&[]interface{}{
					assertions.Match_ObjectLike(&map[string]interface{}{
						"EventType": "viewer-request",
					}),
				}),
			}),
		}),
	})
}

func TestAliasRedirectFunctionCode(t *testing.T) {
	env := testkit.RedirectSite(t)

	env.SiteTemplate.ResourceCountIs(jsii.String("AWS::CloudFront::Function"), jsii.Number(1))
	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::CloudFront::Function"), map[string]interface{}{
		"Name": "docs-alias-redirect-test",
		"FunctionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Runtime": "cloudfront-js-2.0",
		}),
		"FunctionCode": assertions.Match_StringLikeRegexp(jsii.String(`www\.docs\.example\.com`)),
	})
}

func TestDistributionTransportSettings(t *testing.T) {
	env := testkit.MergeSite(t)

	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"HttpVersion": "http2and3",
			"IPV6Enabled": true,
			"PriceClass":  "PriceClass_100",
			"ViewerCertificate": assertions.Match_ObjectLike(&map[string]interface{}{
				"MinimumProtocolVersion": "TLSv1.2_2021",
				"SslSupportMethod":       "sni-only",
			}),
		}),
	})
}

func TestStaticSiteMapsNotFound(t *testing.T) {
	env := testkit.MergeSite(t)

	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"CustomErrorResponses": assertions.Match_ArrayWith(&[]interface{}{
				assertions.Match_ObjectLike(&map[string]interface{}{
					"ErrorCode":        404.0,
					"ResponseCode":     404.0,
					"ResponsePagePath": "/404.html",
				}),
			}),
		}),
	})
}

func TestSpaModeRemapsToIndex(t *testing.T) {
	dir := t.TempDir()
	testkit.WriteAssets(t, dir)

	cfg := testkit.MergeConfig(dir)
	cfg.SpaMode = true
	env := testkit.Synth(t, cfg)

	for _, code := range []float64{403, 404} {
		env.SiteTemplate.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
			"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
				"CustomErrorResponses": assertions.Match_ArrayWith(&[]interface{}{
					assertions.Match_ObjectLike(&map[string]interface{}{
						"ErrorCode":        code,
						"ResponseCode":     200.0,
						"ResponsePagePath": "/index.html",
					}),
				}),
			}),
		})
	}
}

func TestDisableIPv6SkipsAaaaRecords(t *testing.T) {
	dir := t.TempDir()
	testkit.WriteAssets(t, dir)

	cfg := testkit.MergeConfig(dir)
	cfg.DisableIPv6 = true
	env := testkit.Synth(t, cfg)

	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"IPV6Enabled": false,
		}),
	})

	// Two hostnames, A records only.
	env.SiteTemplate.ResourceCountIs(jsii.String("AWS::Route53::RecordSet"), jsii.Number(2))

	records := env.SiteTemplate.FindResources(jsii.String("AWS::Route53::RecordSet"), nil)
	for _, resource := range *records {
		props, ok := (*resource)["Properties"].(map[string]interface{})
		require.True(t, ok)
		require.Equal(t, "A", props["Type"])
	}
}

func TestAccessLogsAddLogBucket(t *testing.T) {
	dir := t.TempDir()
	testkit.WriteAssets(t, dir)

	cfg := testkit.MergeConfig(dir)
	cfg.AccessLogs = true
	env := testkit.Synth(t, cfg)

	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::S3::Bucket"), map[string]interface{}{
		"BucketName": "docs-logs-test-123456789012-eu-west-1",
		"OwnershipControls": map[string]interface{}{
			"Rules": []interface{}{
				map[string]interface{}{"ObjectOwnership": "ObjectWriter"},
			},
		},
	})
	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Logging": assertions.Match_ObjectLike(&map[string]interface{}{
				"Prefix": "primary/",
			}),
		}),
	})
}
