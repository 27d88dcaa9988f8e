package infra_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/sitetheory/infra"
	"github.com/theory-cloud/sitetheory/testkit"
)

func TestSiteBucketIsPrivate(t *testing.T) {
	env := testkit.MergeSite(t)

	require.Equal(t, "docs-site-test-123456789012-eu-west-1", env.BucketName)

	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::S3::Bucket"), map[string]interface{}{
		"BucketName": env.BucketName,
		"PublicAccessBlockConfiguration": map[string]interface{}{
			"BlockPublicAcls":       true,
			"BlockPublicPolicy":     true,
			"IgnorePublicAcls":      true,
			"RestrictPublicBuckets": true,
		},
		"BucketEncryption": assertions.Match_ObjectLike(&map[string]interface{}{
			"ServerSideEncryptionConfiguration": assertions.Match_ArrayWith(&[]interface{}{
				assertions.Match_ObjectLike(&map[string]interface{}{
					"ServerSideEncryptionByDefault": map[string]interface{}{
						"SSEAlgorithm": "AES256",
					},
				}),
			}),
		}),
		"OwnershipControls": map[string]interface{}{
			"Rules": []interface{}{
				map[string]interface{}{"ObjectOwnership": "BucketOwnerEnforced"},
			},
		},
	})
}

func TestBucketPolicyDeniesInsecureTransport(t *testing.T) {
	env := testkit.MergeSite(t)

	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::S3::BucketPolicy"), map[string]interface{}{
		"PolicyDocument": assertions.Match_ObjectLike(&map[string]interface{}{
			"Statement": assertions.Match_ArrayWith(&[]interface{}{
				assertions.Match_ObjectLike(&map[string]interface{}{
					"Effect": "Deny",
					"Action": "s3:*",
					"Condition": map[string]interface{}{
						"Bool": map[string]interface{}{"aws:SecureTransport": "false"},
					},
				}),
			}),
		}),
	})
}

// Each distribution must hold its own read grant on the bucket, conditioned
// on its own ARN. One grant per distribution identity, no shared grant.
func TestBucketPolicyGrantsReadPerDistribution(t *testing.T) {
	require.Equal(t, 1, cloudfrontReadGrants(t, testkit.MergeSite(t)))
	require.Equal(t, 2, cloudfrontReadGrants(t, testkit.RedirectSite(t)))
}

func cloudfrontReadGrants(t *testing.T, env *testkit.Env) int {
	t.Helper()

	policies := env.SiteTemplate.FindResources(jsii.String("AWS::S3::BucketPolicy"), nil)
	require.NotEmpty(t, *policies)

	grants := 0
	for _, resource := range *policies {
		props, ok := (*resource)["Properties"].(map[string]interface{})
		require.True(t, ok)
		doc, ok := props["PolicyDocument"].(map[string]interface{})
		require.True(t, ok)
		statements, ok := doc["Statement"].([]interface{})
		require.True(t, ok)

		for _, raw := range statements {
			stmt, ok := raw.(map[string]interface{})
			require.True(t, ok)
			principal, ok := stmt["Principal"].(map[string]interface{})
			if !ok || principal["Service"] != "cloudfront.amazonaws.com" {
				continue
			}
			condition, ok := stmt["Condition"].(map[string]interface{})
			require.True(t, ok, "cloudfront grant without a SourceArn condition")
			equals, ok := condition["StringEquals"].(map[string]interface{})
			require.True(t, ok)
			require.Contains(t, equals, "AWS:SourceArn")
			grants++
		}
	}
	return grants
}

func TestAliasRecordsPerHostname(t *testing.T) {
	env := testkit.RedirectSite(t)

	env.SiteTemplate.ResourceCountIs(jsii.String("AWS::Route53::RecordSet"), jsii.Number(4))

	for _, host := range []string{"docs.example.com.", "www.docs.example.com."} {
		for _, recordType := range []string{"A", "AAAA"} {
			env.SiteTemplate.HasResourceProperties(jsii.String("AWS::Route53::RecordSet"), map[string]interface{}{
				"Name": host,
				"Type": recordType,
				"AliasTarget": assertions.Match_ObjectLike(&map[string]interface{}{
					// CloudFront's fixed alias hosted zone.
					"HostedZoneId": "Z2FDTNDATAQYW2",
				}),
			})
		}
	}
}

func TestDeployPrincipals(t *testing.T) {
	env := testkit.RedirectSite(t)

	env.SiteTemplate.ResourceCountIs(jsii.String("AWS::IAM::User"), jsii.Number(2))
	env.SiteTemplate.ResourceCountIs(jsii.String("AWS::IAM::AccessKey"), jsii.Number(2))
	env.SiteTemplate.ResourceCountIs(jsii.String("AWS::SecretsManager::Secret"), jsii.Number(2))

	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::IAM::User"), map[string]interface{}{
		"UserName": "docs-publisher-test",
	})
	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::IAM::User"), map[string]interface{}{
		"UserName": "docs-operator-test",
	})
	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::SecretsManager::Secret"), map[string]interface{}{
		"Name": "docs/test/publisher",
	})
	env.SiteTemplate.HasResourceProperties(jsii.String("AWS::SecretsManager::Secret"), map[string]interface{}{
		"Name": "docs/test/operator",
	})
}

// The scope contract rendered into the template: no Allow statement in
// either principal policy may name a bare wildcard resource.
func TestPrincipalPoliciesCarryNoWildcardResources(t *testing.T) {
	env := testkit.RedirectSite(t)

	policies := env.SiteTemplate.FindResources(jsii.String("AWS::IAM::Policy"), nil)
	checked := 0
	for _, resource := range *policies {
		props, ok := (*resource)["Properties"].(map[string]interface{})
		require.True(t, ok)
		name, _ := props["PolicyName"].(string)
		if name != "docs-publisher-policy-test" && name != "docs-operator-policy-test" {
			continue
		}
		checked++

		doc, ok := props["PolicyDocument"].(map[string]interface{})
		require.True(t, ok)
		statements, ok := doc["Statement"].([]interface{})
		require.True(t, ok)
		for _, raw := range statements {
			stmt, ok := raw.(map[string]interface{})
			require.True(t, ok)
			if stmt["Effect"] != "Allow" {
				continue
			}
			for _, resource := range resourceList(stmt["Resource"]) {
				require.NotEqual(t, "*", resource, "policy %s", name)
			}
		}
	}
	require.Equal(t, 2, checked)
}

func resourceList(value interface{}) []interface{} {
	if list, ok := value.([]interface{}); ok {
		return list
	}
	if value == nil {
		return nil
	}
	return []interface{}{value}
}

func TestRuntimeParameters(t *testing.T) {
	merge := testkit.MergeSite(t)
	redirect := testkit.RedirectSite(t)

	require.Equal(t, "/docs/test", merge.ParameterPrefix)

	merge.SiteTemplate.ResourceCountIs(jsii.String("AWS::SSM::Parameter"), jsii.Number(4))
	redirect.SiteTemplate.ResourceCountIs(jsii.String("AWS::SSM::Parameter"), jsii.Number(5))

	merge.SiteTemplate.HasResourceProperties(jsii.String("AWS::SSM::Parameter"), map[string]interface{}{
		"Name":  "/docs/test/account",
		"Type":  "String",
		"Value": testkit.Account,
	})
	merge.SiteTemplate.HasResourceProperties(jsii.String("AWS::SSM::Parameter"), map[string]interface{}{
		"Name":  "/docs/test/bucket-name",
		"Value": merge.BucketName,
	})
	redirect.SiteTemplate.HasResourceProperties(jsii.String("AWS::SSM::Parameter"), map[string]interface{}{
		"Name": "/docs/test/distribution-id-alias",
	})
}

func TestSiteDeploymentPrunesAndInvalidates(t *testing.T) {
	env := testkit.MergeSite(t)

	env.SiteTemplate.ResourceCountIs(jsii.String("Custom::CDKBucketDeployment"), jsii.Number(1))
	env.SiteTemplate.HasResourceProperties(jsii.String("Custom::CDKBucketDeployment"), map[string]interface{}{
		"Prune":             true,
		"DistributionPaths": []interface{}{"/*"},
		"Exclude":           []interface{}{"*.map"},
	})
}

func TestSiteOutputs(t *testing.T) {
	merge := testkit.MergeSite(t)
	redirect := testkit.RedirectSite(t)

	for _, id := range []string{
		"BucketName",
		"PrimaryDistributionId",
		"SiteURLs",
		"PublisherCredentialsSecret",
		"OperatorCredentialsSecret",
		"ParameterPrefix",
	} {
		outputs := merge.SiteTemplate.FindOutputs(jsii.String(id), map[string]interface{}{})
		require.NotEmpty(t, *outputs, "output %s", id)
	}

	// Key material never appears in outputs, only the secret ARNs.
	merge.SiteTemplate.HasOutput(jsii.String("BucketName"), map[string]interface{}{
		"Value": merge.BucketName,
	})

	aliasOutputs := merge.SiteTemplate.FindOutputs(jsii.String("AliasDistributionId"), map[string]interface{}{})
	require.Empty(t, *aliasOutputs)

	aliasOutputs = redirect.SiteTemplate.FindOutputs(jsii.String("AliasDistributionId"), map[string]interface{}{})
	require.NotEmpty(t, *aliasOutputs)
}

func TestNewSiteStackRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	app := awscdk.NewApp(nil)

	cfg := testkit.MergeConfig("dist")
	cfg.Domain = ""

	_, err := infra.NewSiteStack(app, &infra.SiteStackProps{Config: cfg})
	require.Error(t, err)
	require.Contains(t, err.Error(), "domain")
}

func TestNewSiteStackRequiresCertificate(t *testing.T) {
	t.Parallel()

	app := awscdk.NewApp(nil)

	_, err := infra.NewSiteStack(app, &infra.SiteStackProps{Config: testkit.MergeConfig("dist")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "certificate")
}
