package infra

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/jsii-runtime-go"

	sitetheory "github.com/theory-cloud/sitetheory"
	"github.com/theory-cloud/sitetheory/pkg/naming"
	"github.com/theory-cloud/sitetheory/policy"
	"github.com/theory-cloud/sitetheory/viewerfn"
)

// distributionSet holds the realized distributions keyed by role. Alias is
// nil under the merge policy.
type distributionSet struct {
	primary awscloudfront.Distribution
	alias   awscloudfront.Distribution
}

func (d *distributionSet) all() []awscloudfront.Distribution {
	out := []awscloudfront.Distribution{d.primary}
	if d.alias != nil {
		out = append(out, d.alias)
	}
	return out
}

func (d *distributionSet) byRole(role sitetheory.DistributionRole) awscloudfront.Distribution {
	if role == sitetheory.RoleAlias {
		return d.alias
	}
	return d.primary
}

// arns returns the distribution ARNs, primary first. Distribution ids are
// unresolved tokens at synth time; CloudFormation substitutes them, and the
// policy scope check compares the same token strings on both sides.
func (d *distributionSet) arns(account string) []string {
	var out []string
	for _, dist := range d.all() {
		out = append(out, policy.DistributionARN(account, *dist.DistributionId()))
	}
	return out
}

// newDistributions realizes every DistributionSpec in the plan.
//
// Each distribution gets its own origin-access-control binding on the shared
// bucket, so the bucket policy ends up with one read statement per
// distribution identity; granting one never authorizes the other.
func newDistributions(stack awscdk.Stack, cfg sitetheory.SiteConfig, plan sitetheory.TopologyPlan, certificate awscertificatemanager.ICertificate, bucket awss3.IBucket, logBucket awss3.IBucket) (*distributionSet, error) {
	set := &distributionSet{}

	for _, spec := range plan.Distributions {
		dist, err := newDistribution(stack, cfg, spec, certificate, bucket, logBucket)
		if err != nil {
			return nil, err
		}
		switch spec.Role {
		case sitetheory.RoleAlias:
			set.alias = dist
		default:
			set.primary = dist
		}
	}

	if set.primary == nil {
		return nil, fmt.Errorf("plan has no primary distribution")
	}
	return set, nil
}

func newDistribution(stack awscdk.Stack, cfg sitetheory.SiteConfig, spec sitetheory.DistributionSpec, certificate awscertificatemanager.ICertificate, bucket awss3.IBucket, logBucket awss3.IBucket) (awscloudfront.Distribution, error) {
	behavior := &awscloudfront.BehaviorOptions{
		// One origin binding per distribution: the call produces a fresh
		// origin-access-control whose bucket grant is conditioned on this
		// distribution's ARN.
		Origin:                awscloudfrontorigins.S3BucketOrigin_WithOriginAccessControl(bucket, nil),
		ViewerProtocolPolicy:  awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
		AllowedMethods:        awscloudfront.AllowedMethods_ALLOW_GET_HEAD(),
		CachedMethods:         awscloudfront.CachedMethods_CACHE_GET_HEAD(),
		Compress:              jsii.Bool(true),
		CachePolicy:           awscloudfront.CachePolicy_CACHING_OPTIMIZED(),
		ResponseHeadersPolicy: awscloudfront.ResponseHeadersPolicy_SECURITY_HEADERS(),
	}

	props := &awscloudfront.DistributionProps{
		DefaultBehavior:        behavior,
		DomainNames:            stringSlice(spec.Hostnames),
		Certificate:            certificate,
		MinimumProtocolVersion: awscloudfront.SecurityPolicyProtocol_TLS_V1_2_2021,
		HttpVersion:            awscloudfront.HttpVersion_HTTP2_AND_3,
		EnableIpv6:             jsii.Bool(!cfg.DisableIPv6),
		PriceClass:             priceClassFor(cfg.PriceClass),
		Comment:                jsii.String(fmt.Sprintf("%s %s", naming.StackName(cfg.App, "site", cfg.Stage), spec.Role)),
	}

	if spec.CachingDisabled {
		behavior.CachePolicy = awscloudfront.CachePolicy_CACHING_DISABLED()
		behavior.Compress = jsii.Bool(false)
	}

	id := "PrimaryDistribution"
	if spec.Redirects() {
		id = "AliasDistribution"

		fn, err := newAliasRedirectFunction(stack, cfg, spec)
		if err != nil {
			return nil, err
		}
		behavior.FunctionAssociations = &[]*awscloudfront.FunctionAssociation{{
			EventType: awscloudfront.FunctionEventType_VIEWER_REQUEST,
			Function:  fn,
		}}
	} else {
		props.DefaultRootObject = jsii.String(cfg.IndexDocument)
		props.ErrorResponses = errorResponsesFor(cfg)
	}

	if logBucket != nil {
		props.EnableLogging = jsii.Bool(true)
		props.LogBucket = logBucket
		props.LogFilePrefix = jsii.String(string(spec.Role) + "/")
	}

	return awscloudfront.NewDistribution(stack, jsii.String(id), props), nil
}

// newAliasRedirectFunction renders the viewer-request rule for a
// redirect-only distribution as an inline CloudFront Function.
func newAliasRedirectFunction(stack awscdk.Stack, cfg sitetheory.SiteConfig, spec sitetheory.DistributionSpec) (awscloudfront.Function, error) {
	rule := viewerfn.Rule{
		AliasHost:   spec.Hostnames[0],
		PrimaryHost: spec.RedirectTo,
	}
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("alias redirect rule: %w", err)
	}

	return awscloudfront.NewFunction(stack, jsii.String("AliasRedirectFunction"), &awscloudfront.FunctionProps{
		FunctionName: jsii.String(naming.ResourceName(cfg.App, "alias-redirect", cfg.Stage)),
		Comment:      jsii.String(fmt.Sprintf("301 %s to %s", rule.AliasHost, rule.PrimaryHost)),
		Code:         awscloudfront.FunctionCode_FromInline(jsii.String(rule.Code())),
		Runtime:      awscloudfront.FunctionRuntime_JS_2_0(),
	}), nil
}

func priceClassFor(priceClass string) awscloudfront.PriceClass {
	switch priceClass {
	case "200":
		return awscloudfront.PriceClass_PRICE_CLASS_200
	case "all":
		return awscloudfront.PriceClass_PRICE_CLASS_ALL
	default:
		return awscloudfront.PriceClass_PRICE_CLASS_100
	}
}

// errorResponsesFor maps origin errors on the content distribution. In SPA
// mode both 403 and 404 rewrite to the index document with a 200, since
// client-side routes are unknown to S3; otherwise 404 serves the error
// document with its status intact.
func errorResponsesFor(cfg sitetheory.SiteConfig) *[]*awscloudfront.ErrorResponse {
	ttl := awscdk.Duration_Minutes(jsii.Number(5))

	if cfg.SpaMode {
		return &[]*awscloudfront.ErrorResponse{
			{
				HttpStatus:         jsii.Number(403),
				ResponseHttpStatus: jsii.Number(200),
				ResponsePagePath:   jsii.String("/" + cfg.IndexDocument),
				Ttl:                ttl,
			},
			{
				HttpStatus:         jsii.Number(404),
				ResponseHttpStatus: jsii.Number(200),
				ResponsePagePath:   jsii.String("/" + cfg.IndexDocument),
				Ttl:                ttl,
			},
		}
	}

	if cfg.ErrorDocument == "" {
		return nil
	}
	return &[]*awscloudfront.ErrorResponse{{
		HttpStatus:         jsii.Number(404),
		ResponseHttpStatus: jsii.Number(404),
		ResponsePagePath:   jsii.String("/" + cfg.ErrorDocument),
		Ttl:                ttl,
	}}
}
