package verify

import (
	"context"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront/types"

	sitetheory "github.com/theory-cloud/sitetheory"
)

// cachingDisabledPolicyID is the managed CachingDisabled cache policy. The
// alias distribution must reference it so redirects are never cached.
const cachingDisabledPolicyID = "4135ea2d-6df8-44a3-9df3-4b5a84be39ad"

// liveDistribution is a discovered distribution's identity.
type liveDistribution struct {
	id  string
	arn string
}

// checkDistributions locates each planned distribution by its first
// hostname and verifies its configuration. Discovery by alias doubles as
// the alias-binding check: an unclaimed hostname is a missing distribution.
func (r *Runner) checkDistributions(ctx context.Context, report *Report) map[sitetheory.DistributionRole]liveDistribution {
	live := map[sitetheory.DistributionRole]liveDistribution{}

	summaries, err := r.listDistributions(ctx)
	if err != nil {
		report.failf("distribution-discovery", "cloudfront", "list failed: %v", err)
		return live
	}

	for _, spec := range r.plan.Distributions {
		target := spec.Hostnames[0]

		summary, ok := findByAlias(summaries, target)
		if !ok {
			report.fail("distribution-present", target, "no distribution carries this alias")
			continue
		}
		report.pass("distribution-present", target)
		live[spec.Role] = liveDistribution{
			id:  aws.ToString(summary.Id),
			arn: aws.ToString(summary.ARN),
		}

		out, err := r.cdn.GetDistribution(ctx, &cloudfront.GetDistributionInput{Id: summary.Id})
		if err != nil || out.Distribution == nil {
			report.failf("distribution-config", target, "read failed: %v", err)
			continue
		}
		r.checkDistributionConfig(report, spec, out.Distribution)
	}

	return live
}

func (r *Runner) listDistributions(ctx context.Context) ([]types.DistributionSummary, error) {
	var out []types.DistributionSummary
	var marker *string
	for {
		page, err := r.cdn.ListDistributions(ctx, &cloudfront.ListDistributionsInput{Marker: marker})
		if err != nil {
			return nil, err
		}
		list := page.DistributionList
		if list == nil {
			return out, nil
		}
		out = append(out, list.Items...)
		if !aws.ToBool(list.IsTruncated) || list.NextMarker == nil {
			return out, nil
		}
		marker = list.NextMarker
	}
}

func findByAlias(summaries []types.DistributionSummary, host string) (types.DistributionSummary, bool) {
	for _, summary := range summaries {
		if summary.Aliases == nil {
			continue
		}
		for _, alias := range summary.Aliases.Items {
			if strings.EqualFold(alias, host) {
				return summary, true
			}
		}
	}
	return types.DistributionSummary{}, false
}

func (r *Runner) checkDistributionConfig(report *Report, spec sitetheory.DistributionSpec, dist *types.Distribution) {
	target := spec.Hostnames[0]

	if status := aws.ToString(dist.Status); status != "Deployed" {
		report.failf("distribution-deployed", target, "status %s", status)
	} else {
		report.pass("distribution-deployed", target)
	}

	cfg := dist.DistributionConfig
	if cfg == nil {
		report.fail("distribution-config", target, "no distribution config")
		return
	}

	if aws.ToBool(cfg.Enabled) {
		report.pass("distribution-enabled", target)
	} else {
		report.fail("distribution-enabled", target, "distribution is disabled")
	}

	if sameHostSet(aliasItems(cfg.Aliases), spec.Hostnames) {
		report.pass("distribution-aliases", target)
	} else {
		report.failf("distribution-aliases", target, "aliases %v, want %v", aliasItems(cfg.Aliases), spec.Hostnames)
	}

	behavior := cfg.DefaultCacheBehavior
	if behavior == nil {
		report.fail("distribution-behavior", target, "no default cache behavior")
		return
	}

	if spec.CachingDisabled {
		if aws.ToString(behavior.CachePolicyId) == cachingDisabledPolicyID {
			report.pass("alias-caching-disabled", target)
		} else {
			report.fail("alias-caching-disabled", target, "redirect responses are cacheable")
		}
	}

	if spec.Redirects() {
		if hasViewerFunction(behavior.FunctionAssociations) {
			report.pass("alias-function", target)
		} else {
			report.fail("alias-function", target, "no viewer-request function association")
		}
		return
	}

	if root := aws.ToString(cfg.DefaultRootObject); root != r.cfg.IndexDocument {
		report.failf("distribution-root-object", target, "root object %q, want %q", root, r.cfg.IndexDocument)
	} else {
		report.pass("distribution-root-object", target)
	}
}

func hasViewerFunction(associations *types.FunctionAssociations) bool {
	if associations == nil {
		return false
	}
	for _, item := range associations.Items {
		if item.EventType == types.EventTypeViewerRequest {
			return true
		}
	}
	return false
}

func aliasItems(aliases *types.Aliases) []string {
	if aliases == nil {
		return nil
	}
	return aliases.Items
}

func sameHostSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	a := normalizedHosts(got)
	b := normalizedHosts(want)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func normalizedHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, strings.ToLower(strings.TrimSuffix(h, ".")))
	}
	sort.Strings(out)
	return out
}
