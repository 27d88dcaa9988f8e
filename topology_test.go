package sitetheory

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPlanTopologyMerge(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.RedirectPolicy = RedirectPolicyMerge

	plan := PlanTopology(cfg)

	require.Equal(t, "example.com", plan.CertificateDomain)
	require.Equal(t, []string{"www.example.com"}, plan.CertificateSANs)
	require.Len(t, plan.Distributions, 1)

	primary := plan.Primary()
	require.Equal(t, RolePrimary, primary.Role)
	require.Equal(t, []string{"example.com", "www.example.com"}, primary.Hostnames)
	require.False(t, primary.CachingDisabled)
	require.False(t, primary.Redirects())

	_, hasAlias := plan.Alias()
	require.False(t, hasAlias)

	require.Equal(t, []string{"https://example.com", "https://www.example.com"}, plan.URLs())
}

func TestPlanTopologyRedirectAliasToPrimary(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.RedirectPolicy = RedirectPolicyAliasToPrimary

	plan := PlanTopology(cfg)

	require.Len(t, plan.Distributions, 2)

	primary := plan.Primary()
	require.Equal(t, []string{"example.com"}, primary.Hostnames)
	require.False(t, primary.CachingDisabled)

	alias, ok := plan.Alias()
	require.True(t, ok)
	require.Equal(t, []string{"www.example.com"}, alias.Hostnames)
	require.True(t, alias.CachingDisabled, "redirect responses must not be cached")
	require.Equal(t, "example.com", alias.RedirectTo)
	require.True(t, alias.Redirects())

	// Both distributions share one certificate covering both hostnames.
	require.Equal(t, "example.com", plan.CertificateDomain)
	require.Equal(t, []string{"www.example.com"}, plan.CertificateSANs)
}

func TestPlanTopologyWithoutAlias(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.AliasDomain = ""
	cfg.RedirectPolicy = RedirectPolicyMerge

	plan := PlanTopology(cfg)

	require.Empty(t, plan.CertificateSANs)
	require.Len(t, plan.Distributions, 1)
	require.Equal(t, []string{"example.com"}, plan.Primary().Hostnames)
}

// For any configuration, every configured hostname is served by exactly one
// distribution, the certificate covers every served hostname, and planning
// the same configuration twice yields identical plans.
func TestPlanTopologyProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		label := rapid.StringMatching(`[a-z][a-z0-9]{0,10}`)
		domain := label.Draw(t, "apex") + "." + rapid.SampledFrom([]string{"com", "org", "dev"}).Draw(t, "tld")

		cfg := validConfig()
		cfg.Domain = domain
		cfg.ZoneName = domain
		withAlias := rapid.Bool().Draw(t, "withAlias")
		if withAlias {
			cfg.AliasDomain = label.Draw(t, "sub") + "." + domain
		} else {
			cfg.AliasDomain = ""
		}
		if withAlias && rapid.Bool().Draw(t, "redirect") {
			cfg.RedirectPolicy = RedirectPolicyAliasToPrimary
		} else {
			cfg.RedirectPolicy = RedirectPolicyMerge
		}

		plan := PlanTopology(cfg)

		seen := map[string]int{}
		for _, dist := range plan.Distributions {
			if len(dist.Hostnames) == 0 {
				t.Fatalf("distribution %s has no hostnames", dist.Role)
			}
			for _, h := range dist.Hostnames {
				seen[h]++
			}
		}
		if seen[cfg.Domain] != 1 {
			t.Fatalf("domain served by %d distributions", seen[cfg.Domain])
		}
		if cfg.AliasDomain != "" && seen[cfg.AliasDomain] != 1 {
			t.Fatalf("alias served by %d distributions", seen[cfg.AliasDomain])
		}

		covered := map[string]bool{plan.CertificateDomain: true}
		for _, san := range plan.CertificateSANs {
			covered[san] = true
		}
		for host := range seen {
			if !covered[host] {
				t.Fatalf("hostname %s not covered by certificate", host)
			}
		}

		again := PlanTopology(cfg)
		if len(again.Distributions) != len(plan.Distributions) {
			t.Fatalf("plan is not deterministic")
		}
		for i := range again.Distributions {
			a, b := plan.Distributions[i], again.Distributions[i]
			if a.Role != b.Role || a.CachingDisabled != b.CachingDisabled || a.RedirectTo != b.RedirectTo {
				t.Fatalf("plan distribution %d differs between runs", i)
			}
		}
	})
}
