package sitetheory

// DistributionRole identifies a distribution's job within the topology.
type DistributionRole string

const (
	RolePrimary DistributionRole = "primary"
	RoleAlias   DistributionRole = "alias"
)

// DistributionSpec is the desired shape of one CDN distribution.
type DistributionSpec struct {
	Role      DistributionRole
	Hostnames []string

	// CachingDisabled is set on redirect-only distributions: a cached
	// redirect would outlive topology changes.
	CachingDisabled bool

	// RedirectTo names the hostname an alias distribution redirects to.
	// Empty for content-serving distributions.
	RedirectTo string
}

// Redirects reports whether the distribution serves redirects instead of content.
func (d DistributionSpec) Redirects() bool {
	return d.RedirectTo != ""
}

// TopologyPlan is the pure output of the topology selector: which
// distributions exist, which hostnames they carry, and what certificate
// covers them. The same SiteConfig always yields the same plan.
type TopologyPlan struct {
	CertificateDomain string
	CertificateSANs   []string
	Distributions     []DistributionSpec
}

// PlanTopology maps a site configuration to its distribution topology.
//
// With RedirectPolicyMerge (or no alias domain at all) a single distribution
// carries every hostname. With RedirectPolicyAliasToPrimary the alias
// hostname gets its own distribution whose only behavior is a 301 to the
// primary; the shared certificate still lists both hostnames because both
// distributions terminate TLS for their respective hosts.
func PlanTopology(cfg SiteConfig) TopologyPlan {
	plan := TopologyPlan{
		CertificateDomain: cfg.Domain,
	}
	if cfg.AliasDomain != "" {
		plan.CertificateSANs = []string{cfg.AliasDomain}
	}

	if cfg.AliasDomain == "" || cfg.RedirectPolicy == RedirectPolicyMerge {
		hostnames := []string{cfg.Domain}
		if cfg.AliasDomain != "" {
			hostnames = append(hostnames, cfg.AliasDomain)
		}
		plan.Distributions = []DistributionSpec{{
			Role:      RolePrimary,
			Hostnames: hostnames,
		}}
		return plan
	}

	plan.Distributions = []DistributionSpec{
		{
			Role:      RolePrimary,
			Hostnames: []string{cfg.Domain},
		},
		{
			Role:            RoleAlias,
			Hostnames:       []string{cfg.AliasDomain},
			CachingDisabled: true,
			RedirectTo:      cfg.Domain,
		},
	}
	return plan
}

// Primary returns the content-serving distribution spec.
func (p TopologyPlan) Primary() DistributionSpec {
	for _, d := range p.Distributions {
		if d.Role == RolePrimary {
			return d
		}
	}
	return DistributionSpec{}
}

// Alias returns the redirect distribution spec and whether one exists.
func (p TopologyPlan) Alias() (DistributionSpec, bool) {
	for _, d := range p.Distributions {
		if d.Role == RoleAlias {
			return d, true
		}
	}
	return DistributionSpec{}, false
}

// Hostnames returns every hostname served by the plan, primary first.
func (p TopologyPlan) Hostnames() []string {
	var out []string
	for _, d := range p.Distributions {
		out = append(out, d.Hostnames...)
	}
	return out
}

// URLs returns the public https URLs served by the plan, primary first.
func (p TopologyPlan) URLs() []string {
	hostnames := p.Hostnames()
	out := make([]string, 0, len(hostnames))
	for _, h := range hostnames {
		out = append(out, "https://"+h)
	}
	return out
}
