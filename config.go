package sitetheory

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// RedirectPolicy selects how an optional alias hostname is served.
type RedirectPolicy string

const (
	// RedirectPolicyMerge serves primary and alias hostnames from one
	// distribution with shared cached content.
	RedirectPolicyMerge RedirectPolicy = "merge"

	// RedirectPolicyAliasToPrimary serves the alias hostname from a second
	// distribution whose only behavior is a 301 redirect to the primary.
	RedirectPolicyAliasToPrimary RedirectPolicy = "redirect-alias-to-primary"
)

// ParseRedirectPolicy maps user input to a canonical RedirectPolicy.
func ParseRedirectPolicy(value string) (RedirectPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(RedirectPolicyMerge):
		return RedirectPolicyMerge, nil
	case string(RedirectPolicyAliasToPrimary), "redirect":
		return RedirectPolicyAliasToPrimary, nil
	default:
		return "", fmt.Errorf("unsupported redirect policy: %s", value)
	}
}

// SiteConfig describes one static site deployment.
//
// Account and region are explicit fields rather than ambient process state so
// the mapping from configuration to desired state stays deterministic; cmd
// entrypoints may fill them from the environment before validation.
type SiteConfig struct {
	App   string `yaml:"app"`
	Stage string `yaml:"stage"`

	Account string `yaml:"account"`
	Region  string `yaml:"region"`

	Domain         string         `yaml:"domain"`
	AliasDomain    string         `yaml:"alias_domain"`
	RedirectPolicy RedirectPolicy `yaml:"redirect_policy"`

	HostedZoneID string `yaml:"hosted_zone_id"`
	ZoneName     string `yaml:"zone_name"`

	AssetDir        string   `yaml:"asset_dir"`
	IndexDocument   string   `yaml:"index_document"`
	ErrorDocument   string   `yaml:"error_document"`
	SpaMode         bool     `yaml:"spa_mode"`
	ExcludePatterns []string `yaml:"exclude_patterns"`

	PriceClass  string `yaml:"price_class"`
	DisableIPv6 bool   `yaml:"disable_ipv6"`
	AccessLogs  bool   `yaml:"access_logs"`
	Retain      bool   `yaml:"retain"`
}

// DefaultSiteConfig returns the defaults applied before user configuration.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		Stage:           "dev",
		RedirectPolicy:  RedirectPolicyMerge,
		AssetDir:        "dist",
		IndexDocument:   "index.html",
		ErrorDocument:   "404.html",
		ExcludePatterns: []string{"*.map"},
		PriceClass:      "100",
	}
}

// ParseSiteConfigYAML parses YAML bytes into a normalized SiteConfig.
//
// Parsing applies defaults and canonicalizes hostnames; it does not validate.
func ParseSiteConfigYAML(b []byte) (SiteConfig, error) {
	cfg := DefaultSiteConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("parse site config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// LoadSiteConfig reads and parses a YAML site configuration file.
func LoadSiteConfig(path string) (SiteConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("read site config: %w", err)
	}
	return ParseSiteConfigYAML(b)
}

func (c *SiteConfig) normalize() {
	c.App = strings.TrimSpace(c.App)
	c.Stage = strings.TrimSpace(c.Stage)
	c.Account = strings.TrimSpace(c.Account)
	c.Region = strings.TrimSpace(c.Region)

	c.Domain = canonicalHostname(c.Domain)
	c.AliasDomain = canonicalHostname(c.AliasDomain)
	c.ZoneName = canonicalHostname(c.ZoneName)
	c.HostedZoneID = strings.TrimSpace(c.HostedZoneID)

	c.AssetDir = strings.TrimSpace(c.AssetDir)
	c.IndexDocument = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(c.IndexDocument), "/"))
	c.ErrorDocument = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(c.ErrorDocument), "/"))

	if c.RedirectPolicy != "" {
		if policy, err := ParseRedirectPolicy(string(c.RedirectPolicy)); err == nil {
			c.RedirectPolicy = policy
		}
	}

	patterns := c.ExcludePatterns[:0]
	for _, p := range c.ExcludePatterns {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	c.ExcludePatterns = patterns
}

var hostnameRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)+$`)

func canonicalHostname(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".")
}

func isHostname(name string) bool {
	return hostnameRe.MatchString(name)
}

// hostInZone reports whether host is the zone apex or a subdomain of zone.
func hostInZone(host, zone string) bool {
	if host == zone {
		return true
	}
	return strings.HasSuffix(host, "."+zone)
}

var accountRe = regexp.MustCompile(`^\d{12}$`)

// Validate ensures the configuration can produce a deployable plan.
func (c *SiteConfig) Validate() error {
	if c.App == "" {
		return fmt.Errorf("app name is required")
	}
	if c.Stage == "" {
		return fmt.Errorf("stage is required")
	}

	if c.Account == "" {
		return fmt.Errorf("account is required")
	}
	if !accountRe.MatchString(c.Account) {
		return fmt.Errorf("account must be a 12-digit account id")
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}

	if c.Domain == "" {
		return fmt.Errorf("domain is required")
	}
	if !isHostname(c.Domain) {
		return fmt.Errorf("domain %q is not a valid hostname", c.Domain)
	}
	if c.AliasDomain != "" {
		if !isHostname(c.AliasDomain) {
			return fmt.Errorf("alias domain %q is not a valid hostname", c.AliasDomain)
		}
		if c.AliasDomain == c.Domain {
			return fmt.Errorf("alias domain must differ from domain")
		}
	}

	if _, err := ParseRedirectPolicy(string(c.RedirectPolicy)); err != nil {
		return err
	}
	if c.RedirectPolicy == RedirectPolicyAliasToPrimary && c.AliasDomain == "" {
		return fmt.Errorf("redirect policy %s requires an alias domain", RedirectPolicyAliasToPrimary)
	}

	if c.HostedZoneID == "" {
		return fmt.Errorf("hosted zone id is required")
	}
	if c.ZoneName == "" {
		return fmt.Errorf("zone name is required")
	}
	if !isHostname(c.ZoneName) {
		return fmt.Errorf("zone name %q is not a valid hostname", c.ZoneName)
	}

	// Certificate validation records are written into this zone. A hostname
	// outside the zone would leave issuance pending forever, so reject it
	// before it reaches the reconciler.
	if !hostInZone(c.Domain, c.ZoneName) {
		return fmt.Errorf("domain %s is not inside hosted zone %s", c.Domain, c.ZoneName)
	}
	if c.AliasDomain != "" && !hostInZone(c.AliasDomain, c.ZoneName) {
		return fmt.Errorf("alias domain %s is not inside hosted zone %s", c.AliasDomain, c.ZoneName)
	}

	if c.AssetDir == "" {
		return fmt.Errorf("asset dir is required")
	}
	if c.IndexDocument == "" {
		return fmt.Errorf("index document is required")
	}

	switch c.PriceClass {
	case "100", "200", "all":
	default:
		return fmt.Errorf("price class must be 100, 200, or all")
	}

	return nil
}
