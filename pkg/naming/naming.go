package naming

import (
	"regexp"
	"strings"
)

var (
	nonAlnum  = regexp.MustCompile(`[^a-z0-9-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

const maxBucketNameLen = 63

func sanitizePart(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, "_", "-")
	value = strings.ReplaceAll(value, " ", "-")
	value = strings.ReplaceAll(value, ".", "-")
	value = nonAlnum.ReplaceAllString(value, "-")
	value = multiDash.ReplaceAllString(value, "-")
	value = strings.Trim(value, "-")
	return value
}

// NormalizeStage maps stage aliases to canonical values.
//
// Canonical stages are lowercased and safe for typical resource naming schemes.
func NormalizeStage(stage string) string {
	stage = strings.ToLower(strings.TrimSpace(stage))
	switch stage {
	case "prod", "production", "live":
		return "live"
	case "dev", "development":
		return "dev"
	case "stg", "stage", "staging":
		return "stage"
	case "test", "testing":
		return "test"
	case "local":
		return "local"
	default:
		return sanitizePart(stage)
	}
}

// StackName returns the deterministic CloudFormation stack name for a site:
// <app>-<purpose>-<stage>, e.g. "docs-site-live" or "docs-cert-live".
func StackName(appName, purpose, stage string) string {
	return ResourceName(appName, purpose, stage)
}

// ResourceName returns a deterministic resource name:
// - <app>-<stage>
// - <app>-<resource>-<stage> (when resource is provided)
func ResourceName(appName, resource, stage string) string {
	app := sanitizePart(appName)
	resource = sanitizePart(resource)
	stage = NormalizeStage(stage)

	parts := []string{app}
	if resource != "" {
		parts = append(parts, resource)
	}
	if stage != "" {
		parts = append(parts, stage)
	}
	return strings.Join(parts, "-")
}

// BucketName returns a globally unique, S3-valid bucket name:
// <app>-<resource>-<stage>-<account>-<region>, truncated to the 63
// character S3 limit without leaving a trailing dash.
//
// Account and region are part of the name because bucket names are global;
// the same app and stage deployed into two accounts must not collide.
func BucketName(appName, resource, stage, account, region string) string {
	parts := []string{
		sanitizePart(appName),
		sanitizePart(resource),
		NormalizeStage(stage),
		sanitizePart(account),
		sanitizePart(region),
	}
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	name := strings.Join(kept, "-")
	if len(name) > maxBucketNameLen {
		name = name[:maxBucketNameLen]
	}
	return strings.Trim(name, "-")
}

// SecretName returns the Secrets Manager name for a deploy principal's
// credentials: <app>/<stage>/<principal>.
func SecretName(appName, stage, principal string) string {
	return strings.Join([]string{
		sanitizePart(appName),
		NormalizeStage(stage),
		sanitizePart(principal),
	}, "/")
}

// ParameterPrefix returns the SSM parameter namespace for a site:
// /<app>/<stage>.
func ParameterPrefix(appName, stage string) string {
	return "/" + sanitizePart(appName) + "/" + NormalizeStage(stage)
}
