// Package sitetheory declares static website hosting infrastructure: a
// private asset bucket fronted by one or two CDN distributions, a
// DNS-validated certificate, alias records, and least-privilege deploy
// principals.
//
// The package itself is pure: SiteConfig describes a site, PlanTopology maps
// it to the distribution topology, and the infra package realizes the plan as
// CloudFormation stacks via the CDK. Applying and diffing the synthesized
// desired state is the job of the external reconciler; nothing here retries,
// orders, or reconciles resources on its own.
package sitetheory
