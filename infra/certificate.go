package infra

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	sitetheory "github.com/theory-cloud/sitetheory"
	"github.com/theory-cloud/sitetheory/pkg/naming"
)

// CertificateStackProps configures the certificate stack.
type CertificateStackProps struct {
	Config sitetheory.SiteConfig
}

// CertificateStack issues the one TLS certificate shared by every
// distribution in the site's plan. It always lives in CertificateRegion;
// cross-region references carry the certificate into the site stack.
type CertificateStack struct {
	awscdk.Stack

	Certificate awscertificatemanager.ICertificate
}

// NewCertificateStack declares a DNS-validated certificate covering the
// plan's domain and subject alternative names. Validation records are
// written into the configured hosted zone; config validation has already
// rejected hostnames outside that zone, which would stall issuance forever.
func NewCertificateStack(scope constructs.Construct, props *CertificateStackProps) (*CertificateStack, error) {
	cfg := props.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("certificate stack config: %w", err)
	}

	plan := sitetheory.PlanTopology(cfg)

	stack := awscdk.NewStack(scope, jsii.String(naming.StackName(cfg.App, "cert", cfg.Stage)), &awscdk.StackProps{
		Env:                   stackEnv(cfg.Account, CertificateRegion),
		CrossRegionReferences: jsii.Bool(true),
		Description:           jsii.String(fmt.Sprintf("TLS certificate for %s", cfg.Domain)),
	})

	zone := siteZone(stack, cfg)

	var sans *[]*string
	if len(plan.CertificateSANs) > 0 {
		sans = stringSlice(plan.CertificateSANs)
	}

	certificate := awscertificatemanager.NewCertificate(stack, jsii.String("SiteCertificate"), &awscertificatemanager.CertificateProps{
		DomainName:              jsii.String(plan.CertificateDomain),
		SubjectAlternativeNames: sans,
		Validation:              awscertificatemanager.CertificateValidation_FromDns(zone),
	})

	return &CertificateStack{
		Stack:       stack,
		Certificate: certificate,
	}, nil
}
