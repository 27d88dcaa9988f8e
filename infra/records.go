package infra

import (
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53targets"
	"github.com/aws/jsii-runtime-go"

	sitetheory "github.com/theory-cloud/sitetheory"
)

// newAliasRecords binds every hostname in the plan to its owning
// distribution. Alias records follow the distribution's stable endpoint, so
// a replaced distribution replaces the records with it.
func newAliasRecords(stack awscdk.Stack, cfg sitetheory.SiteConfig, plan sitetheory.TopologyPlan, zone awsroute53.IHostedZone, dists *distributionSet) {
	for _, spec := range plan.Distributions {
		dist := dists.byRole(spec.Role)
		target := awsroute53.RecordTarget_FromAlias(awsroute53targets.NewCloudFrontTarget(dist))

		for _, host := range spec.Hostnames {
			awsroute53.NewARecord(stack, jsii.String(recordID("A", host)), &awsroute53.ARecordProps{
				Zone:       zone,
				RecordName: jsii.String(host),
				Target:     target,
			})
			if !cfg.DisableIPv6 {
				awsroute53.NewAaaaRecord(stack, jsii.String(recordID("Aaaa", host)), &awsroute53.AaaaRecordProps{
					Zone:       zone,
					RecordName: jsii.String(host),
					Target:     target,
				})
			}
		}
	}
}

func recordID(kind, host string) string {
	return kind + "Record-" + strings.ReplaceAll(host, ".", "-")
}
