package verify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	json "github.com/goccy/go-json"

	sitetheory "github.com/theory-cloud/sitetheory"
	"github.com/theory-cloud/sitetheory/policy"
)

// checkBucket verifies the bucket's public posture: every public-access
// dimension blocked at once, and default encryption present.
func (r *Runner) checkBucket(ctx context.Context, report *Report, bucket string) {
	pab, err := r.s3.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{
		Bucket: aws.String(bucket),
	})
	switch {
	case err != nil:
		report.failf("bucket-public-access-block", bucket, "read failed: %v", err)
	case !allBlocked(pab):
		report.fail("bucket-public-access-block", bucket, "not all four dimensions are blocked")
	default:
		report.pass("bucket-public-access-block", bucket)
	}

	enc, err := r.s3.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{
		Bucket: aws.String(bucket),
	})
	switch {
	case err != nil:
		report.failf("bucket-encryption", bucket, "read failed: %v", err)
	case !encryptionConfigured(enc):
		report.fail("bucket-encryption", bucket, "no default encryption rule")
	default:
		report.pass("bucket-encryption", bucket)
	}
}

func allBlocked(out *s3.GetPublicAccessBlockOutput) bool {
	c := out.PublicAccessBlockConfiguration
	if c == nil {
		return false
	}
	return aws.ToBool(c.BlockPublicAcls) &&
		aws.ToBool(c.BlockPublicPolicy) &&
		aws.ToBool(c.IgnorePublicAcls) &&
		aws.ToBool(c.RestrictPublicBuckets)
}

func encryptionConfigured(out *s3.GetBucketEncryptionOutput) bool {
	if out.ServerSideEncryptionConfiguration == nil {
		return false
	}
	for _, rule := range out.ServerSideEncryptionConfiguration.Rules {
		if rule.ApplyServerSideEncryptionByDefault != nil {
			return true
		}
	}
	return false
}

// checkBucketPolicy parses the live bucket policy and verifies two things:
// the TLS-enforcement deny is present, and object reads are granted to
// exactly the discovered distribution identities, one SourceArn condition
// each. The grant comparison is skipped when discovery came up short; the
// missing distribution is already a failed finding.
func (r *Runner) checkBucketPolicy(ctx context.Context, report *Report, bucket string, live map[sitetheory.DistributionRole]liveDistribution) {
	out, err := r.s3.GetBucketPolicy(ctx, &s3.GetBucketPolicyInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		report.failf("bucket-policy", bucket, "read failed: %v", err)
		return
	}

	var doc policy.Document
	if err := json.Unmarshal([]byte(aws.ToString(out.Policy)), &doc); err != nil {
		report.failf("bucket-policy", bucket, "parse failed: %v", err)
		return
	}

	if hasTLSDeny(doc) {
		report.pass("bucket-policy-tls", bucket)
	} else {
		report.fail("bucket-policy-tls", bucket, "no insecure-transport deny statement")
	}

	if len(live) != len(r.plan.Distributions) {
		return
	}

	wantARNs := map[string]bool{}
	for _, dist := range live {
		wantARNs[dist.arn] = true
	}

	grants := 0
	for _, stmt := range doc.Statement {
		if stmt.Effect != policy.EffectAllow || stmt.Principal["Service"] != "cloudfront.amazonaws.com" {
			continue
		}
		grants++
		arn, ok := sourceARN(stmt)
		if !ok {
			report.failf("bucket-policy-read-grants", bucket, "statement %s grants cloudfront without a SourceArn condition", stmt.Sid)
			return
		}
		if !wantARNs[arn] {
			report.failf("bucket-policy-read-grants", bucket, "grant for unknown distribution %s", arn)
			return
		}
	}
	if grants != len(wantARNs) {
		report.failf("bucket-policy-read-grants", bucket, "%d read grants for %d distributions", grants, len(wantARNs))
		return
	}
	report.pass("bucket-policy-read-grants", bucket)
}

func hasTLSDeny(doc policy.Document) bool {
	for _, stmt := range doc.Statement {
		if stmt.Effect != policy.EffectDeny {
			continue
		}
		condition, ok := stmt.Condition["Bool"]
		if !ok {
			continue
		}
		if condition["aws:SecureTransport"] == "false" {
			return true
		}
	}
	return false
}

func sourceARN(stmt policy.Statement) (string, bool) {
	equals, ok := stmt.Condition["StringEquals"]
	if !ok {
		return "", false
	}
	arn, ok := equals["AWS:SourceArn"].(string)
	return arn, ok && arn != ""
}
