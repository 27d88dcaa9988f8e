package policy

import "fmt"

// DefaultBootstrapQualifier is the CDK bootstrap stack qualifier baked into
// the bootstrap role names.
const DefaultBootstrapQualifier = "hnb659fds"

// BucketARN returns the ARN of the bucket itself.
func BucketARN(bucket string) string {
	return "arn:aws:s3:::" + bucket
}

// ObjectsARN returns the ARN covering every object in the bucket.
func ObjectsARN(bucket string) string {
	return "arn:aws:s3:::" + bucket + "/*"
}

// DistributionARN returns the ARN of one CloudFront distribution.
// Distributions are global, so the ARN carries no region.
func DistributionARN(account, distributionID string) string {
	return fmt.Sprintf("arn:aws:cloudfront::%s:distribution/%s", account, distributionID)
}

// StackARN returns the ARN pattern for one CloudFormation stack. The
// trailing segment is the stack's generated physical id, which cannot be
// enumerated ahead of creation; the name-scoped pattern is the tightest
// expressible grant.
func StackARN(region, account, stackName string) string {
	return fmt.Sprintf("arn:aws:cloudformation:%s:%s:stack/%s/*", region, account, stackName)
}

// SecretARN returns the ARN pattern for a Secrets Manager secret. Secrets
// Manager appends a random suffix to the name, hence the wildcard tail.
func SecretARN(region, account, name string) string {
	return fmt.Sprintf("arn:aws:secretsmanager:%s:%s:secret:%s-??????", region, account, name)
}

// ParameterARN returns the ARN of one SSM parameter.
func ParameterARN(region, account, name string) string {
	return fmt.Sprintf("arn:aws:ssm:%s:%s:parameter%s", region, account, name)
}

// BootstrapRoleARNs enumerates the five CDK bootstrap roles for an
// environment. The names are fixed by the bootstrap stack, so the broader CI
// principal can assume them without any wildcard grant.
func BootstrapRoleARNs(account, region, qualifier string) []string {
	if qualifier == "" {
		qualifier = DefaultBootstrapQualifier
	}
	roles := []string{
		"deploy-role",
		"file-publishing-role",
		"image-publishing-role",
		"lookup-role",
		"cfn-exec-role",
	}
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, fmt.Sprintf("arn:aws:iam::%s:role/cdk-%s-%s-%s-%s", account, qualifier, role, account, region))
	}
	return out
}
