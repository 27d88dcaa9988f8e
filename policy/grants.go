package policy

// PublisherDocument is the narrow CI principal: it can sync objects into the
// site bucket and invalidate the stack's distributions, nothing else.
func PublisherDocument(bucket string, distributionARNs []string) Document {
	return NewDocument(
		Statement{
			Sid:    "SiteBucketList",
			Effect: EffectAllow,
			Action: []string{
				"s3:ListBucket",
				"s3:GetBucketLocation",
			},
			Resource: []string{BucketARN(bucket)},
		},
		Statement{
			Sid:    "SiteAssetSync",
			Effect: EffectAllow,
			Action: []string{
				"s3:GetObject",
				"s3:PutObject",
				"s3:DeleteObject",
			},
			Resource: []string{ObjectsARN(bucket)},
		},
		Statement{
			Sid:    "SiteCacheInvalidation",
			Effect: EffectAllow,
			Action: []string{
				"cloudfront:CreateInvalidation",
				"cloudfront:GetInvalidation",
				"cloudfront:ListInvalidations",
			},
			Resource: append([]string(nil), distributionARNs...),
		},
	)
}

// OperatorScope enumerates everything the broad CI principal may drive: the
// stacks it deploys, the bootstrap environments it assumes roles in, and the
// site resources it inherits from the publisher. The certificate stack lives
// in a different region than the site stack, so both Regions and StackARNs
// usually span two environments.
type OperatorScope struct {
	Account          string
	Qualifier        string
	Regions          []string
	StackARNs        []string
	Bucket           string
	DistributionARNs []string
}

// BootstrapRoles returns the deduplicated bootstrap role ARNs across the
// scope's regions.
func (s OperatorScope) BootstrapRoles() []string {
	var out []string
	seen := map[string]bool{}
	for _, region := range s.Regions {
		for _, arn := range BootstrapRoleARNs(s.Account, region, s.Qualifier) {
			if !seen[arn] {
				seen[arn] = true
				out = append(out, arn)
			}
		}
	}
	return out
}

// OperatorDocument is the broad CI principal: everything the publisher may
// do, plus driving stack changes through the CDK bootstrap roles. Breadth
// comes from the assumable roles, not from wildcard resources.
func OperatorDocument(scope OperatorScope) Document {
	doc := PublisherDocument(scope.Bucket, scope.DistributionARNs)
	doc.Statement = append(doc.Statement,
		Statement{
			Sid:      "BootstrapRoleAssumption",
			Effect:   EffectAllow,
			Action:   []string{"sts:AssumeRole"},
			Resource: scope.BootstrapRoles(),
		},
		Statement{
			Sid:    "StackInspection",
			Effect: EffectAllow,
			Action: []string{
				"cloudformation:DescribeStacks",
				"cloudformation:DescribeStackEvents",
				"cloudformation:GetTemplate",
				"cloudformation:ListChangeSets",
			},
			Resource: append([]string(nil), scope.StackARNs...),
		},
	)
	return doc
}

// DistributionReadStatement is the origin-access grant one distribution
// receives on the site bucket: the CloudFront service principal may read
// objects only when acting as that exact distribution. Two distributions on
// the same bucket each need their own statement; neither implies the other.
func DistributionReadStatement(bucket, distributionARN string) Statement {
	return Statement{
		Sid:       "AllowCloudFrontServicePrincipal",
		Effect:    EffectAllow,
		Principal: map[string]string{"Service": "cloudfront.amazonaws.com"},
		Action:    []string{"s3:GetObject"},
		Resource:  []string{ObjectsARN(bucket)},
		Condition: map[string]map[string]any{
			"StringEquals": {"AWS:SourceArn": distributionARN},
		},
	}
}

// TLSEnforcementStatement is the deny half of the bucket policy: every
// principal, every S3 action, denied when the transport is not TLS. Deny
// statements are the one place wildcards belong.
func TLSEnforcementStatement(bucket string) Statement {
	return Statement{
		Sid:       "DenyInsecureTransport",
		Effect:    EffectDeny,
		Principal: map[string]string{"AWS": "*"},
		Action:    []string{"s3:*"},
		Resource:  []string{BucketARN(bucket), ObjectsARN(bucket)},
		Condition: map[string]map[string]any{
			"Bool": {"aws:SecureTransport": "false"},
		},
	}
}
