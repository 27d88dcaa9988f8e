package infra

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/jsii-runtime-go"

	sitetheory "github.com/theory-cloud/sitetheory"
	"github.com/theory-cloud/sitetheory/pkg/naming"
	"github.com/theory-cloud/sitetheory/policy"
)

// deployPrincipals carries the credentials secrets for the two CI
// principals. Key material never appears in outputs; downstream jobs read
// the secrets by ARN.
type deployPrincipals struct {
	publisherSecret awssecretsmanager.Secret
	operatorSecret  awssecretsmanager.Secret
}

type principalScope struct {
	bucketName       string
	distributionARNs []string
	stackARNs        []string
	regions          []string
	qualifier        string
}

// newDeployPrincipals declares the publisher (asset sync + invalidation) and
// operator (stack lifecycle via bootstrap roles) users. Both policy
// documents are re-checked against an independently assembled allow set; a
// builder drifting outside the stack's own resources fails synth here.
func newDeployPrincipals(stack awscdk.Stack, cfg sitetheory.SiteConfig, scope principalScope) (*deployPrincipals, error) {
	publisher := policy.PublisherDocument(scope.bucketName, scope.distributionARNs)

	operatorScope := policy.OperatorScope{
		Account:          cfg.Account,
		Qualifier:        scope.qualifier,
		Regions:          scope.regions,
		StackARNs:        scope.stackARNs,
		Bucket:           scope.bucketName,
		DistributionARNs: scope.distributionARNs,
	}
	operator := policy.OperatorDocument(operatorScope)

	allowed := append([]string{policy.BucketARN(scope.bucketName), policy.ObjectsARN(scope.bucketName)}, scope.distributionARNs...)
	if err := publisher.VerifyScoped(allowed); err != nil {
		return nil, fmt.Errorf("publisher policy: %w", err)
	}

	operatorAllowed := append(append([]string(nil), allowed...), operatorScope.BootstrapRoles()...)
	operatorAllowed = append(operatorAllowed, scope.stackARNs...)
	if err := operator.VerifyScoped(operatorAllowed); err != nil {
		return nil, fmt.Errorf("operator policy: %w", err)
	}

	publisherSecret, err := newPrincipal(stack, cfg, "publisher", publisher)
	if err != nil {
		return nil, err
	}
	operatorSecret, err := newPrincipal(stack, cfg, "operator", operator)
	if err != nil {
		return nil, err
	}

	return &deployPrincipals{
		publisherSecret: publisherSecret,
		operatorSecret:  operatorSecret,
	}, nil
}

func newPrincipal(stack awscdk.Stack, cfg sitetheory.SiteConfig, role string, doc policy.Document) (awssecretsmanager.Secret, error) {
	docMap, err := doc.Map()
	if err != nil {
		return nil, fmt.Errorf("%s policy document: %w", role, err)
	}

	title := strings.ToUpper(role[:1]) + role[1:]

	user := awsiam.NewUser(stack, jsii.String(title+"User"), &awsiam.UserProps{
		UserName: jsii.String(naming.ResourceName(cfg.App, role, cfg.Stage)),
	})

	awsiam.NewPolicy(stack, jsii.String(title+"Policy"), &awsiam.PolicyProps{
		PolicyName: jsii.String(naming.ResourceName(cfg.App, role+"-policy", cfg.Stage)),
		Document:   awsiam.PolicyDocument_FromJson(docMap),
		Users:      &[]awsiam.IUser{user},
	})

	key := awsiam.NewAccessKey(stack, jsii.String(title+"AccessKey"), &awsiam.AccessKeyProps{
		User: user,
	})

	secret := awssecretsmanager.NewSecret(stack, jsii.String(title+"Credentials"), &awssecretsmanager.SecretProps{
		SecretName:  jsii.String(naming.SecretName(cfg.App, cfg.Stage, role)),
		Description: jsii.String(fmt.Sprintf("Access key for the %s %s principal", cfg.App, role)),
		SecretObjectValue: &map[string]awscdk.SecretValue{
			"access_key_id":     awscdk.SecretValue_UnsafePlainText(key.AccessKeyId()),
			"secret_access_key": key.SecretAccessKey(),
		},
		RemovalPolicy: removalPolicyFor(cfg),
	})

	return secret, nil
}
