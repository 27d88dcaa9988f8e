package policy

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestDocumentJSONShape(t *testing.T) {
	t.Parallel()

	doc := NewDocument(Statement{
		Sid:      "One",
		Effect:   EffectAllow,
		Action:   []string{"s3:GetObject"},
		Resource: []string{"arn:aws:s3:::b/*"},
	})

	b, err := doc.JSON()
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(b, &parsed))
	require.Equal(t, "2012-10-17", parsed["Version"])

	statements, ok := parsed["Statement"].([]any)
	require.True(t, ok)
	require.Len(t, statements, 1)

	first, ok := statements[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Allow", first["Effect"])
	require.NotContains(t, first, "Principal", "empty principal must be omitted")
	require.NotContains(t, first, "Condition", "empty condition must be omitted")
}

func TestStatementAcceptsSingularForms(t *testing.T) {
	t.Parallel()

	raw := `{"Version":"2012-10-17","Statement":[{"Effect":"Deny","Action":"s3:*","Resource":"arn:aws:s3:::b"}]}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Equal(t, StringList{"s3:*"}, doc.Statement[0].Action)
	require.Equal(t, StringList{"arn:aws:s3:::b"}, doc.Statement[0].Resource)

	// Round trips re-emit the list form.
	b, err := doc.JSON()
	require.NoError(t, err)
	require.Contains(t, string(b), `"Action":["s3:*"]`)
}

func TestDocumentMap(t *testing.T) {
	t.Parallel()

	doc := PublisherDocument("docs-assets-live", []string{
		DistributionARN("123456789012", "E2EXAMPLE123"),
	})

	m, err := doc.Map()
	require.NoError(t, err)
	require.Equal(t, "2012-10-17", m["Version"])
	require.IsType(t, []any{}, m["Statement"])
}

func TestDocumentResources(t *testing.T) {
	t.Parallel()

	doc := NewDocument(
		Statement{Effect: EffectAllow, Action: []string{"a"}, Resource: []string{"x", "y"}},
		Statement{Effect: EffectAllow, Action: []string{"b"}, Resource: []string{"y", "z"}},
		Statement{Effect: EffectDeny, Action: []string{"c"}, Resource: []string{"denied"}},
	)

	require.Equal(t, []string{"x", "y", "z"}, doc.Resources())
}

func TestARNBuilders(t *testing.T) {
	t.Parallel()

	require.Equal(t, "arn:aws:s3:::b", BucketARN("b"))
	require.Equal(t, "arn:aws:s3:::b/*", ObjectsARN("b"))
	require.Equal(t,
		"arn:aws:cloudfront::123456789012:distribution/E2EXAMPLE123",
		DistributionARN("123456789012", "E2EXAMPLE123"))
	require.Equal(t,
		"arn:aws:cloudformation:eu-west-1:123456789012:stack/docs-site-live/*",
		StackARN("eu-west-1", "123456789012", "docs-site-live"))
	require.Equal(t,
		"arn:aws:ssm:eu-west-1:123456789012:parameter/docs/live/bucket",
		ParameterARN("eu-west-1", "123456789012", "/docs/live/bucket"))
}

func TestBootstrapRoleARNs(t *testing.T) {
	t.Parallel()

	arns := BootstrapRoleARNs("123456789012", "eu-west-1", "")
	require.Len(t, arns, 5)
	require.Contains(t, arns,
		"arn:aws:iam::123456789012:role/cdk-hnb659fds-deploy-role-123456789012-eu-west-1")
	for _, arn := range arns {
		require.NotContains(t, arn, "*")
	}
}
