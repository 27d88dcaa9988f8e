package naming

import (
	"strings"
	"testing"
)

func TestNormalizeStage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"prod", "live"},
		{"production", "live"},
		{"live", "live"},
		{"dev", "dev"},
		{"development", "dev"},
		{"stg", "stage"},
		{"staging", "stage"},
		{"stage", "stage"},
		{"test", "test"},
		{"testing", "test"},
		{"Local", "local"},
		{"My Env!", "my-env"},
	}
	for _, tt := range tests {
		if got := NormalizeStage(tt.in); got != tt.want {
			t.Fatalf("NormalizeStage(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStackName(t *testing.T) {
	if got := StackName("Docs", "site", "prod"); got != "docs-site-live" {
		t.Fatalf("StackName: %q", got)
	}
	if got := StackName("Docs", "cert", "stg"); got != "docs-cert-stage" {
		t.Fatalf("StackName cert: %q", got)
	}
}

func TestResourceName(t *testing.T) {
	if got := ResourceName("MyApp", "assets", "stg"); got != "myapp-assets-stage" {
		t.Fatalf("ResourceName app-resource-stage: %q", got)
	}
	if got := ResourceName("MyApp", "", "stg"); got != "myapp-stage" {
		t.Fatalf("ResourceName app-stage: %q", got)
	}
}

func TestBucketName(t *testing.T) {
	got := BucketName("Docs", "assets", "prod", "123456789012", "eu-west-1")
	want := "docs-assets-live-123456789012-eu-west-1"
	if got != want {
		t.Fatalf("BucketName=%q, want %q", got, want)
	}
	if len(got) > 63 {
		t.Fatalf("BucketName too long: %d", len(got))
	}
}

func TestBucketNameTruncation(t *testing.T) {
	got := BucketName(strings.Repeat("verylongappname", 4), "assets", "prod", "123456789012", "eu-west-1")
	if len(got) > 63 {
		t.Fatalf("BucketName exceeds S3 limit: %d chars", len(got))
	}
	if strings.HasSuffix(got, "-") || strings.HasPrefix(got, "-") {
		t.Fatalf("BucketName has dangling dash: %q", got)
	}
}

func TestSecretName(t *testing.T) {
	if got := SecretName("Docs", "prod", "publisher"); got != "docs/live/publisher" {
		t.Fatalf("SecretName: %q", got)
	}
}

func TestParameterPrefix(t *testing.T) {
	if got := ParameterPrefix("Docs", "prod"); got != "/docs/live" {
		t.Fatalf("ParameterPrefix: %q", got)
	}
}
