package verify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	json "github.com/goccy/go-json"

	"github.com/theory-cloud/sitetheory/pkg/naming"
	"github.com/theory-cloud/sitetheory/pkg/observability"
	"github.com/theory-cloud/sitetheory/pkg/sanitization"
)

// StoredCredentials is the JSON object the site stack writes to Secrets
// Manager for each deploy principal.
type StoredCredentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

// FetchStoredCredentials reads a deploy principal's secret and parses the
// stored key pair. The caller decides what identity reads the secret; the
// checks themselves can then run with the returned credentials.
func FetchStoredCredentials(ctx context.Context, client SecretsManagerAPI, secretID string) (StoredCredentials, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return StoredCredentials{}, fmt.Errorf("read credentials secret %s: %w", secretID, err)
	}

	var creds StoredCredentials
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &creds); err != nil {
		return StoredCredentials{}, fmt.Errorf("credentials secret %s is not a JSON credentials object", secretID)
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return StoredCredentials{}, fmt.Errorf("credentials secret %s missing access_key_id or secret_access_key", secretID)
	}
	return creds, nil
}

// checkSecrets confirms both deploy principals have complete credentials in
// Secrets Manager. Values never reach the report or the log; only the
// masked key id is logged.
func (r *Runner) checkSecrets(ctx context.Context, report *Report, log observability.StructuredLogger) {
	for _, role := range []string{"publisher", "operator"} {
		name := naming.SecretName(r.cfg.App, r.cfg.Stage, role)

		creds, err := FetchStoredCredentials(ctx, r.secrets, name)
		if err != nil {
			report.failf("credentials-secret", name, "%v", err)
			continue
		}

		report.pass("credentials-secret", name)
		log.Debug("credentials present", map[string]any{
			"secret":        name,
			"access_key_id": sanitization.MaskAccessKeyID(creds.AccessKeyID),
		})
	}
}
