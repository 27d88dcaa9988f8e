package verify

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestReportCountsAndOK(t *testing.T) {
	t.Parallel()

	var r Report
	require.True(t, r.OK())

	r.pass("bucket-encryption", "docs-site-test")
	r.pass("distribution-present", "docs.example.com")
	require.True(t, r.OK())
	require.Equal(t, 2, r.Passed)

	r.failf("probe-redirect", "www.docs.example.com", "status %d, want 301", 200)
	require.False(t, r.OK())
	require.Equal(t, 1, r.Failed)
	require.Len(t, r.Findings, 3)

	last := r.Findings[2]
	require.Equal(t, StatusFail, last.Status)
	require.Equal(t, "status 200, want 301", last.Detail)
}

func TestReportJSONOmitsEmptyDetail(t *testing.T) {
	t.Parallel()

	var r Report
	r.RunID = "01JCZX6A7N3WKJ5H8Q2R9T4VBD"
	r.pass("bucket-encryption", "docs-site-test")

	b, err := r.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "01JCZX6A7N3WKJ5H8Q2R9T4VBD", decoded["run_id"])

	findings, ok := decoded["findings"].([]any)
	require.True(t, ok)
	require.Len(t, findings, 1)

	finding, ok := findings[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "pass", finding["status"])
	_, hasDetail := finding["detail"]
	require.False(t, hasDetail)
}
