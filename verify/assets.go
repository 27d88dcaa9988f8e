package verify

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// checkAssets compares the local asset tree with the bucket listing. After
// a clean sync the two agree exactly: every local file present with
// matching content, nothing extra remotely, and no remote object matching
// an exclude pattern.
func (r *Runner) checkAssets(ctx context.Context, report *Report, bucket string) {
	local, err := localAssets(r.cfg.AssetDir, r.cfg.ExcludePatterns)
	if err != nil {
		report.failf("assets-drift", bucket, "read local assets: %v", err)
		return
	}

	remote, err := r.listObjects(ctx, bucket)
	if err != nil {
		report.failf("assets-drift", bucket, "list bucket: %v", err)
		return
	}

	var excluded []string
	for key := range remote {
		if matchesAny(r.cfg.ExcludePatterns, key) {
			excluded = append(excluded, key)
		}
	}
	sort.Strings(excluded)
	if len(excluded) > 0 {
		report.failf("assets-excluded", bucket, "excluded patterns present remotely: %s", sample(excluded))
	} else {
		report.pass("assets-excluded", bucket)
	}

	var missing, stray, changed []string
	for key, sum := range local {
		etag, ok := remote[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		// Multipart tags are composites, not content hashes; nothing to
		// compare against.
		if strings.Contains(etag, "-") {
			continue
		}
		if etag != sum {
			changed = append(changed, key)
		}
	}
	for key := range remote {
		if _, ok := local[key]; !ok && !matchesAny(r.cfg.ExcludePatterns, key) {
			stray = append(stray, key)
		}
	}
	sort.Strings(missing)
	sort.Strings(stray)
	sort.Strings(changed)

	if len(missing)+len(stray)+len(changed) == 0 {
		report.pass("assets-drift", bucket)
		return
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing remotely: %s", sample(missing)))
	}
	if len(stray) > 0 {
		parts = append(parts, fmt.Sprintf("not pruned: %s", sample(stray)))
	}
	if len(changed) > 0 {
		parts = append(parts, fmt.Sprintf("content differs: %s", sample(changed)))
	}
	report.fail("assets-drift", bucket, strings.Join(parts, "; "))
}

func (r *Runner) listObjects(ctx context.Context, bucket string) (map[string]string, error) {
	out := map[string]string{}
	var token *string
	for {
		page, err := r.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			out[aws.ToString(obj.Key)] = strings.Trim(aws.ToString(obj.ETag), `"`)
		}
		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			return out, nil
		}
		token = page.NextContinuationToken
	}
}

func localAssets(dir string, excludes []string) (map[string]string, error) {
	out := map[string]string{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if matchesAny(excludes, key) {
			return nil
		}
		sum, err := fileMD5(p)
		if err != nil {
			return err
		}
		out[key] = sum
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// fileMD5 fingerprints content the way S3 tags single-part objects.
func fileMD5(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path comes from walking the user-supplied asset directory.
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New() //nolint:gosec // S3 single-part ETags are MD5; this fingerprints content, it is not a security hash.
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// matchesAny applies a sync exclude pattern to either the object key or its
// base name, mirroring how the deployment excludes files.
func matchesAny(patterns []string, key string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, key); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pattern, path.Base(key)); err == nil && ok {
			return true
		}
	}
	return false
}

func sample(keys []string) string {
	const max = 3
	if len(keys) <= max {
		return strings.Join(keys, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(keys[:max], ", "), len(keys)-max)
}
