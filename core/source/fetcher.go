package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"auto-validator/core/reconcile"
	"auto-validator/core/storage"

	"github.com/go-resty/resty/v2"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

var githubHosts = map[string]struct{}{
	"github.com":                {},
	"api.github.com":            {},
	"raw.githubusercontent.com": {},
}

// Fetcher reads configuration documents by location.
type Fetcher struct {
	http    *resty.Client
	storage storage.Client
	token   string
	logger  *zap.Logger
}

// New creates a Fetcher. client may be nil when no s3:// locations are used.
func New(cfg Config, client storage.Client, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.HTTPTimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}

	httpClient := resty.New().
		SetTimeout(time.Duration(timeout) * time.Second).
		SetRetryCount(max(cfg.HTTPRetryCount, 0)).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500 || r.StatusCode() == 429
		})

	return &Fetcher{
		http:    httpClient,
		storage: client,
		token:   cfg.GithubToken,
		logger:  logger,
	}
}

// Fetch returns the raw document at location. Every error matches reconcile.ErrLoad.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(location, "s3://"):
		data, err = f.fetchObject(ctx, location)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		data, err = f.fetchHTTP(ctx, location)
	default:
		data, err = f.fetchFile(location)
	}
	if err != nil {
		f.logger.Warn("Failed to fetch document", zap.String("location", location), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", reconcile.ErrLoad, location, err)
	}
	f.logger.Debug("Fetched document", zap.String("location", location), zap.Int("bytes", len(data)))
	return data, nil
}

// Check verifies that location looks reachable without downloading it:
// the bucket must exist for s3:// and the file must exist for local paths.
// HTTP locations are not probed.
func (f *Fetcher) Check(ctx context.Context, location string) error {
	switch {
	case strings.HasPrefix(location, "s3://"):
		if f.storage == nil {
			return errors.New("object storage is not configured")
		}
		bucket, _, err := ParseObjectLocation(location)
		if err != nil {
			return err
		}
		exists, err := f.storage.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("bucket %s: %w", bucket, err)
		}
		if !exists {
			return fmt.Errorf("bucket %s does not exist", bucket)
		}
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
	default:
		path, err := ExpandHome(location)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	req := f.http.R().SetContext(ctx)
	if f.token != "" && isGithub(location) {
		req.SetHeader("Authorization", "token "+f.token)
	}

	resp, err := req.Get(location)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("request returned status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

func (f *Fetcher) fetchObject(ctx context.Context, location string) ([]byte, error) {
	if f.storage == nil {
		return nil, errors.New("object storage is not configured")
	}
	bucket, key, err := ParseObjectLocation(location)
	if err != nil {
		return nil, err
	}

	obj, err := f.storage.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

func (f *Fetcher) fetchFile(location string) ([]byte, error) {
	path, err := ExpandHome(location)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// ParseObjectLocation splits s3://bucket/key into its bucket and key.
func ParseObjectLocation(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an object location: %q", location)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("object location must be s3://bucket/key: %q", location)
	}
	return bucket, key, nil
}

// ExpandHome replaces a leading ~ with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func isGithub(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	_, ok := githubHosts[strings.ToLower(u.Hostname())]
	return ok
}
