package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/xxxsen/retrolib/internal/config"
)

const defaultRegion = "us-east-1"

// bucketStore keeps collection backups in one S3 (or MinIO) bucket. Backup
// files are small text files, so they are moved whole.
type bucketStore struct {
	api    *s3.Client
	bucket string
}

// NewS3Client connects to the bucket described by cfg.
func NewS3Client(ctx context.Context, cfg appconfig.S3Config) (Client, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	endpoint := normalizeEndpoint(cfg.Host)
	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return &bucketStore{api: api, bucket: cfg.Bucket}, nil
}

func (b *bucketStore) UploadFile(ctx context.Context, key, filePath string, contentType string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read backup source %s: %w", filePath, err)
	}
	in := &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := b.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put object %s/%s: %w", b.bucket, key, err)
	}
	return nil
}

// DownloadToFile replaces destPath with the object; a failed transfer
// leaves the previous file untouched.
func (b *bucketStore) DownloadToFile(ctx context.Context, key, destPath string) error {
	res, err := b.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get object %s/%s: %w", b.bucket, key, err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read object %s/%s: %w", b.bucket, key, err)
	}
	return replaceFile(destPath, data)
}

func replaceFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure dir of %s: %w", path, err)
	}
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// ListKeys returns every object key under prefix, in listing order.
func (b *bucketStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	pages := s3.NewListObjectsV2Paginator(b.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects in %s/%s: %w", b.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if key := aws.ToString(obj.Key); key != "" {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}

// normalizeEndpoint turns a bare host into an https URL; anything with a
// scheme is kept as given.
func normalizeEndpoint(host string) string {
	host = strings.TrimSpace(host)
	if host == "" || strings.Contains(host, "://") {
		return host
	}
	return (&url.URL{Scheme: "https", Host: host}).String()
}
