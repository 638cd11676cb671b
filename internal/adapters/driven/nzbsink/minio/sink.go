// Package minio implements the driven.NZBSink port against an S3-compatible
// object store, used instead of the local directory sink when a [minio]
// section is configured (output_path is then not used).
package minio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
)

var _ driven.NZBSink = (*Sink)(nil)

// Sink writes NZB documents as objects in a configured bucket.
type Sink struct {
	client *minio.Client
	bucket string
}

// NewSink builds a Sink from domain config, ensuring the target bucket
// exists.
func NewSink(ctx context.Context, cfg domain.MinioConfig) (*Sink, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating minio client: %v", domain.ErrStore, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: checking bucket %s: %v", domain.ErrStore, cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%w: creating bucket %s: %v", domain.ErrStore, cfg.Bucket, err)
		}
	}

	return &Sink{client: client, bucket: cfg.Bucket}, nil
}

// Write uploads data as an object named name, returning an s3:// URI.
func (s *Sink) Write(ctx context.Context, name string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/x-nzb"})
	if err != nil {
		return "", fmt.Errorf("%w: uploading %s: %v", domain.ErrStore, name, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, name), nil
}
