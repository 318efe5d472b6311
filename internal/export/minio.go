// Package export snapshots drafts to object storage so founders can share
// or archive a plan revision outside the app.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/bistroplan/bistroplan/internal/config"
	"github.com/bistroplan/bistroplan/internal/draft"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOExporter uploads JSON draft snapshots to a MinIO bucket and hands
// back presigned download URLs.
type MinIOExporter struct {
	client *minio.Client
	bucket string
}

// NewMinIOExporter creates the client and ensures the bucket exists.
func NewMinIOExporter(cfg config.MinIOConfig) (*MinIOExporter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	e := &MinIOExporter{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, e.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, e.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return e, nil
}

// ExportDraft uploads a snapshot of d and returns a presigned GET URL valid
// for the given duration.
func (e *MinIOExporter) ExportDraft(ctx context.Context, userID string, d *draft.Draft, expires time.Duration) (string, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode draft snapshot: %w", err)
	}
	key := fmt.Sprintf("exports/%s/%s_%d.json", userID, d.ID, time.Now().Unix())
	_, err = e.client.PutObject(ctx, e.bucket, key, bytes.NewReader(b), int64(len(b)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("minio put snapshot: %w", err)
	}
	presigned, err := e.client.PresignedGetObject(ctx, e.bucket, key, expires, url.Values{})
	if err != nil {
		return "", fmt.Errorf("minio presign snapshot: %w", err)
	}
	return presigned.String(), nil
}
