// Package dispatch pushes generated artifacts to remote object storage.
// Transfers are fire-and-forget: the submitter's response never waits on
// them and failures are logged, not surfaced. The local temp store is the
// guaranteed deliverable; the remote copy is best-effort.
package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/eventops/sponsorgate/internal/config"
)

const uploadTimeout = 2 * time.Minute

type Uploader struct {
	client *minio.Client
	bucket string
	region string
}

func New(cfg *config.Config) (*Uploader, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Uploader{client: client, bucket: cfg.S3Bucket, region: cfg.S3Region}, nil
}

// EnsureBucket makes sure the destination bucket exists before serving.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", u.bucket, err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{Region: u.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", u.bucket, err)
		}
	}
	return nil
}

// Dispatch queues one artifact for upload under folder and returns
// immediately. An in-flight upload outliving the HTTP response is expected.
func (u *Uploader) Dispatch(name, folder, contentType string, data []byte) {
	go u.upload(name, folder, contentType, data)
}

func (u *Uploader) upload(name, folder, contentType string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	key, err := u.availableKey(ctx, path.Join(folder, name))
	if err != nil {
		slog.Error("dispatch: resolve object key", "name", name, "error", err)
		return
	}

	_, err = u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		slog.Error("dispatch: upload failed", "key", key, "error", err)
		return
	}
	slog.Info("dispatch: uploaded", "key", key, "bytes", len(data))
}

// availableKey emulates add-with-autorename: S3 PUTs silently overwrite, so
// on collision the key gets a numeric suffix instead. Filenames already
// carry a fresh submission ID, so this path is practically never taken.
func (u *Uploader) availableKey(ctx context.Context, key string) (string, error) {
	candidate := key
	for i := 1; ; i++ {
		_, err := u.client.StatObject(ctx, u.bucket, candidate, minio.StatObjectOptions{})
		if err != nil {
			resp := minio.ToErrorResponse(err)
			if resp.Code == "NoSuchKey" {
				return candidate, nil
			}
			return "", err
		}
		ext := path.Ext(key)
		candidate = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(key, ext), i, ext)
	}
}

// Discard is the dispatcher used when no remote storage is configured.
type Discard struct{}

func (Discard) Dispatch(name, folder, contentType string, data []byte) {
	slog.Debug("dispatch: remote storage disabled, dropping artifact", "name", name, "folder", folder)
}
