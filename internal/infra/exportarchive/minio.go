package exportarchive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
)

// MinioArchiver stores timestamped CSV export snapshots in S3-compatible
// object storage.
type MinioArchiver struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// Options configure the object storage connection.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioArchiver constructs the archiver.
func NewMinioArchiver(opts Options) (*MinioArchiver, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}
	return &MinioArchiver{client: client, bucket: opts.Bucket, now: time.Now}, nil
}

// Archive implements retrieval.Archiver.
func (a *MinioArchiver) Archive(ctx context.Context, tenantID string, csv []byte) error {
	object := fmt.Sprintf("%s/faq_export_%s.csv", tenantID, a.now().UTC().Format("20060102_150405"))
	_, err := a.client.PutObject(ctx, a.bucket, object, bytes.NewReader(csv), int64(len(csv)), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("put export snapshot: %w", err)
	}
	return nil
}

var _ retrieval.Archiver = (*MinioArchiver)(nil)
