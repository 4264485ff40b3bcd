package archive

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type StoreOpts struct {
	Endpoint, AccessKey, SecretKey string
	UseTLS                         bool
	Bucket                         string
	Session                        string
}

// Store uploads archive objects to one S3-compatible bucket, tagging each
// with the collector session that produced it.
type Store struct {
	mc      *minio.Client
	bucket  string
	session string
}

func NewStore(o StoreOpts) (*Store, error) {
	mc, err := minio.New(o.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: o.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client %s: %w", o.Endpoint, err)
	}
	return &Store{mc: mc, bucket: o.Bucket, session: o.Session}, nil
}

func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	return s.mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

func (s *Store) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := s.mc.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"session": s.session},
	})
	return err
}

// ObjectPath places an object under Hive-style UTC date partitions.
func ObjectPath(base string, t time.Time, name string) string {
	u := t.UTC()
	return fmt.Sprintf("%s/year=%04d/month=%02d/day=%02d/%s", base, u.Year(), u.Month(), u.Day(), name)
}
