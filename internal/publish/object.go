package publish

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"framegen/internal/config"
)

// ObjectPublisher stores frames in an S3 compatible bucket.
type ObjectPublisher struct {
	client *miniogo.Client
	bucket string
	prefix string
}

func NewObjectPublisher(cfg config.ObjectPublish) (*ObjectPublisher, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &ObjectPublisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (p *ObjectPublisher) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", p.bucket, err)
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", p.bucket, err)
		}
	}
	return nil
}

func (p *ObjectPublisher) Publish(ctx context.Context, f Frame) error {
	key := ObjectKey(p.prefix, f)
	_, err := p.client.FPutObject(ctx, p.bucket, key, f.Path, miniogo.PutObjectOptions{
		ContentType: contentType(f.Path),
		UserMetadata: map[string]string{
			"frame-index": fmt.Sprint(f.Index),
			"timestamp":   fmt.Sprint(f.Seconds()),
		},
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// ObjectKey places frames under prefix/<job or source name>/<file name>.
func ObjectKey(prefix string, f Frame) string {
	group := f.JobID
	if group == "" {
		base := filepath.Base(f.Source)
		group = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return path.Join(prefix, group, filepath.Base(f.Path))
}

func contentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
