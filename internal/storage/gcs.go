package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsPublicHost = "https://storage.googleapis.com/"

// GCSStore keeps uploads in a Cloud Storage bucket. Locators are the public
// object URLs.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore uses credentialsFile when given, otherwise application default credentials.
func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, r io.Reader, name string) (string, error) {
	object, err := cleanName(name)
	if err != nil {
		return "", err
	}

	writer := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType(object)
	writer.CacheControl = "no-cache"

	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to copy %s to gs://%s: %w", object, s.bucket, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for %s: %w", object, err)
	}

	return s.locatorFor(object), nil
}

func (s *GCSStore) Delete(ctx context.Context, locator string) error {
	object, err := s.objectName(locator)
	if err != nil {
		return err
	}

	if err := s.client.Bucket(s.bucket).Object(object).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete gs://%s/%s: %w", s.bucket, object, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) locatorFor(object string) string {
	return gcsPublicHost + s.bucket + "/" + object
}

func (s *GCSStore) objectName(locator string) (string, error) {
	prefix := gcsPublicHost + s.bucket + "/"
	if !strings.HasPrefix(locator, prefix) {
		return "", ErrInvalidLocator
	}
	return cleanName(strings.TrimPrefix(locator, prefix))
}

func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
