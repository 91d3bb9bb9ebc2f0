package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client.
// Prefers ADC (Cloud Run service account / GOOGLE_APPLICATION_CREDENTIALS);
// set GCS_CREDENTIALS_JSON to provide explicit JSON (e.g. locally).
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GCSStorage stores artifacts as objects in a Google Cloud Storage bucket.
type GCSStorage struct {
	bucket string
}

func NewGCSStorage() (*GCSStorage, error) {
	bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}
	return &GCSStorage{bucket: bucket}, nil
}

func (s *GCSStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	wc := client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(data); err != nil {
		return fmt.Errorf("failed to upload object to Google Cloud Storage: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %v", err)
	}
	return nil
}

func (s *GCSStorage) Get(ctx context.Context, key string) ([]byte, error) {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	rc, err := client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

func (s *GCSStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var infos []ObjectInfo
	it := client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		infos = append(infos, ObjectInfo{
			Key:     attrs.Name,
			Size:    attrs.Size,
			Updated: attrs.Updated,
		})
	}
	return infos, nil
}

func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil {
		// Deleting a missing object is not an error for cleanup flows.
		if err == storage.ErrObjectNotExist {
			return nil
		}
		return err
	}
	return nil
}

func (s *GCSStorage) Size(ctx context.Context, key string) (int64, error) {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	attrs, err := client.Bucket(s.bucket).Object(key).Attrs(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return 0, ErrorRecordNotFound
		}
		return 0, err
	}
	return attrs.Size, nil
}

func (s *GCSStorage) URL(key string) string {
	return BuildObjectAccessURL(key)
}
