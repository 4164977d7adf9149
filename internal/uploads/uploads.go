// Package uploads stores images attached to complaints and broadcasts,
// either on local disk (served under /uploads/) or in a GCS bucket.
package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/societyhub/community-server/internal/apperr"
)

// URLPrefix is where locally stored files are served from
const URLPrefix = "/uploads/"

// Store persists an uploaded file and returns the reference saved on the resource.
type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SaveImage checks an uploaded image's size and sniffed content type, then
// stores it under a fresh unique name.
func SaveImage(ctx context.Context, store Store, file multipart.File, header *multipart.FileHeader, maxBytes int64) (string, error) {
	if header.Size > maxBytes {
		return "", apperr.ValidationFields(
			fmt.Sprintf("Image must be %dMB or smaller", maxBytes>>20),
			map[string]string{"image": "file too large"})
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", apperr.ValidationFields("Only image uploads are allowed",
			map[string]string{"image": "unsupported type " + contentType})
	}

	// header.Size comes from the client; cap what is actually read too
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), file), maxBytes+1)
	counted := &countingReader{r: body}

	ref, err := store.Save(ctx, uuid.NewString()+ext, contentType, counted)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	if counted.n > maxBytes {
		_ = store.Delete(ctx, ref)
		return "", apperr.ValidationFields(
			fmt.Sprintf("Image must be %dMB or smaller", maxBytes>>20),
			map[string]string{"image": "file too large"})
	}
	return ref, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// LocalStore writes files into a directory on disk
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir is the directory files are written to
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	f, err := os.Create(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return URLPrefix + filepath.Base(name), nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	if !strings.HasPrefix(ref, URLPrefix) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(strings.TrimPrefix(ref, URLPrefix))))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", ref, err)
	}
	return nil
}

// GCSStore writes files into a Google Cloud Storage bucket
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore creates a bucket-backed store. An empty credentialsFile uses
// the ambient application default credentials.
func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("service account key not found at %s: %w", credentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("copy to gs://%s/%s: %w", s.bucket, name, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close GCS writer for %s: %w", name, err)
	}
	return s.publicURL(name), nil
}

func (s *GCSStore) Delete(ctx context.Context, ref string) error {
	prefix := s.publicURL("")
	if !strings.HasPrefix(ref, prefix) {
		return nil
	}
	err := s.client.Bucket(s.bucket).Object(strings.TrimPrefix(ref, prefix)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", ref, err)
	}
	return nil
}

// Close releases the underlying client
func (s *GCSStore) Close() error { return s.client.Close() }

func (s *GCSStore) publicURL(name string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name)
}
