// Package storage holds widget logo uploads in S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// LogoStore persists a client's widget logo and returns its public URL.
type LogoStore interface {
	Upload(ctx context.Context, clientID, contentType string, body io.Reader) (string, error)
}

type S3Config struct {
	Endpoint  string // host only, e.g. "fsn1.your-objectstorage.com"
	Region    string
	Bucket    string
	KeyID     string
	Secret    string
	PublicURL string // base URL logos are served from; defaults to path-style on Endpoint
}

// S3LogoStore stores logos in an S3-compatible bucket using path-style
// addressing, which the non-AWS providers require.
type S3LogoStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3LogoStore(cfg S3Config) *S3LogoStore {
	endpoint := fmt.Sprintf("https://%s", cfg.Endpoint)

	client := s3.New(s3.Options{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.KeyID, cfg.Secret, "",
		),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s/%s", endpoint, cfg.Bucket)
	}

	return &S3LogoStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}
}

func (s *S3LogoStore) Upload(ctx context.Context, clientID, contentType string, body io.Reader) (string, error) {
	key := logoKey(clientID, contentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put logo for %s: %w", clientID, err)
	}

	return s.publicURL + "/" + key, nil
}

// logoKey is stable per client so re-uploads replace the previous logo
// instead of accumulating objects.
func logoKey(clientID, contentType string) string {
	ext := ".png"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/svg+xml":
		ext = ".svg"
	case "image/webp":
		ext = ".webp"
	}
	return path.Join("logos", clientID+ext)
}

// Memory is an in-process LogoStore for tests and local development.
type Memory struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{Objects: make(map[string][]byte)}
}

func (m *Memory) Upload(ctx context.Context, clientID, contentType string, body io.Reader) (string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	key := logoKey(clientID, contentType)
	m.mu.Lock()
	m.Objects[key] = raw
	m.mu.Unlock()
	return "memory://" + key, nil
}
