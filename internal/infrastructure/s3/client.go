// Package s3infra stores portfolio attachments. Objects live under a
// per-uploader prefix and are only ever read back through short-lived
// presigned URLs; the bucket itself stays private.
package s3infra

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/skillshare/api/internal/config"
)

// Download links die after this long; re-fetching the file metadata mints
// a fresh one.
const presignTTL = 15 * time.Minute

// Store is the attachment backend.
type Store struct {
	client     *s3.Client
	bucket     string
	presignTTL time.Duration
}

// Object describes a stored attachment as the catalog records it.
type Object struct {
	Key         string
	Name        string
	ContentType string
	Size        int64
}

// NewClient creates an S3 client. When cfg.AWSEndpointURL is set
// (LocalStack), it overrides the endpoint and enables path-style
// addressing.
func NewClient(cfg *config.Config) *s3.Client {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		panic("failed to load AWS config for S3: " + err.Error())
	}

	clientOpts := []func(*s3.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsCfg, clientOpts...)
}

func NewStore(client *s3.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket, presignTTL: presignTTL}
}

// PutAttachment writes body under the uploader's prefix, deriving a safe
// object name and content type from the client-supplied filename.
func (s *Store) PutAttachment(ctx context.Context, uploaderID, filename string, body []byte) (*Object, error) {
	name := sanitizeFilename(filename)
	obj := &Object{
		Key:         attachmentKey(uploaderID, name),
		Name:        name,
		ContentType: contentTypeFor(name),
		Size:        int64(len(body)),
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(obj.Key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(obj.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 put object: %w", err)
	}
	return obj, nil
}

// DownloadURL presigns a GET for the attachment at key.
func (s *Store) DownloadURL(ctx context.Context, key string) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return req.URL, nil
}

// Delete removes the attachment at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func attachmentKey(uploaderID, name string) string {
	return path.Join("files", uploaderID, name)
}

func contentTypeFor(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// sanitizeFilename strips directory components and keeps only safe
// characters (alphanumeric, dot, dash, underscore) so a hostile filename
// cannot escape the uploader's prefix.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); strings.Trim(result, ".") != "" {
		return result
	}
	return "_"
}
