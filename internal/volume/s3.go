// Package volume is the S3-backed store for source drawings and derived
// artifacts.
package volume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/local/drawprep/internal/metrics"
)

var (
	// ErrFileExists is returned by Upload when the target exists and
	// overwrite is disabled.
	ErrFileExists = errors.New("file_already_exists")

	// ErrFileNotFound is returned when the requested object is absent.
	ErrFileNotFound = errors.New("file_not_found")
)

func IsFileExists(err error) bool   { return errors.Is(err, ErrFileExists) }
func IsFileNotFound(err error) bool { return errors.Is(err, ErrFileNotFound) }

// FileInfo describes one stored object.
type FileInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Store wraps an S3 bucket with the operations the drawing pipeline needs.
type Store struct {
	client *s3.Client
	bucket string
}

// NewStore creates a volume store over the given bucket using default AWS
// credential resolution.
func NewStore(ctx context.Context, bucket string) (*Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Store{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// Upload stores data under name. With overwrite disabled an existing object
// fails with ErrFileExists instead of being replaced.
func (s *Store) Upload(ctx context.Context, name string, data []byte, contentType string, overwrite bool) error {
	if !overwrite {
		exists, err := s.Exists(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			metrics.IncVolumeOp("upload", "exists")
			return fmt.Errorf("%w: %s", ErrFileExists, name)
		}
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		metrics.IncVolumeOp("upload", "error")
		return fmt.Errorf("upload %s: %w", name, err)
	}

	metrics.IncVolumeOp("upload", "ok")
	log.Info().Str("name", name).Int("size", len(data)).Msg("uploaded file to volume")
	return nil
}

// Download fetches an object's bytes.
func (s *Store) Download(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			metrics.IncVolumeOp("download", "missing")
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		metrics.IncVolumeOp("download", "error")
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		metrics.IncVolumeOp("download", "error")
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	metrics.IncVolumeOp("download", "ok")
	log.Debug().Str("name", name).Int("size", len(data)).Msg("downloaded file from volume")
	return data, nil
}

// DownloadToFile fetches an object into a local path.
func (s *Store) DownloadToFile(ctx context.Context, name, localPath string) error {
	data, err := s.Download(ctx, name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", localPath, err)
	}
	return nil
}

// Exists reports whether an object is present.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head %s: %w", name, err)
	}
	return true, nil
}

// List enumerates stored objects.
func (s *Store) List(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			metrics.IncVolumeOp("list", "error")
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			fi := FileInfo{Name: *obj.Key}
			if obj.Size != nil {
				fi.Size = *obj.Size
			}
			if obj.LastModified != nil {
				fi.Modified = *obj.LastModified
			}
			files = append(files, fi)
		}
	}
	metrics.IncVolumeOp("list", "ok")
	return files, nil
}

// Delete removes an object. Deleting an absent object is not an error at
// the S3 layer, so existence is checked first for caller feedback.
func (s *Store) Delete(ctx context.Context, name string) error {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	}); err != nil {
		metrics.IncVolumeOp("delete", "error")
		return fmt.Errorf("delete %s: %w", name, err)
	}

	metrics.IncVolumeOp("delete", "ok")
	log.Info().Str("name", name).Msg("deleted file from volume")
	return nil
}
