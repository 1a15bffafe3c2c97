package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
)

// GCSArchiver copies a finished project folder to a bucket so local
// project directories can be pruned without losing the deliverables.
type GCSArchiver struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSArchiver(ctx context.Context, bucket, prefix string) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSArchiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (a *GCSArchiver) Close() error {
	return a.client.Close()
}

// Archive uploads every regular file under the project directory, keyed
// as <prefix>/<session id>/<relative path>.
func (a *GCSArchiver) Archive(ctx context.Context, project *Project, sessionID string) error {
	bkt := a.client.Bucket(a.bucket)

	return filepath.WalkDir(project.Dir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(project.Dir(), path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}

		key := filepath.ToSlash(filepath.Join(a.prefix, sessionID, rel))
		if err := a.uploadFile(ctx, bkt, path, key); err != nil {
			return fmt.Errorf("upload %s: %w", rel, err)
		}

		slog.Debug("Archived project file", "key", key)
		return nil
	})
}

func (a *GCSArchiver) uploadFile(ctx context.Context, bkt *storage.BucketHandle, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bkt.Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
