// Package storage provides the raw upload store behind domain.FileStore.
// References returned by Store are the public URLs the frontend uses
// (local backend) or s3:// keys (S3 backend).
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps uploads on the local filesystem under dir and serves
// them under publicPrefix (e.g. "/media").
type LocalStore struct {
	dir          string
	publicPrefix string
}

func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("could not create media directory: %w", err)
	}
	return &LocalStore{
		dir:          abs,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
	}, nil
}

func (s *LocalStore) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	// uuid prefix keeps names unique
	name := uuid.New().String() + "_" + sanitizeFilename(filename)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("could not store file %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("could not store file %s: %w", name, err)
	}
	return s.publicPrefix + "/" + name, nil
}

func (s *LocalStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	name := strings.TrimPrefix(ref, s.publicPrefix+"/")
	if strings.Contains(name, "..") || strings.ContainsRune(name, os.PathSeparator) {
		return nil, fmt.Errorf("invalid file reference: %s", ref)
	}
	return os.Open(filepath.Join(s.dir, name))
}

// Dir returns the directory uploads are written to, for static serving.
func (s *LocalStore) Dir() string {
	return s.dir
}

// sanitizeFilename replaces spaces and strips path components so uploaded
// names cannot escape the media directory.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.ReplaceAll(base, " ", "_")
	var b strings.Builder
	for _, r := range base {
		if r == '.' || r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
