package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// outputDirForStorage is the default base directory for exported documents.
const outputDirForStorage = "_output"

// ContentStorer persists an exported document and returns a reference to it
// (a relative path for local storage, a public URL for object storage).
type ContentStorer interface {
	Store(ctx context.Context, userID, carouselID, fileName string, data []byte) (string, error)
}

func objectKey(userID, carouselID, fileName string) (string, error) {
	if userID == "" || carouselID == "" || fileName == "" {
		return "", fmt.Errorf("userID, carouselID and fileName cannot be empty for storing content")
	}
	for _, part := range []string{userID, carouselID, fileName} {
		if strings.ContainsAny(part, `/\`) || part == "." || part == ".." {
			return "", fmt.Errorf("invalid path component %q", part)
		}
	}
	return path.Join("exports", userID, carouselID, fileName), nil
}

// LocalFileStorer writes documents under <basePath>/exports/<user>/<carousel>/.
type LocalFileStorer struct {
	basePath string
}

// NewLocalFileStorer creates a new LocalFileStorer.
// If basePath is empty, it defaults to outputDirForStorage.
func NewLocalFileStorer(basePath string) *LocalFileStorer {
	if basePath == "" {
		basePath = outputDirForStorage
	}
	return &LocalFileStorer{basePath: basePath}
}

func (lfs *LocalFileStorer) Store(_ context.Context, userID, carouselID, fileName string, data []byte) (string, error) {
	key, err := objectKey(userID, carouselID, fileName)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(lfs.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		log.Printf("ERROR (LocalFileStorer): Failed to create storage directory for '%s': %v", fullPath, err)
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		log.Printf("ERROR (LocalFileStorer): Failed to write document to '%s': %v", fullPath, err)
		return "", fmt.Errorf("failed to save document: %w", err)
	}

	log.Printf("INFO (LocalFileStorer): Saved document to: %s (%d bytes)", fullPath, len(data))
	return key, nil
}
