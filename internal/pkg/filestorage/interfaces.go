package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Object is a file handed to a storage backend
type Object struct {
	// Dir is the logical folder, e.g. "resumes"
	Dir         string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileStorage stores uploaded files and returns a retrievable URL
type FileStorage interface {
	// Save stores obj under a generated name and returns its public URL
	Save(ctx context.Context, obj Object) (string, error)

	// Delete removes the file behind a URL previously returned by Save.
	// Deleting a missing file is not an error.
	Delete(ctx context.Context, fileURL string) error
}

// SaveMultipart stores an uploaded multipart file in dir.
func SaveMultipart(ctx context.Context, storage FileStorage, fileHeader *multipart.FileHeader, dir string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("no file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	return storage.Save(ctx, Object{
		Dir:         dir,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
}

// generatedName returns a collision-free name that keeps the extension.
func generatedName(original string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(original))
}

// cleanDir keeps a logical folder name inside the storage root.
func cleanDir(dir string) string {
	dir = filepath.ToSlash(filepath.Clean("/" + dir))
	return strings.Trim(dir, "/")
}
