package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/infrastructure/source"
)

// LocalSource opens selections from the local filesystem
type LocalSource struct {
	basePath string
}

// NewLocalSource creates a source rooted at basePath. Relative references
// are resolved against it; absolute ones are used as is.
func NewLocalSource(basePath string) (*LocalSource, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source directory %s is not a directory", abs)
	}

	return &LocalSource{basePath: abs}, nil
}

// Open opens the file for reading. The caller owns the returned content.
func (l *LocalSource) Open(ctx context.Context, ref string) (domain.SelectedFile, error) {
	fullPath := ref
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(l.basePath, ref)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return domain.SelectedFile{}, fmt.Errorf("failed to stat %s: %w", ref, err)
	}
	if !info.Mode().IsRegular() {
		return domain.SelectedFile{}, fmt.Errorf("%s: %w", ref, domain.ErrNotAFile)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return domain.SelectedFile{}, fmt.Errorf("failed to open %s: %w", ref, err)
	}

	// Sniff, then rewind so the upload sends the whole file
	head := make([]byte, source.SniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return domain.SelectedFile{}, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return domain.SelectedFile{}, fmt.Errorf("failed to rewind %s: %w", ref, err)
	}

	name := filepath.Base(fullPath)
	return domain.NewSelectedFile(name, source.ContentType(name, head[:n]), info.Size(), file), nil
}
