package domain

import (
	"bytes"
	"io"
)

// DefaultContentType is used for a part whose file carries no MIME type.
const DefaultContentType = "application/octet-stream"

// SelectedFile is one file picked by the user. It is owned by a single
// submission and closed once the request has been sent.
type SelectedFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.ReadCloser
}

// NewSelectedFile wraps an in-memory or streaming reader as a SelectedFile.
func NewSelectedFile(name, contentType string, size int64, r io.Reader) SelectedFile {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	return SelectedFile{
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Content:     rc,
	}
}

// FileFromBytes is a convenience for browser selections already read into memory.
func FileFromBytes(name, contentType string, data []byte) SelectedFile {
	return NewSelectedFile(name, contentType, int64(len(data)), bytes.NewReader(data))
}

// Close releases the file content. Closing a zero SelectedFile is a no-op.
func (f SelectedFile) Close() error {
	if f.Content == nil {
		return nil
	}
	return f.Content.Close()
}

// PartContentType returns the MIME type sent with the multipart part.
func (f SelectedFile) PartContentType() string {
	if f.ContentType == "" {
		return DefaultContentType
	}
	return f.ContentType
}
