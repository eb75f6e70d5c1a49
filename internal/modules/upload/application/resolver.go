package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
)

const s3Scheme = "s3://"

// Resolver routes selection references to the matching file source.
type Resolver struct {
	local domain.FileSource
	s3    domain.FileSource
}

// NewResolver creates a resolver. s3 may be nil.
func NewResolver(local, s3 domain.FileSource) *Resolver {
	return &Resolver{local: local, s3: s3}
}

// Open resolves a single reference.
func (r *Resolver) Open(ctx context.Context, ref string) (domain.SelectedFile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.SelectedFile{}, domain.ErrEmptySelection
	}

	if strings.HasPrefix(ref, s3Scheme) {
		if r.s3 == nil {
			return domain.SelectedFile{}, fmt.Errorf("%s: %w", ref, domain.ErrSourceNotConfigured)
		}
		return r.s3.Open(ctx, ref)
	}
	if strings.Contains(ref, "://") && !strings.HasPrefix(ref, "file://") {
		return domain.SelectedFile{}, fmt.Errorf("%s: %w", ref, domain.ErrUnsupportedRef)
	}
	if r.local == nil {
		return domain.SelectedFile{}, fmt.Errorf("%s: %w", ref, domain.ErrSourceNotConfigured)
	}
	return r.local.Open(ctx, strings.TrimPrefix(ref, "file://"))
}

// Select turns the references of one selection event into a selection.
// Only the first file is ever uploaded, so the rest are not opened.
func (r *Resolver) Select(ctx context.Context, refs []string) ([]domain.SelectedFile, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	file, err := r.Open(ctx, refs[0])
	if err != nil {
		return nil, err
	}
	return []domain.SelectedFile{file}, nil
}
