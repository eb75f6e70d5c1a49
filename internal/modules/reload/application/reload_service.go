package application

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/stegoweb/imagetrigger/internal/modules/reload/domain"
	upload "github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
)

// ReloadService fans a reload out to every configured notifier.
type ReloadService struct {
	notifiers []domain.Notifier
	page      string
}

func NewReloadService(page string, notifiers ...domain.Notifier) *ReloadService {
	return &ReloadService{notifiers: notifiers, page: page}
}

// Reload notifies all listeners that the current image changed. Every
// notifier is tried; their failures are joined.
func (s *ReloadService) Reload(ctx context.Context, submission upload.Submission) error {
	if len(s.notifiers) == 0 {
		return domain.ErrNoNotifiers
	}

	event := domain.NewEvent(submission.ID, submission.File, s.page)

	var errs []error
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		log.Printf("[Reload] %s notified for %s", n.Name(), submission.ID)
	}
	return errors.Join(errs...)
}

// Notifiers returns the names of the configured notifiers.
func (s *ReloadService) Notifiers() []string {
	names := make([]string, 0, len(s.notifiers))
	for _, n := range s.notifiers {
		names = append(names, n.Name())
	}
	return names
}
