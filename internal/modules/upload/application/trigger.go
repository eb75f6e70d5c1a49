package application

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
)

// Trigger turns file selections into uploads of the current image followed by
// a page reload.
//
// Every selection runs as its own submission. Submissions are neither
// cancelled nor ordered: two quick selections produce two requests whose
// settlements may arrive in any order, and each successful one reloads.
// A transport failure is logged and dropped: no reload, no retry.
type Trigger struct {
	uploader  domain.Uploader
	reloader  domain.Reloader
	observers []domain.Observer

	inFlight atomic.Int64
	wg       sync.WaitGroup
}

// NewTrigger creates a trigger. reloader may be nil when nothing should
// happen after an upload settles.
func NewTrigger(uploader domain.Uploader, reloader domain.Reloader, observers ...domain.Observer) *Trigger {
	return &Trigger{
		uploader:  uploader,
		reloader:  reloader,
		observers: observers,
	}
}

// HandleSelection handles one selection event. Only the first file is used;
// the others are closed unread. It reports whether an upload was started.
func (t *Trigger) HandleSelection(ctx context.Context, files []domain.SelectedFile) bool {
	if len(files) == 0 {
		return false
	}
	for _, extra := range files[1:] {
		extra.Close()
	}
	t.Submit(ctx, files[0])
	return true
}

// Submit starts an upload of file and returns immediately.
func (t *Trigger) Submit(ctx context.Context, file domain.SelectedFile) domain.Submission {
	submission := domain.NewSubmission(file)

	t.inFlight.Add(1)
	t.wg.Add(1)
	for _, o := range t.observers {
		o.Started(submission)
	}

	// Submissions outlive the selection that started them.
	go t.run(context.WithoutCancel(ctx), submission, file)

	return submission
}

func (t *Trigger) run(ctx context.Context, submission domain.Submission, file domain.SelectedFile) {
	defer t.wg.Done()

	resp, err := t.uploader.Upload(ctx, domain.NewPayload(file))
	file.Close()

	settlement := domain.Settlement{
		Submission: submission,
		Response:   resp,
		Err:        err,
		Duration:   time.Since(submission.StartedAt),
	}

	if err != nil {
		log.Printf("[Trigger] upload %s of %q failed, page not reloaded: %v", submission.ID, submission.File, err)
	} else {
		log.Printf("[Trigger] upload %s of %q settled: %s", submission.ID, submission.File, resp.Status)
		if t.reloader != nil {
			settlement.Reloaded = true
			if rerr := t.reloader.Reload(ctx, submission); rerr != nil {
				settlement.ReloadErr = rerr
				log.Printf("[Trigger] reload after %s: %v", submission.ID, rerr)
			}
		}
	}

	t.inFlight.Add(-1)
	for _, o := range t.observers {
		o.Settled(settlement)
	}
}

// State reports Idle when no submission is in flight.
func (t *Trigger) State() domain.State {
	if t.inFlight.Load() > 0 {
		return domain.StateUploading
	}
	return domain.StateIdle
}

// InFlight returns the number of running submissions.
func (t *Trigger) InFlight() int {
	return int(t.inFlight.Load())
}

// Wait blocks until every started submission has settled.
func (t *Trigger) Wait() {
	t.wg.Wait()
}
