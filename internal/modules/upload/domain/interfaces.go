package domain

import "context"

// Uploader sends a payload to the image server.
// A non-nil error means the request never produced a response.
type Uploader interface {
	Upload(ctx context.Context, payload Payload) (Response, error)
}

// Reloader reloads the page from the server after a settled upload.
type Reloader interface {
	Reload(ctx context.Context, submission Submission) error
}

// FileSource resolves a selection reference (path, object key, ...) into a
// SelectedFile.
type FileSource interface {
	Open(ctx context.Context, ref string) (SelectedFile, error)
}

// Observer is notified about submissions. Observers must not block.
type Observer interface {
	Started(submission Submission)
	Settled(settlement Settlement)
}
