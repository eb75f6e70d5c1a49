package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const EventTypeReload = "reload"

var (
	ErrNoNotifiers     = errors.New("no reload notifiers configured")
	ErrUnknownNotifier = errors.New("unknown reload notifier")
)

// Event asks pages showing the current image to reload from the server.
type Event struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
	// Submission is the upload that caused the reload.
	Submission uuid.UUID `json:"submission"`
	File       string    `json:"file,omitempty"`
	// Page restricts the reload to clients showing this path. Empty means all.
	Page string    `json:"page,omitempty"`
	At   time.Time `json:"at"`
	// Origin identifies the process that published the event on a broker.
	Origin string `json:"origin,omitempty"`
}

func NewEvent(submission uuid.UUID, file, page string) Event {
	return Event{
		Type:       EventTypeReload,
		ID:         uuid.New(),
		Submission: submission,
		File:       file,
		Page:       page,
		At:         time.Now().UTC(),
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func ParseEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	if e.Type != EventTypeReload {
		return Event{}, errors.New("not a reload event")
	}
	return e, nil
}

// Notifier delivers reload events to one kind of listener.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, event Event) error
}
