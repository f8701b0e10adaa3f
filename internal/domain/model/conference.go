package model

import (
	"time"

	"github.com/google/uuid"

	"event-access-platform/internal/domain"
)

// Conference is one piece of gated video content. Listing is only served to
// accounts that hold an access grant.
type Conference struct {
	ID          string
	Title       string
	Speaker     string
	Description string
	VideoURL    string
	ScheduledAt *time.Time
	Published   bool
	CreatedAt   time.Time
}

func NewConference(title, speaker, description, videoURL string, scheduledAt *time.Time) (*Conference, error) {
	if title == "" || videoURL == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Conference{
		ID:          uuid.NewString(),
		Title:       title,
		Speaker:     speaker,
		Description: description,
		VideoURL:    videoURL,
		ScheduledAt: scheduledAt,
		Published:   true,
		CreatedAt:   time.Now(),
	}, nil
}
