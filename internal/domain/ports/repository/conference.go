package repository

import (
	"context"

	"event-access-platform/internal/domain/model"
)

// ConferenceRepository is the port over the gated content catalog.
type ConferenceRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Conference) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Conference, error)
	ListPublished(ctx context.Context, tx Tx) ([]*model.Conference, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Conference, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
