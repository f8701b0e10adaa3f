package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/repository"
	"event-access-platform/internal/infra/logging"
)

// Compile-time check
var _ ConferenceUseCase = (*conferenceUC)(nil)

// ConferenceUseCase serves the gated content catalog. Listing requires an
// access grant on the requesting account; mutation requires admin capability.
type ConferenceUseCase interface {
	ListForAccount(ctx context.Context, emailKey string) ([]*model.Conference, error)
	Create(ctx context.Context, title, speaker, description, videoURL string, scheduledAt *time.Time, actingAdmin string) (*model.Conference, error)
	Update(ctx context.Context, c *model.Conference, actingAdmin string) error
	ListAll(ctx context.Context, actingAdmin string) ([]*model.Conference, error)
	Delete(ctx context.Context, id, actingAdmin string) error
}

type conferenceUC struct {
	conferences repository.ConferenceRepository
	access      AccessUseCase
	admins      AdminUseCase
	log         *zerolog.Logger
}

func NewConferenceUseCase(conferences repository.ConferenceRepository, access AccessUseCase, admins AdminUseCase, logger *zerolog.Logger) *conferenceUC {
	return &conferenceUC{conferences: conferences, access: access, admins: admins, log: logger}
}

func (u *conferenceUC) ListForAccount(ctx context.Context, emailKey string) ([]*model.Conference, error) {
	defer logging.TraceDuration(u.log, "ConferenceUC.ListForAccount")()

	ok, err := u.access.HasAccess(ctx, emailKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotAuthorized
	}
	return u.conferences.ListPublished(ctx, repository.NoTX)
}

func (u *conferenceUC) Create(ctx context.Context, title, speaker, description, videoURL string, scheduledAt *time.Time, actingAdmin string) (*model.Conference, error) {
	defer logging.TraceDuration(u.log, "ConferenceUC.Create")()

	if err := u.requireAdmin(ctx, actingAdmin); err != nil {
		return nil, err
	}
	c, err := model.NewConference(title, speaker, description, videoURL, scheduledAt)
	if err != nil {
		return nil, err
	}
	if err := u.conferences.Save(ctx, repository.NoTX, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *conferenceUC) Update(ctx context.Context, c *model.Conference, actingAdmin string) error {
	defer logging.TraceDuration(u.log, "ConferenceUC.Update")()

	if err := u.requireAdmin(ctx, actingAdmin); err != nil {
		return err
	}
	if c == nil || c.ID == "" {
		return domain.ErrInvalidArgument
	}
	return u.conferences.Save(ctx, repository.NoTX, c)
}

func (u *conferenceUC) ListAll(ctx context.Context, actingAdmin string) ([]*model.Conference, error) {
	defer logging.TraceDuration(u.log, "ConferenceUC.ListAll")()

	if err := u.requireAdmin(ctx, actingAdmin); err != nil {
		return nil, err
	}
	return u.conferences.ListAll(ctx, repository.NoTX)
}

func (u *conferenceUC) Delete(ctx context.Context, id, actingAdmin string) error {
	defer logging.TraceDuration(u.log, "ConferenceUC.Delete")()

	if err := u.requireAdmin(ctx, actingAdmin); err != nil {
		return err
	}
	return u.conferences.Delete(ctx, repository.NoTX, id)
}

func (u *conferenceUC) requireAdmin(ctx context.Context, actingAdmin string) error {
	ok, err := u.admins.IsAdmin(ctx, actingAdmin, nil)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotAuthorized
	}
	return nil
}
