package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.AdminVerdictCache = (*AdminVerdictCache)(nil)

// AdminVerdictCache persists time-bounded admin-check verdicts. It backs the
// explicit degraded-mode fallback of the admin read path and nothing else.
type AdminVerdictCache struct {
	client *Client
}

func NewAdminVerdictCache(client *Client) *AdminVerdictCache {
	return &AdminVerdictCache{client: client}
}

func verdictKey(emailKey string) string {
	return fmt.Sprintf("admin_verdict:%s", emailKey)
}

func (c *AdminVerdictCache) Get(ctx context.Context, emailKey string) (*model.CachedVerdict, error) {
	raw, err := c.client.Get(ctx, verdictKey(emailKey))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var v model.CachedVerdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *AdminVerdictCache) Put(ctx context.Context, emailKey string, verdict model.CachedVerdict, ttl time.Duration) error {
	raw, err := json.Marshal(verdict)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, verdictKey(emailKey), raw, ttl)
}
