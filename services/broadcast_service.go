package services

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const uiRefreshChannel = "carclout:ui-refresh"

// BroadcastService fans out UI refresh hints over Redis pub/sub. Publishing
// is best effort: failures are logged and swallowed so they can never fail
// the operation that triggered them.
type BroadcastService struct {
	rdb *redis.Client
}

func NewBroadcastService(rdb *redis.Client) *BroadcastService {
	return &BroadcastService{rdb: rdb}
}

func (s *BroadcastService) Publish(ctx context.Context, event string) {
	if s == nil || s.rdb == nil {
		return
	}

	if err := s.rdb.Publish(ctx, uiRefreshChannel, event).Err(); err != nil {
		log.Printf("Broadcast: failed to publish %q: %v", event, err)
	}
}
