package utils

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CacheInvalidator purges cached event responses after any write that
// changes event fields or RSVP aggregates.
type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator { return &CacheInvalidator{rdb} }

// PurgeEventsList deletes every cached /events listing (all query variants).
func (ci *CacheInvalidator) PurgeEventsList(ctx context.Context) {
	iter := ci.rdb.Scan(ctx, 0, "cache:events:list:*", 0).Iterator()
	for iter.Next(ctx) {
		_ = ci.rdb.Del(ctx, iter.Val()).Err()
	}
}

// PurgeEventItem deletes the cached /events/:id response for one event.
func (ci *CacheInvalidator) PurgeEventItem(ctx context.Context, id int64) {
	_ = ci.rdb.Del(ctx, fmt.Sprintf("cache:events:item:%d", id)).Err()
}

// PurgeEvent drops both the listing and the single-event entry.
func (ci *CacheInvalidator) PurgeEvent(ctx context.Context, id int64) {
	ci.PurgeEventsList(ctx)
	ci.PurgeEventItem(ctx, id)
}
