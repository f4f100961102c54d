package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"review_scraper/internal/domain"
)

// productCheckpoint is what a finished product page leaves behind.
type productCheckpoint struct {
	Title   string                `json:"title"`
	Records []domain.ReviewRecord `json:"records"`
}

// Checkpoints keeps finished products of an unfinished run in the cache so a
// rerun does not revisit them. A nil *Checkpoints is valid and stores nothing.
type Checkpoints struct {
	cache domain.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCheckpoints(c domain.Cache, ttl time.Duration, log zerolog.Logger) *Checkpoints {
	if c == nil {
		return nil
	}
	return &Checkpoints{cache: c, ttl: ttl, log: log}
}

func checkpointPrefix(term string) string {
	return fmt.Sprintf("checkpoint:%s:", strings.ToLower(strings.TrimSpace(term)))
}

func checkpointKey(term string, index int) string {
	return fmt.Sprintf("%s%d", checkpointPrefix(term), index)
}

// Load returns the stored records of product index when its title still
// matches the listing entry.
func (c *Checkpoints) Load(ctx context.Context, term string, e domain.ProductEntry) ([]domain.ReviewRecord, bool) {
	if c == nil {
		return nil, false
	}
	var cp productCheckpoint
	ok, err := c.cache.Get(ctx, checkpointKey(term, e.Index), &cp)
	if err != nil {
		c.log.Warn().Err(err).Int("index", e.Index).Msg("checkpoint read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	if cp.Title != e.Title {
		c.log.Warn().
			Int("index", e.Index).
			Str("stored", cp.Title).
			Str("listed", e.Title).
			Msg("checkpoint belongs to another product, revisiting")
		return nil, false
	}
	return cp.Records, true
}

func (c *Checkpoints) Save(ctx context.Context, term string, e domain.ProductEntry, recs []domain.ReviewRecord) {
	if c == nil {
		return
	}
	cp := productCheckpoint{Title: e.Title, Records: recs}
	if err := c.cache.Set(ctx, checkpointKey(term, e.Index), cp, c.ttl); err != nil {
		c.log.Warn().Err(err).Int("index", e.Index).Msg("checkpoint write failed")
	}
}

// Clear drops every checkpoint of term; called once the table is persisted.
func (c *Checkpoints) Clear(ctx context.Context, term string) error {
	if c == nil {
		return nil
	}
	keys, err := c.cache.Keys(ctx, checkpointPrefix(term)+"*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.cache.Del(ctx, keys...)
}
