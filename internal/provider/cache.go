package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedLookup memoizes a TitleLookup. Series searches, episode titles and
// season sizes are each cached under their own key space; negative episode
// results are cached too so repeated misses do not hit the network. Every key
// carries the backend name, as series ids are only meaningful to the backend
// that issued them.
type CachedLookup struct {
	backend string
	next    TitleLookup
	cache   *cache.Cache
}

var _ TitleLookup = (*CachedLookup)(nil)

type missingEpisode struct{}

// NewCachedLookup wraps next, the backend registered as backend, with an
// in-memory cache whose entries live for ttl.
func NewCachedLookup(backend string, next TitleLookup, ttl time.Duration) *CachedLookup {
	return &CachedLookup{
		backend: strings.ToLower(backend),
		next:    next,
		cache:   cache.New(ttl, 10*time.Minute),
	}
}

func (c *CachedLookup) key(kind string, parts ...any) string {
	var b strings.Builder
	b.WriteString(c.backend)
	b.WriteString("|")
	b.WriteString(kind)
	for _, part := range parts {
		fmt.Fprintf(&b, ":%v", part)
	}
	return b.String()
}

// SearchSeries returns a cached series id or delegates.
func (c *CachedLookup) SearchSeries(ctx context.Context, name, language string) (string, error) {
	key := c.key("series", language, strings.ToLower(strings.TrimSpace(name)))
	if cached, found := c.cache.Get(key); found {
		if id, ok := cached.(string); ok {
			return id, nil
		}
	}

	id, err := c.next.SearchSeries(ctx, name, language)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, id, cache.DefaultExpiration)
	return id, nil
}

// EpisodeTitle returns a cached title or delegates.
func (c *CachedLookup) EpisodeTitle(ctx context.Context, seriesID string, season, episode int) (string, error) {
	key := c.key("episode", seriesID, season, episode)
	if cached, found := c.cache.Get(key); found {
		switch v := cached.(type) {
		case string:
			return v, nil
		case missingEpisode:
			return "", NotFound("cache", ErrEpisodeNotFound, fmt.Sprintf("episode S%02dE%02d not found", season, episode))
		}
	}

	title, err := c.next.EpisodeTitle(ctx, seriesID, season, episode)
	if errors.Is(err, ErrEpisodeNotFound) {
		c.cache.Set(key, missingEpisode{}, cache.DefaultExpiration)
		return "", err
	}
	if err != nil {
		return "", err
	}
	c.cache.Set(key, title, cache.DefaultExpiration)
	return title, nil
}

// EpisodeCount returns a cached count or delegates.
func (c *CachedLookup) EpisodeCount(ctx context.Context, seriesID string, season int) (int, error) {
	key := c.key("count", seriesID, season)
	if cached, found := c.cache.Get(key); found {
		if n, ok := cached.(int); ok {
			return n, nil
		}
	}

	n, err := c.next.EpisodeCount(ctx, seriesID, season)
	if err != nil {
		return 0, err
	}
	c.cache.Set(key, n, cache.DefaultExpiration)
	return n, nil
}

// LoadFile restores entries persisted by SaveFile. A missing file is not an error.
func (c *CachedLookup) LoadFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return c.cache.LoadFile(path)
}

// SaveFile persists positive entries to path in gob format.
func (c *CachedLookup) SaveFile(path string) error {
	for key, item := range c.cache.Items() {
		if _, ok := item.Object.(missingEpisode); ok {
			c.cache.Delete(key)
		}
	}
	return c.cache.SaveFile(path)
}

// Len reports the number of cached entries.
func (c *CachedLookup) Len() int {
	return c.cache.ItemCount()
}
