package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"food-quality-api/internal/llm"
	"food-quality-api/internal/logger"
)

// Options configure the cache retention policy. The zero value keeps every
// profile for the process lifetime, which is the historical behavior; set
// MaxEntries or TTL to bound it.
type Options struct {
	MaxEntries int
	TTL        time.Duration
}

// Cache memoizes reference profiles per normalized food name. Concurrent
// misses for the same name may each call the collaborator and overwrite the
// key; last write wins, which is fine because the profile is an idempotent
// function of the name.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]cacheEntry
	completer llm.TextCompleter
	opts      Options
}

type cacheEntry struct {
	profile  Profile
	storedAt time.Time
}

// NewCache creates a profile cache backed by the given text collaborator
func NewCache(completer llm.TextCompleter, opts Options) *Cache {
	return &Cache{
		entries:   make(map[string]cacheEntry),
		completer: completer,
		opts:      opts,
	}
}

// Get returns the profile for the food name, fetching it from the
// collaborator on first use. Collaborator failures degrade to the default
// profile, and that default is cached too so a flaky collaborator is not
// hammered with the same name over and over.
func (c *Cache) Get(ctx context.Context, foodName string) Profile {
	key := strings.ToLower(strings.TrimSpace(foodName))

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && !c.expired(entry) {
		return entry.profile
	}

	profile, err := c.fetch(ctx, foodName)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"food_name": key,
		}).Warn("Falling back to default reference profile")
		profile = DefaultProfile()
	}

	c.mu.Lock()
	if c.opts.MaxEntries > 0 && len(c.entries) >= c.opts.MaxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictOldestLocked()
		}
	}
	c.entries[key] = cacheEntry{profile: profile, storedAt: time.Now()}
	c.mu.Unlock()

	return profile
}

// Len reports the number of cached profiles
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) expired(entry cacheEntry) bool {
	if c.opts.TTL <= 0 {
		return false
	}
	return time.Since(entry.storedAt) > c.opts.TTL
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) fetch(ctx context.Context, foodName string) (Profile, error) {
	raw, err := c.completer.CompleteText(ctx, buildReferencePrompt(foodName))
	if err != nil {
		return Profile{}, err
	}

	// The collaborator is instructed to answer with JSON only; anything else
	// is treated as a failure rather than repaired.
	var profile Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return Profile{}, fmt.Errorf("reference data is not valid JSON: %w", err)
	}
	return profile, nil
}

func buildReferencePrompt(foodName string) string {
	return fmt.Sprintf(`I need reference data for a food quality assessment system for "%s".
Please provide the following information in JSON format:

1. Expected HSV ranges (hue, saturation, value) for fresh %s, as "hsv_range" with keys "h", "s", "v", each a [low, high] pair
2. Expected brightness range as "brightness_range"
3. Expected vibrancy range as "vibrancy_range"
4. Common visual indicators of spoilage or staleness as "spoilage_indicators"
5. Typical shelf life in days as "shelf_life"

Format the response as valid JSON only, no explanations.`, foodName, foodName)
}
