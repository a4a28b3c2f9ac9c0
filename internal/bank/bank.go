// Package bank holds the immutable catalog of sayings used during a process run.
package bank

import (
	"errors"
	"fmt"
	"sort"

	"github.com/example/sayingsbot/pkg/models"
)

// ErrIndexOutOfRange is returned when a position past the end of a tier is requested.
var ErrIndexOutOfRange = errors.New("question index out of range")

// Catalog is a read-only list of sayings partitioned by difficulty tier.
// Within a tier sayings keep the order they were loaded in.
type Catalog struct {
	items []models.Saying
	tiers map[int][]models.Saying
}

// New builds a catalog from sayings in source order
func New(items []models.Saying) *Catalog {
	c := &Catalog{
		items: make([]models.Saying, len(items)),
		tiers: make(map[int][]models.Saying),
	}
	copy(c.items, items)
	for _, item := range c.items {
		c.tiers[item.DifficultyLevel] = append(c.tiers[item.DifficultyLevel], item)
	}
	return c
}

// All returns every saying in source order
func (c *Catalog) All() []models.Saying {
	out := make([]models.Saying, len(c.items))
	copy(out, c.items)
	return out
}

// ItemsForDifficulty returns the sayings of one tier in source order
func (c *Catalog) ItemsForDifficulty(tier int) []models.Saying {
	items := c.tiers[tier]
	out := make([]models.Saying, len(items))
	copy(out, items)
	return out
}

// Len returns the number of sayings in a tier
func (c *Catalog) Len(tier int) int {
	return len(c.tiers[tier])
}

// ItemAt returns the saying at a 0-based position within a tier
func (c *Catalog) ItemAt(tier, index int) (models.Saying, error) {
	items := c.tiers[tier]
	if index < 0 || index >= len(items) {
		return models.Saying{}, fmt.Errorf("tier %d has %d sayings, index %d: %w", tier, len(items), index, ErrIndexOutOfRange)
	}
	return items[index], nil
}

// Tiers returns the difficulty levels present in the catalog, ascending
func (c *Catalog) Tiers() []int {
	tiers := make([]int, 0, len(c.tiers))
	for t := range c.tiers {
		tiers = append(tiers, t)
	}
	sort.Ints(tiers)
	return tiers
}
