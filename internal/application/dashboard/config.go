package dashboard

import (
	"fmt"
	"time"

	"github.com/penwyp/go-automission-monitor/internal/data/source"
)

// Config contains configuration for the dashboard loop
type Config struct {
	// Live window passed to the source; its limit is quoted in the caption
	Query source.Query

	// Display settings
	Timezone    string
	LayoutStyle int

	// Refresh settings
	UIRefreshInterval time.Duration
	BackoffStart      time.Duration
	BackoffMax        time.Duration
}

// Validate fills in defaults for unset fields.
func (c *Config) Validate() error {
	if c.Query == (source.Query{}) {
		c.Query = source.DefaultQuery()
	}
	c.Query = c.Query.WithLimit(c.Query.Limit)
	if err := c.Query.Validate(); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.UIRefreshInterval <= 0 {
		c.UIRefreshInterval = time.Second
	}
	if c.BackoffStart <= 0 {
		c.BackoffStart = time.Second
	}
	if c.BackoffMax < c.BackoffStart {
		c.BackoffMax = 30 * time.Second
		if c.BackoffMax < c.BackoffStart {
			c.BackoffMax = c.BackoffStart
		}
	}
	return nil
}
