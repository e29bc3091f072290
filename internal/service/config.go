package service

import (
	"time"

	"github.com/alexanderramin/unload/internal/intelligence"
)

// DefaultTimezone is used when no location is configured.
const DefaultTimezone = "America/New_York"

// Config carries the knobs shared by the services.
type Config struct {
	MaxDumpChars int
	// Location decides calendar dates for deadlines and clarity records.
	Location *time.Location
	// DedupAgainstActive sends the user's active titles as recent context
	// so extraction skips items that already exist.
	DedupAgainstActive bool
	// Now is the clock. Tests pin it.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.MaxDumpChars <= 0 {
		c.MaxDumpChars = intelligence.DefaultMaxDumpChars
	}
	if c.Location == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			loc = time.UTC
		}
		c.Location = loc
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

func (c Config) now() time.Time {
	return c.Now().UTC()
}
