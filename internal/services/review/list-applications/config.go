package listapplications

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

type Config struct {
	Timeout time.Duration
	// Location is the zone date filters are read in.
	Location *time.Location
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:  15 * time.Second,
		Location: time.UTC,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Location == nil {
		return fmt.Errorf("location is required")
	}
	return nil
}
