package jobcatalog

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// Location decides which calendar day posted_at falls on.
	Location *time.Location
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
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
