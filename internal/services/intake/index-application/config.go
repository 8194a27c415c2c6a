package indexapplication

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Index   string
	Timeout time.Duration
	// Refresh makes indexed documents searchable before the call returns.
	Refresh bool
}

func DefaultConfig() *Config {
	return &Config{
		Index:   "applications",
		Timeout: 5 * time.Second,
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Index) == "" {
		return fmt.Errorf("index is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
